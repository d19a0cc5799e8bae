package dashboardController

import (
	"coursetrack/middleware"
	"coursetrack/models"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type Controller struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Controller {
	return &Controller{db: db, now: time.Now}
}

type Stats struct {
	TotalUsers            int64 `json:"total_users"`
	TotalBatches          int64 `json:"total_batches"`
	ActiveBatches         int64 `json:"active_batches"`
	TotalEnrollments      int64 `json:"total_enrollments"`
	CompletedEnrollments  int64 `json:"completed_enrollments"`
	EnrollmentsToday      int64 `json:"enrollments_today"`
	EnrollmentsThisMonth  int64 `json:"enrollments_this_month"`
	CertificatesThisMonth int64 `json:"certificates_this_month"`
	PendingSubmissions    int64 `json:"pending_submissions"`
	PendingBlobCleanups   int64 `json:"pending_blob_cleanups"`
}

// Stats gets admin dashboard statistics
func (ctl *Controller) Stats(c *fiber.Ctx) error {
	db := ctl.db.WithContext(c.UserContext())
	// Start of today and of this month
	t := now.New(ctl.now())
	dayStart, monthStart := t.BeginningOfDay(), t.BeginningOfMonth()

	var s Stats
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&s.TotalUsers, db.Model(&models.User{})},
		{&s.TotalBatches, db.Model(&models.Batch{})},
		{&s.ActiveBatches, db.Model(&models.Batch{}).Where("is_active = ?", true)},
		{&s.TotalEnrollments, db.Model(&models.Enrollment{})},
		{&s.CompletedEnrollments, db.Model(&models.Enrollment{}).Where("status = ?", models.EnrollmentCompleted)},
		{&s.EnrollmentsToday, db.Model(&models.Enrollment{}).Where("enrolled_date >= ?", dayStart)},
		{&s.EnrollmentsThisMonth, db.Model(&models.Enrollment{}).Where("enrolled_date >= ?", monthStart)},
		{&s.CertificatesThisMonth, db.Model(&models.CertificateIssuance{}).Where("issue_date >= ?", monthStart)},
		{&s.PendingSubmissions, db.Model(&models.TaskSubmission{}).Where("status = ?", models.SubmissionPending)},
		{&s.PendingBlobCleanups, db.Model(&models.BlobCleanup{}).Where("done_at IS NULL AND attempts < ?", models.MaxBlobCleanupAttempts)},
	}
	// Run every count
	for _, q := range counts {
		if err := q.query.Count(q.dst).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", s)
}
