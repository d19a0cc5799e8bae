// Package progress owns enrollments and task-completion bookkeeping.
package progress

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/models"
	"coursetrack/utils"
	"errors"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBatchNotFound      = apperr.NotFound("Batch not found!")
	ErrBatchInactive      = apperr.Validation("Batch is not accepting enrollments!")
	ErrBatchFull          = apperr.Conflict("Batch is full!")
	ErrAlreadyEnrolled    = apperr.Conflict("User already enrolled in this batch!")
	ErrEnrollmentNotFound = apperr.NotFound("Enrollment not found!")
	ErrNotEnrolled        = apperr.Forbidden("User not enrolled in this batch!")
	ErrTaskNotFound       = apperr.NotFound("Task not found!")
)

type Service struct {
	db     *gorm.DB
	mailer utils.Mailer
	now    func() time.Time
}

func New(db *gorm.DB, mailer utils.Mailer) *Service {
	return &Service{db: db, mailer: mailer, now: time.Now}
}

// Percent is round-half-up(100*completed/total), 0 for an empty batch, never above 100.
func Percent(completed, total int64) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int((200*completed + total) / (2 * total))
	if p > 100 {
		return 100
	}
	return p
}

// Enroll creates an active enrollment. On ErrAlreadyEnrolled the existing enrollment is returned too.
func (s *Service) Enroll(ctx context.Context, userID, batchID uint) (*models.Enrollment, error) {
	db := s.db.WithContext(ctx)

	var batch models.Batch
	if err := db.First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch batch!")
	}
	if !batch.IsActive {
		return nil, ErrBatchInactive
	}

	existing, err := s.findByUserBatch(db, userID, batchID)
	if err != nil && !errors.Is(err, ErrNotEnrolled) {
		return nil, err
	}
	if existing != nil {
		return existing, ErrAlreadyEnrolled
	}

	if batch.Capacity > 0 {
		var taken int64
		if err := db.Model(&models.Enrollment{}).
			Where("batch_id = ? AND status <> ?", batchID, models.EnrollmentWithdrawn).
			Count(&taken).Error; err != nil {
			return nil, apperr.Wrap(err, "Failed to check batch capacity!")
		}
		if taken >= int64(batch.Capacity) {
			return nil, ErrBatchFull
		}
	}

	enrollment := models.Enrollment{
		UserID:         userID,
		BatchID:        batchID,
		EnrolledDate:   s.now(),
		Status:         models.EnrollmentActive,
		Progress:       0,
		CompletedTasks: []uint{},
	}
	if err := db.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent enroll
			existing, err := s.findByUserBatch(db, userID, batchID)
			if err != nil {
				return nil, err
			}
			return existing, ErrAlreadyEnrolled
		}
		return nil, apperr.Wrap(err, "Failed to enroll in batch!")
	}

	var user models.User
	if err := db.First(&user, userID).Error; err == nil {
		utils.SendEnrollmentEmail(s.mailer, user.Email, user.Name, batch.Title)
	}

	enrollment.Batch = &batch
	return &enrollment, nil
}

// CheckEnrollment is a read-only lookup; a missing enrollment is (nil, false, nil).
func (s *Service) CheckEnrollment(ctx context.Context, userID, batchID uint) (*models.Enrollment, bool, error) {
	e, err := s.findByUserBatch(s.db.WithContext(ctx), userID, batchID)
	if errors.Is(err, ErrNotEnrolled) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

type ListFilter struct {
	UserID  uint
	BatchID uint
	Status  string
}

func (s *Service) ListEnrollments(ctx context.Context, f ListFilter) ([]models.Enrollment, error) {
	q := s.db.WithContext(ctx).Model(&models.Enrollment{}).Preload("Batch")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.BatchID != 0 {
		q = q.Where("batch_id = ?", f.BatchID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var enrollments []models.Enrollment
	if err := q.Order("created_at desc").Find(&enrollments).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch enrollments!")
	}
	return enrollments, nil
}

// CompletionResult is the outcome of a completion toggle.
type CompletionResult struct {
	Enrollment       *models.Enrollment `json:"enrollment"`
	AlreadyCompleted bool               `json:"already_completed"`
	TotalTasks       int64              `json:"total_tasks"`
}

// CompleteTask marks taskID done for the user's enrollment. Completing twice is a no-op.
func (s *Service) CompleteTask(ctx context.Context, userID, enrollmentID, taskID uint) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := lockRow(tx).Where("id = ? AND user_id = ?", enrollmentID, userID).First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnrollmentNotFound
			}
			return apperr.Wrap(err, "Failed to fetch enrollment!")
		}
		if _, err := findBatchTask(tx, enrollment.BatchID, taskID); err != nil {
			return err
		}

		if enrollment.HasCompleted(taskID) {
			total, err := countTasks(tx, enrollment.BatchID)
			if err != nil {
				return err
			}
			result = &CompletionResult{Enrollment: &enrollment, AlreadyCompleted: true, TotalTasks: total}
			return nil
		}

		enrollment.CompletedTasks = append(enrollment.CompletedTasks, taskID)
		total, err := s.recompute(tx, &enrollment)
		if err != nil {
			return err
		}
		result = &CompletionResult{Enrollment: &enrollment, TotalTasks: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UncompleteTask removes taskID from the user's completed set. Removing an absent task is a no-op.
// A task that was deleted can still be removed from the set.
func (s *Service) UncompleteTask(ctx context.Context, userID, batchID, taskID uint) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, taskErr := findBatchTask(tx, batchID, taskID)
		if taskErr != nil && !errors.Is(taskErr, ErrTaskNotFound) {
			return taskErr
		}
		var enrollment models.Enrollment
		if err := lockRow(tx).Where("user_id = ? AND batch_id = ?", userID, batchID).First(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if taskErr != nil {
					return taskErr
				}
				return ErrNotEnrolled
			}
			return apperr.Wrap(err, "Failed to fetch enrollment!")
		}

		kept := make([]uint, 0, len(enrollment.CompletedTasks))
		for _, id := range enrollment.CompletedTasks {
			if id != taskID {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(enrollment.CompletedTasks) {
			if taskErr != nil {
				return taskErr
			}
			total, err := countTasks(tx, batchID)
			if err != nil {
				return err
			}
			result = &CompletionResult{Enrollment: &enrollment, TotalTasks: total}
			return nil
		}

		enrollment.CompletedTasks = kept
		total, err := s.recompute(tx, &enrollment)
		if err != nil {
			return err
		}
		result = &CompletionResult{Enrollment: &enrollment, TotalTasks: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recompute stamps learner activity, then settles progress and status.
func (s *Service) recompute(tx *gorm.DB, e *models.Enrollment) (int64, error) {
	now := s.now()
	e.LastActiveDate = &now
	return settle(tx, e, now)
}

// settle drops completed ids that are no longer tasks of the batch, derives progress
// and status from what is left and persists the enrollment.
// completed <-> active follows progress in both directions; withdrawn is left alone.
func settle(tx *gorm.DB, e *models.Enrollment, now time.Time) (int64, error) {
	var live []uint
	if err := tx.Model(&models.Task{}).Where("batch_id = ?", e.BatchID).Pluck("id", &live).Error; err != nil {
		return 0, apperr.Wrap(err, "Failed to count batch tasks!")
	}
	kept := make([]uint, 0, len(e.CompletedTasks))
	for _, id := range e.CompletedTasks {
		if slices.Contains(live, id) {
			kept = append(kept, id)
		}
	}
	e.CompletedTasks = kept

	total := int64(len(live))
	e.Progress = Percent(int64(len(kept)), total)

	switch {
	case e.Status == models.EnrollmentWithdrawn:
	case e.Progress >= 100:
		if e.Status != models.EnrollmentCompleted {
			e.CompletedAt = &now
		}
		e.Status = models.EnrollmentCompleted
	default:
		e.Status = models.EnrollmentActive
		e.CompletedAt = nil
	}

	if err := tx.Save(e).Error; err != nil {
		return 0, apperr.Wrap(err, "Failed to update progress!")
	}
	return total, nil
}

// SettleBatch re-derives progress for every enrollment of the batch. It runs inside
// the caller's transaction after the batch's task set changed.
func SettleBatch(tx *gorm.DB, batchID uint, now time.Time) error {
	var enrollments []models.Enrollment
	if err := lockRow(tx).Where("batch_id = ?", batchID).Find(&enrollments).Error; err != nil {
		return apperr.Wrap(err, "Failed to fetch enrollments!")
	}
	for i := range enrollments {
		if _, err := settle(tx, &enrollments[i], now); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot is a learner's position in a batch.
type Snapshot struct {
	EnrollmentID      uint         `json:"enrollment_id"`
	Status            string       `json:"status"`
	Progress          int          `json:"progress"`
	CompletedTasks    []uint       `json:"completed_tasks"`
	TotalTasks        int64        `json:"total_tasks"`
	LastCompletedTask *models.Task `json:"last_completed_task"`
}

// GetProgress returns the progress snapshot; the last completed task is the one
// with the highest day, then the highest order index.
func (s *Service) GetProgress(ctx context.Context, userID, batchID uint) (*Snapshot, error) {
	db := s.db.WithContext(ctx)
	enrollment, err := s.findByUserBatch(db, userID, batchID)
	if err != nil {
		return nil, err
	}
	total, err := countTasks(db, batchID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		EnrollmentID:   enrollment.ID,
		Status:         enrollment.Status,
		Progress:       enrollment.Progress,
		CompletedTasks: []uint(enrollment.CompletedTasks),
		TotalTasks:     total,
	}
	if snap.CompletedTasks == nil {
		snap.CompletedTasks = []uint{}
	}
	if len(enrollment.CompletedTasks) > 0 {
		var last models.Task
		err := db.Where("batch_id = ? AND id IN ?", batchID, []uint(enrollment.CompletedTasks)).
			Order("day_number desc, order_index desc").First(&last).Error
		switch {
		case err == nil:
			snap.LastCompletedTask = &last
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperr.Wrap(err, "Failed to fetch last completed task!")
		}
	}
	return snap, nil
}

// Withdraw marks the enrollment withdrawn; progress is kept.
func (s *Service) Withdraw(ctx context.Context, userID, batchID uint) (*models.Enrollment, error) {
	db := s.db.WithContext(ctx)
	enrollment, err := s.findByUserBatch(db, userID, batchID)
	if err != nil {
		return nil, err
	}
	enrollment.Status = models.EnrollmentWithdrawn
	if err := db.Save(enrollment).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to withdraw enrollment!")
	}
	return enrollment, nil
}

func (s *Service) findByUserBatch(db *gorm.DB, userID, batchID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := db.Where("user_id = ? AND batch_id = ?", userID, batchID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, apperr.Wrap(err, "Failed to fetch enrollment!")
	}
	return &e, nil
}

func findBatchTask(db *gorm.DB, batchID, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ? AND batch_id = ?", taskID, batchID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch task!")
	}
	return &task, nil
}

func countTasks(db *gorm.DB, batchID uint) (int64, error) {
	var total int64
	if err := db.Model(&models.Task{}).Where("batch_id = ?", batchID).Count(&total).Error; err != nil {
		return 0, apperr.Wrap(err, "Failed to count batch tasks!")
	}
	return total, nil
}

// lockRow takes a row lock where the dialect has one. sqlite connections open
// transactions with BEGIN IMMEDIATE (see database.Connect), which holds the write lock instead.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
