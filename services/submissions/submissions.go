// Package submissions stores student work for tasks and instructor reviews of it.
package submissions

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/models"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTaskNotFound       = apperr.NotFound("Task not found!")
	ErrSubmissionNotFound = apperr.NotFound("Submission not found!")
	ErrNotEnrolled        = apperr.Forbidden("User not enrolled in this batch!")
	ErrNotOwner           = apperr.Forbidden("You can only resubmit your own work!")
	ErrEmptySubmission    = apperr.Validation("Submission needs content, files or links!")
	ErrInvalidStatus      = apperr.Validation("Review status must be reviewed, approved or rejected!")
	ErrInvalidGrade       = apperr.Validation("Grade must be between 0 and 100!")
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type Work struct {
	Content string
	Files   []string
	Links   []string
}

func (w Work) empty() bool {
	return strings.TrimSpace(w.Content) == "" && len(w.Files) == 0 && len(w.Links) == 0
}

// Submit creates the user's submission for a task, or resubmits it: the current
// state is archived to History and the submission goes back to pending.
func (s *Service) Submit(ctx context.Context, userID, taskID uint, w Work) (*models.TaskSubmission, error) {
	if w.empty() {
		return nil, ErrEmptySubmission
	}
	var out *models.TaskSubmission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return apperr.Wrap(err, "Failed to fetch task!")
		}
		var enrolled int64
		if err := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND batch_id = ?", userID, task.BatchID).
			Count(&enrolled).Error; err != nil {
			return apperr.Wrap(err, "Failed to check enrollment!")
		}
		if enrolled == 0 {
			return ErrNotEnrolled
		}

		var sub models.TaskSubmission
		err := tx.Where("task_id = ? AND user_id = ?", taskID, userID).First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.TaskSubmission{
				TaskID:      taskID,
				UserID:      userID,
				Content:     w.Content,
				Files:       w.Files,
				Links:       w.Links,
				Status:      models.SubmissionPending,
				SubmittedAt: s.now(),
				Version:     1,
				History:     []models.SubmissionVersion{},
			}
			if err := tx.Create(&sub).Error; err != nil {
				return apperr.Wrap(err, "Failed to save submission!")
			}
		case err != nil:
			return apperr.Wrap(err, "Failed to fetch submission!")
		default:
			s.resubmit(&sub, w)
			if err := tx.Save(&sub).Error; err != nil {
				return apperr.Wrap(err, "Failed to save submission!")
			}
		}
		out = &sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WorkPatch carries the parts of a resubmission the caller sent. A nil part keeps
// the submission's current value.
type WorkPatch struct {
	Content *string
	Files   *[]string
	Links   *[]string
}

// Resubmit replaces the parts of the work sent in p on a submission owned by userID.
func (s *Service) Resubmit(ctx context.Context, userID, submissionID uint, p WorkPatch) (*models.TaskSubmission, error) {
	db := s.db.WithContext(ctx)
	sub, err := findSubmission(db, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, ErrNotOwner
	}

	w := Work{Content: sub.Content, Files: sub.Files, Links: sub.Links}
	if p.Content != nil {
		w.Content = *p.Content
	}
	if p.Files != nil {
		w.Files = *p.Files
	}
	if p.Links != nil {
		w.Links = *p.Links
	}
	if w.empty() {
		return nil, ErrEmptySubmission
	}

	s.resubmit(sub, w)
	if err := db.Save(sub).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to save submission!")
	}
	return sub, nil
}

func (s *Service) resubmit(sub *models.TaskSubmission, w Work) {
	sub.History = append(sub.History, models.SubmissionVersion{
		Version:     sub.Version,
		Content:     sub.Content,
		Files:       sub.Files,
		Links:       sub.Links,
		Status:      sub.Status,
		Feedback:    sub.Feedback,
		Grade:       sub.Grade,
		SubmittedAt: sub.SubmittedAt,
	})
	sub.Version++
	sub.Content = w.Content
	sub.Files = w.Files
	sub.Links = w.Links
	sub.Status = models.SubmissionPending
	sub.Feedback = ""
	sub.Grade = nil
	sub.ReviewedAt = nil
	sub.ReviewedBy = nil
	sub.SubmittedAt = s.now()
}

type Review struct {
	Status   string
	Feedback *string
	Grade    *int
}

// Review records an instructor decision on a submission.
func (s *Service) Review(ctx context.Context, reviewerID, submissionID uint, r Review) (*models.TaskSubmission, error) {
	switch r.Status {
	case models.SubmissionReviewed, models.SubmissionApproved, models.SubmissionRejected:
	default:
		return nil, ErrInvalidStatus
	}
	if r.Grade != nil && (*r.Grade < 0 || *r.Grade > 100) {
		return nil, ErrInvalidGrade
	}

	db := s.db.WithContext(ctx)
	sub, err := findSubmission(db, submissionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sub.Status = r.Status
	if r.Feedback != nil {
		sub.Feedback = *r.Feedback
	}
	if r.Grade != nil {
		sub.Grade = r.Grade
	}
	sub.ReviewedAt = &now
	sub.ReviewedBy = &reviewerID

	if err := db.Save(sub).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to save review!")
	}
	return sub, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	return findSubmission(s.db.WithContext(ctx).Preload("Task"), id)
}

func findSubmission(db *gorm.DB, id uint) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	if err := db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch submission!")
	}
	return &sub, nil
}

type ListFilter struct {
	TaskID uint
	UserID uint
	Status string
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.TaskSubmission, error) {
	q := s.db.WithContext(ctx).Model(&models.TaskSubmission{})
	if f.TaskID != 0 {
		q = q.Where("task_id = ?", f.TaskID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var subs []models.TaskSubmission
	if err := q.Order("submitted_at desc").Find(&subs).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch submissions!")
	}
	return subs, nil
}
