package catalog

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/models"
	"coursetrack/services/progress"
	"coursetrack/storage"
	"coursetrack/utils"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
)

type TaskInput struct {
	BatchID        uint
	DayNumber      int
	Title          string
	Description    string
	OrderIndex     int
	ContentType    string
	VideoURL       string
	Quiz           []models.QuizQuestion
	Assignment     string
	ReadingContent string
	ProjectDetails string
	Pdfs           []string
	Images         []string
	CodeSnippets   []models.CodeSnippet
	IsPublished    bool
}

// TaskPatch lists the mutable task fields; nil means unchanged. The batch cannot change.
type TaskPatch struct {
	Title          *string
	Description    *string
	DayNumber      *int
	OrderIndex     *int
	ContentType    *string
	VideoURL       *string
	Quiz           *[]models.QuizQuestion
	Assignment     *string
	ReadingContent *string
	ProjectDetails *string
	Pdfs           *[]string
	Images         *[]string
	CodeSnippets   *[]models.CodeSnippet
	IsPublished    *bool
}

// ValidatePayload checks the content-type specific required field.
func ValidatePayload(t *models.Task) error {
	field, msg := "", ""
	switch t.ContentType {
	case models.ContentVideo:
		if t.VideoURL == "" {
			field, msg = "video_url", "Video URL is required for video tasks!"
		}
	case models.ContentAssignment:
		if t.Assignment == "" {
			field, msg = "assignment", "Assignment text is required for assignment tasks!"
		}
	case models.ContentReading:
		if t.ReadingContent == "" {
			field, msg = "reading_content", "Reading content is required for reading tasks!"
		}
	case models.ContentProject:
		if t.ProjectDetails == "" {
			field, msg = "project_details", "Project details are required for project tasks!"
		}
	case models.ContentQuiz:
	default:
		field, msg = "content_type", "Content type must be one of video, quiz, assignment, reading, project!"
	}
	if field == "" {
		return nil
	}
	return apperr.Fields(msg, map[string]string{field: msg})
}

func checkDay(batch *models.Batch, day int) error {
	if day < 1 || day > batch.DurationDays {
		return ErrDayOutOfRange
	}
	return nil
}

// dayTaken reports whether another task (not excludeID) occupies the day.
func dayTaken(db *gorm.DB, batchID uint, day int, excludeID uint) (bool, error) {
	q := db.Model(&models.Task{}).Where("batch_id = ? AND day_number = ?", batchID, day)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Wrap(err, "Failed to check task day!")
	}
	return n > 0, nil
}

func (s *Service) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	batch, err := findBatch(db, in.BatchID)
	if err != nil {
		return nil, err
	}
	if err := checkDay(batch, in.DayNumber); err != nil {
		return nil, err
	}
	taken, err := dayTaken(db, batch.ID, in.DayNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDayTaken
	}

	task := models.Task{
		Title:          in.Title,
		Description:    in.Description,
		DayNumber:      in.DayNumber,
		BatchID:        batch.ID,
		OrderIndex:     in.OrderIndex,
		ContentType:    in.ContentType,
		VideoURL:       in.VideoURL,
		Quiz:           in.Quiz,
		Assignment:     in.Assignment,
		ReadingContent: in.ReadingContent,
		ProjectDetails: in.ProjectDetails,
		Pdfs:           in.Pdfs,
		Images:         in.Images,
		CodeSnippets:   in.CodeSnippets,
		IsPublished:    in.IsPublished,
	}
	if err := ValidatePayload(&task); err != nil {
		return nil, err
	}

	if err := db.Create(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDayTaken
		}
		return nil, apperr.Wrap(err, "Failed to create task!")
	}
	return &task, nil
}

func (s *Service) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	return findTask(s.db.WithContext(ctx), id)
}

func findTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch task!")
	}
	return &task, nil
}

// ListTasks returns tasks ordered by day; batchID 0 lists every batch.
func (s *Service) ListTasks(ctx context.Context, batchID uint, publishedOnly bool) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Model(&models.Task{})
	if batchID != 0 {
		q = q.Where("batch_id = ?", batchID)
	}
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var tasks []models.Task
	if err := q.Order("batch_id asc, day_number asc, order_index asc").Find(&tasks).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch tasks!")
	}
	return tasks, nil
}

func (s *Service) UpdateTask(ctx context.Context, id uint, p TaskPatch) (*models.Task, error) {
	db := s.db.WithContext(ctx)
	task, err := findTask(db, id)
	if err != nil {
		return nil, err
	}

	if p.DayNumber != nil && *p.DayNumber != task.DayNumber {
		batch, err := findBatch(db, task.BatchID)
		if err != nil {
			return nil, err
		}
		if err := checkDay(batch, *p.DayNumber); err != nil {
			return nil, err
		}
		taken, err := dayTaken(db, task.BatchID, *p.DayNumber, task.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDayTaken
		}
		task.DayNumber = *p.DayNumber
	}
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.OrderIndex != nil {
		task.OrderIndex = *p.OrderIndex
	}
	if p.ContentType != nil {
		task.ContentType = *p.ContentType
	}
	if p.VideoURL != nil {
		task.VideoURL = *p.VideoURL
	}
	if p.Quiz != nil {
		task.Quiz = *p.Quiz
	}
	if p.Assignment != nil {
		task.Assignment = *p.Assignment
	}
	if p.ReadingContent != nil {
		task.ReadingContent = *p.ReadingContent
	}
	if p.ProjectDetails != nil {
		task.ProjectDetails = *p.ProjectDetails
	}
	if p.Pdfs != nil {
		task.Pdfs = *p.Pdfs
	}
	if p.Images != nil {
		task.Images = *p.Images
	}
	if p.CodeSnippets != nil {
		task.CodeSnippets = *p.CodeSnippets
	}
	if p.IsPublished != nil {
		task.IsPublished = *p.IsPublished
	}
	if err := ValidatePayload(task); err != nil {
		return nil, err
	}

	if err := db.Save(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDayTaken
		}
		return nil, apperr.Wrap(err, "Failed to update task!")
	}
	return task, nil
}

// DeleteTask removes the task, drops it from every enrollment of the batch and then
// fans out deletes for its pdfs and images.
// The task is gone even when some blob deletes fail; those are queued for retry.
func (s *Service) DeleteTask(ctx context.Context, id uint) (*DeleteReport, error) {
	db := s.db.WithContext(ctx)
	task, err := findTask(db, id)
	if err != nil {
		return nil, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		// hard delete frees the (batch, day) slot
		if err := tx.Unscoped().Delete(task).Error; err != nil {
			return err
		}
		// the batch lost a task, so every enrollment's progress moves
		return progress.SettleBatch(tx, task.BatchID, time.Now())
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to delete task!")
	}

	failed := storage.DeleteAll(ctx, s.blobs, task.BlobRefs())
	utils.QueueBlobCleanups(db, failed, fmt.Sprintf("task %d deleted", id))
	return &DeleteReport{ID: id, FailedBlobs: failed}, nil
}

// AvailableDays returns the days of the batch no task occupies yet.
func (s *Service) AvailableDays(ctx context.Context, batchID uint) ([]int, error) {
	db := s.db.WithContext(ctx)
	batch, err := findBatch(db, batchID)
	if err != nil {
		return nil, err
	}
	var used []int
	if err := db.Model(&models.Task{}).Where("batch_id = ?", batchID).Pluck("day_number", &used).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch task days!")
	}

	days := make([]int, 0, batch.DurationDays)
	for d := 1; d <= batch.DurationDays; d++ {
		if !slices.Contains(used, d) {
			days = append(days, d)
		}
	}
	return days, nil
}
