package catalog

import (
	"context"
	"coursetrack/apperr"
	"coursetrack/models"
	"coursetrack/storage"
	"coursetrack/utils"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BatchInput struct {
	Title         string
	Description   string
	CourseName    string
	StartDate     *time.Time
	BannerURL     string
	DurationDays  int
	Instructor    string
	Price         float64
	Capacity      int
	IsActive      *bool
	WhatYouLearn  []string
	Prerequisites []string
	Benefits      []string
}

// BatchPatch lists the mutable batch fields; nil means unchanged.
type BatchPatch struct {
	Title         *string
	Description   *string
	CourseName    *string
	StartDate     *time.Time
	BannerURL     *string
	DurationDays  *int
	Instructor    *string
	Price         *float64
	Capacity      *int
	IsActive      *bool
	WhatYouLearn  *[]string
	Prerequisites *[]string
	Benefits      *[]string
}

func (s *Service) CreateBatch(ctx context.Context, in BatchInput) (*models.Batch, error) {
	if in.DurationDays < 1 {
		return nil, ErrInvalidDuration
	}
	batch := models.Batch{
		Title:         in.Title,
		Description:   in.Description,
		CourseName:    in.CourseName,
		StartDate:     in.StartDate,
		BannerURL:     in.BannerURL,
		DurationDays:  in.DurationDays,
		Instructor:    in.Instructor,
		Price:         in.Price,
		Capacity:      in.Capacity,
		IsActive:      in.IsActive == nil || *in.IsActive,
		WhatYouLearn:  in.WhatYouLearn,
		Prerequisites: in.Prerequisites,
		Benefits:      in.Benefits,
	}
	if err := s.db.WithContext(ctx).Create(&batch).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to create batch!")
	}
	return &batch, nil
}

func (s *Service) GetBatch(ctx context.Context, id uint) (*models.Batch, error) {
	return findBatch(s.db.WithContext(ctx), id)
}

func findBatch(db *gorm.DB, id uint) (*models.Batch, error) {
	var batch models.Batch
	if err := db.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, apperr.Wrap(err, "Failed to fetch batch!")
	}
	return &batch, nil
}

func (s *Service) ListBatches(ctx context.Context, activeOnly bool) ([]models.Batch, error) {
	q := s.db.WithContext(ctx).Model(&models.Batch{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var batches []models.Batch
	if err := q.Order("created_at desc").Find(&batches).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to fetch batches!")
	}
	return batches, nil
}

func (s *Service) UpdateBatch(ctx context.Context, id uint, p BatchPatch) (*models.Batch, error) {
	db := s.db.WithContext(ctx)
	batch, err := findBatch(db, id)
	if err != nil {
		return nil, err
	}
	oldBanner := batch.BannerURL

	if p.DurationDays != nil && *p.DurationDays != batch.DurationDays {
		if *p.DurationDays < 1 {
			return nil, ErrInvalidDuration
		}
		var maxDay int
		if err := db.Model(&models.Task{}).Where("batch_id = ?", id).
			Select("COALESCE(MAX(day_number), 0)").Scan(&maxDay).Error; err != nil {
			return nil, apperr.Wrap(err, "Failed to check batch tasks!")
		}
		if *p.DurationDays < maxDay {
			return nil, ErrDurationTooShort
		}
		batch.DurationDays = *p.DurationDays
	}
	if p.Title != nil {
		batch.Title = *p.Title
	}
	if p.Description != nil {
		batch.Description = *p.Description
	}
	if p.CourseName != nil {
		batch.CourseName = *p.CourseName
	}
	if p.StartDate != nil {
		batch.StartDate = p.StartDate
	}
	if p.BannerURL != nil {
		batch.BannerURL = *p.BannerURL
	}
	if p.Instructor != nil {
		batch.Instructor = *p.Instructor
	}
	if p.Price != nil {
		batch.Price = *p.Price
	}
	if p.Capacity != nil {
		batch.Capacity = *p.Capacity
	}
	if p.IsActive != nil {
		batch.IsActive = *p.IsActive
	}
	if p.WhatYouLearn != nil {
		batch.WhatYouLearn = *p.WhatYouLearn
	}
	if p.Prerequisites != nil {
		batch.Prerequisites = *p.Prerequisites
	}
	if p.Benefits != nil {
		batch.Benefits = *p.Benefits
	}

	if err := db.Save(batch).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to update batch!")
	}

	if oldBanner != "" && oldBanner != batch.BannerURL {
		failed := storage.DeleteAll(ctx, s.blobs, []string{oldBanner})
		utils.QueueBlobCleanups(db, failed, fmt.Sprintf("batch %d banner replaced", id))
	}
	return batch, nil
}

// DeleteBatch removes the batch and then its banner blob. Blob failures are queued, not fatal.
func (s *Service) DeleteBatch(ctx context.Context, id uint) (*DeleteReport, error) {
	db := s.db.WithContext(ctx)
	batch, err := findBatch(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(batch).Error; err != nil {
		return nil, apperr.Wrap(err, "Failed to delete batch!")
	}

	failed := storage.DeleteAll(ctx, s.blobs, []string{batch.BannerURL})
	utils.QueueBlobCleanups(db, failed, fmt.Sprintf("batch %d deleted", id))
	return &DeleteReport{ID: id, FailedBlobs: failed}, nil
}
