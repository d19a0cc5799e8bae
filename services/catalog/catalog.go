// Package catalog manages batches and their day-indexed tasks.
package catalog

import (
	"coursetrack/apperr"
	"coursetrack/storage"

	"gorm.io/gorm"
)

var (
	ErrBatchNotFound    = apperr.NotFound("Batch not found!")
	ErrTaskNotFound     = apperr.NotFound("Task not found!")
	ErrInvalidDuration  = apperr.Validation("Duration must be at least 1 day!")
	ErrDurationTooShort = apperr.Validation("Duration is shorter than an existing task day!")
	ErrDayOutOfRange    = apperr.Validation("Day number is outside the batch duration!")
	ErrDayTaken         = apperr.Conflict("A task already exists for this day!")
)

type Service struct {
	db    *gorm.DB
	blobs storage.BlobStore
}

func New(db *gorm.DB, blobs storage.BlobStore) *Service {
	return &Service{db: db, blobs: blobs}
}

// DeleteReport describes a cascade delete. FailedBlobs were queued for retry.
type DeleteReport struct {
	ID          uint                    `json:"id"`
	FailedBlobs []storage.DeleteFailure `json:"failed_blobs"`
}
