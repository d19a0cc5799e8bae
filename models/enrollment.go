package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentWithdrawn = "withdrawn"
)

// Enrollment links a user to a batch and carries completion state
type Enrollment struct {
	gorm.Model
	UserID         uint                      `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_batch"`
	BatchID        uint                      `json:"batch_id" gorm:"not null;uniqueIndex:idx_enrollment_user_batch;index"`
	EnrolledDate   time.Time                 `json:"enrolled_date"`
	Status         string                    `json:"status" gorm:"type:varchar(20);not null"`
	Progress       int                       `json:"progress"` // 0-100
	CompletedTasks datatypes.JSONSlice[uint] `json:"completed_tasks"`
	LastActiveDate *time.Time                `json:"last_active_date"`
	CompletedAt    *time.Time                `json:"completed_at"`

	Batch *Batch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
}

// HasCompleted reports whether taskID is in the completed set.
func (e *Enrollment) HasCompleted(taskID uint) bool {
	for _, id := range e.CompletedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}
