package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubmissionPending  = "pending"
	SubmissionReviewed = "reviewed"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// SubmissionVersion is an archived earlier state of a submission.
type SubmissionVersion struct {
	Version     int       `json:"version"`
	Content     string    `json:"content"`
	Files       []string  `json:"files"`
	Links       []string  `json:"links"`
	Status      string    `json:"status"`
	Feedback    string    `json:"feedback,omitempty"`
	Grade       *int      `json:"grade,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TaskSubmission is a user's work product for one task. (TaskID, UserID) is unique.
type TaskSubmission struct {
	gorm.Model
	TaskID      uint                                   `json:"task_id" gorm:"not null;uniqueIndex:idx_submission_task_user"`
	UserID      uint                                   `json:"user_id" gorm:"not null;uniqueIndex:idx_submission_task_user;index"`
	Content     string                                 `json:"content" gorm:"type:text"`
	Files       datatypes.JSONSlice[string]            `json:"files"`
	Links       datatypes.JSONSlice[string]            `json:"links"`
	Status      string                                 `json:"status" gorm:"type:varchar(20);not null"`
	Feedback    string                                 `json:"feedback" gorm:"type:text"`
	Grade       *int                                   `json:"grade"`
	SubmittedAt time.Time                              `json:"submitted_at"`
	ReviewedAt  *time.Time                             `json:"reviewed_at"`
	ReviewedBy  *uint                                  `json:"reviewed_by"`
	Version     int                                    `json:"version"`
	History     datatypes.JSONSlice[SubmissionVersion] `json:"history"`

	Task *Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}
