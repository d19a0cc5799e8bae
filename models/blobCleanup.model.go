package models

import (
	"time"

	"gorm.io/gorm"
)

const MaxBlobCleanupAttempts = 5

// BlobCleanup is a blob delete that failed during a cascade and waits for a retry
type BlobCleanup struct {
	gorm.Model
	URL       string     `json:"url" gorm:"not null"`
	Reason    string     `json:"reason"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"last_error" gorm:"type:text"`
	DoneAt    *time.Time `json:"done_at" gorm:"index"`
}
