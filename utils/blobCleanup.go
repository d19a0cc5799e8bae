package utils

import (
	"context"
	"coursetrack/models"
	"coursetrack/storage"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// QueueBlobCleanups stores failed cascade deletes so the scheduler can retry them
func QueueBlobCleanups(db *gorm.DB, failures []storage.DeleteFailure, reason string) {
	if len(failures) == 0 {
		return
	}
	rows := make([]models.BlobCleanup, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, models.BlobCleanup{URL: f.URL, Reason: reason, Attempts: 1, LastError: f.Err})
	}
	if err := db.Create(&rows).Error; err != nil {
		log.Printf("[BLOB-CLEANUP] Error queueing %d failed deletes for %s: %v", len(rows), reason, err)
	}
}

// RetryBlobCleanups retries pending cleanups once and returns how many were resolved
func RetryBlobCleanups(ctx context.Context, db *gorm.DB, store storage.BlobStore) (int, error) {
	var pending []models.BlobCleanup
	if err := db.WithContext(ctx).
		Where("done_at IS NULL AND attempts < ?", models.MaxBlobCleanupAttempts).
		Order("id asc").Limit(100).
		Find(&pending).Error; err != nil {
		return 0, err
	}

	resolved := 0
	for _, p := range pending {
		err := store.Delete(ctx, p.URL)
		updates := map[string]interface{}{"attempts": p.Attempts + 1}
		if err == nil || errors.Is(err, storage.ErrNotFound) {
			updates["done_at"] = time.Now()
			updates["last_error"] = ""
			resolved++
		} else {
			updates["last_error"] = err.Error()
		}
		if err := db.WithContext(ctx).Model(&models.BlobCleanup{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			log.Printf("[BLOB-CLEANUP] Error updating cleanup %d: %v", p.ID, err)
		}
	}
	return resolved, nil
}

// StartBlobCleanupScheduler runs RetryBlobCleanups on the given cron spec
func StartBlobCleanupScheduler(db *gorm.DB, store storage.BlobStore, spec string) (*cron.Cron, error) {
	log.Println("[BLOB-CLEANUP] Initializing blob cleanup scheduler...")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := RetryBlobCleanups(ctx, db, store)
		if err != nil {
			log.Printf("[BLOB-CLEANUP] Error fetching pending cleanups: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[BLOB-CLEANUP] Removed %d orphaned blobs", n)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[BLOB-CLEANUP] Scheduler started - runs at %q", spec)
	return c, nil
}
