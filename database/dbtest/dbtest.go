// Package dbtest opens isolated sqlite databases for tests.
package dbtest

import (
	"coursetrack/config"
	"coursetrack/database"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// New returns a migrated database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=0", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewFile opens a file-backed database through database.Connect, with the
// production pool size, for tests that need real concurrent connections.
func NewFile(t testing.TB) *gorm.DB {
	t.Helper()

	dbi, err := database.Connect(&config.Config{
		DBDriver:   "sqlite",
		DBPath:     filepath.Join(t.TempDir(), "coursetrack.db"),
		DBLogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	t.Cleanup(func() { dbi.Close() })
	return dbi.Db
}
