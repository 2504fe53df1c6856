package service

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/greentrails/trail-importer/internal/domain"
	"github.com/greentrails/trail-importer/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway SQLite database with the import schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.Trail{},
		&domain.BulkImportJob{},
		&domain.TrailImportJob{},
		&domain.Tag{},
		&domain.TrailTag{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// newTestLogger returns a logger that discards output.
func newTestLogger() *logger.Logger {
	return logger.New(&logger.Config{
		Level:       "error",
		Format:      "json",
		Output:      io.Discard,
		ServiceName: "test",
	})
}

func ptr(f float64) *float64 {
	return &f
}
