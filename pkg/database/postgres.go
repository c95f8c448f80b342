package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/djakk/covoiturage-libre/internal/models"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// unique-index violations surface as gorm.ErrDuplicatedKey, which
		// the repository's token collision retry relies on
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Trip{}, &models.Point{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	// Points are always read back in itinerary order
	db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_points_trip_rank
		ON points (trip_id, rank)
	`)

	return db, nil
}
