package repositories

import (
	"context"
	"fmt"
	"gorm.io/gorm"
	"medbox-sync/internal/models"
	"time"
)

type SensorReadingRepository struct {
	db *gorm.DB
}

func NewSensorReadingRepository(db *gorm.DB) *SensorReadingRepository {
	return &SensorReadingRepository{db: db}
}

func (r *SensorReadingRepository) Create(ctx context.Context, reading *models.SensorReading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}
	return nil
}

func (r *SensorReadingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SensorReading{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sensor readings: %w", result.Error)
	}
	return result.RowsAffected, nil
}
