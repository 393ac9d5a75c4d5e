package repositories

import (
	"context"
	"fmt"
	"gorm.io/gorm"
	"medbox-sync/internal/models"
	"time"
)

type DeviceLogRepository struct {
	db *gorm.DB
}

func NewDeviceLogRepository(db *gorm.DB) *DeviceLogRepository {
	return &DeviceLogRepository{db: db}
}

func (r *DeviceLogRepository) Create(ctx context.Context, log *models.DeviceLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to insert device log: %w", err)
	}
	return nil
}

func (r *DeviceLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.DeviceLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge device logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
