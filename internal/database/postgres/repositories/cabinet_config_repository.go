package repositories

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"medbox-sync/internal/models"
)

type CabinetConfigRepository struct {
	db *gorm.DB
}

func NewCabinetConfigRepository(db *gorm.DB) *CabinetConfigRepository {
	return &CabinetConfigRepository{db: db}
}

// Get returns the single settings row, or the factory defaults when none has been saved yet.
func (r *CabinetConfigRepository) Get(ctx context.Context) (*models.CabinetConfig, error) {
	var config models.CabinetConfig
	err := r.db.WithContext(ctx).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultCabinetConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cabinet config: %w", err)
	}
	return &config, nil
}
