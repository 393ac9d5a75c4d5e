package repositories

import (
	"context"
	"fmt"
	"gorm.io/gorm"
	"medbox-sync/internal/models"
)

type RecipientRepository struct {
	db *gorm.DB
}

func NewRecipientRepository(db *gorm.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

func (r *RecipientRepository) FindAll(ctx context.Context) ([]models.Recipient, error) {
	var recipients []models.Recipient
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&recipients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all recipients: %w", err)
	}
	return recipients, nil
}
