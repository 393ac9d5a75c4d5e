package repositories

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"medbox-sync/internal/models"
	"time"
)

var ErrMedicineNotFound = errors.New("medicine not found")

type MedicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) *MedicineRepository {
	return &MedicineRepository{db: db}
}

func (r *MedicineRepository) FindAll(ctx context.Context) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&medicines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all medicines: %w", err)
	}
	return medicines, nil
}

// UpdateQuantity overwrites the stored quantity. Writing the same value twice
// is a no-op in effect; there is no version check.
func (r *MedicineRepository) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	result := r.db.WithContext(ctx).Model(&models.Medicine{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update quantity of medicine %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("medicine %s: %w", id, ErrMedicineNotFound)
	}
	return nil
}
