package postgres

import (
	"context"
	"gorm.io/gorm"
	"medbox-sync/internal/database/postgres/repositories"
	"medbox-sync/internal/models"
	"time"
)

// Store is the record store the relay and the retention sweeper write through.
type Store struct {
	medicines  *repositories.MedicineRepository
	logs       *repositories.DeviceLogRepository
	sensors    *repositories.SensorReadingRepository
	config     *repositories.CabinetConfigRepository
	recipients *repositories.RecipientRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		medicines:  repositories.NewMedicineRepository(db),
		logs:       repositories.NewDeviceLogRepository(db),
		sensors:    repositories.NewSensorReadingRepository(db),
		config:     repositories.NewCabinetConfigRepository(db),
		recipients: repositories.NewRecipientRepository(db),
	}
}

func (s *Store) InsertLog(ctx context.Context, log *models.DeviceLog) error {
	return s.logs.Create(ctx, log)
}

func (s *Store) InsertSensorReading(ctx context.Context, reading *models.SensorReading) error {
	return s.sensors.Create(ctx, reading)
}

func (s *Store) UpdateMedicineQuantity(ctx context.Context, medicineID string, quantity int) error {
	return s.medicines.UpdateQuantity(ctx, medicineID, quantity)
}

func (s *Store) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	return s.medicines.FindAll(ctx)
}

func (s *Store) GetConfig(ctx context.Context) (*models.CabinetConfig, error) {
	return s.config.Get(ctx)
}

func (s *Store) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	return s.recipients.FindAll(ctx)
}

func (s *Store) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.logs.DeleteOlderThan(ctx, cutoff)
}

func (s *Store) PurgeSensorReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.sensors.DeleteOlderThan(ctx, cutoff)
}
