package messages

import (
	"fmt"
	"medbox-sync/internal/models"
)

type MedicineUpdateMessage struct {
	DeviceID   string `json:"deviceID,omitempty"`
	MedicineID string `json:"medicineID"`
	Quantity   *int   `json:"quantity"`
}

func (m *MedicineUpdateMessage) Validate() error {
	if m.MedicineID == "" {
		return fmt.Errorf("medicineID is required")
	}
	if m.Quantity == nil {
		return fmt.Errorf("quantity is required")
	}
	if *m.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", *m.Quantity)
	}
	return nil
}

func (m *MedicineUpdateMessage) ToModel() models.QuantityChanged {
	return models.QuantityChanged{
		MedicineID: m.MedicineID,
		Quantity:   *m.Quantity,
	}
}
