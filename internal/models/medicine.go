package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type StringList []string

type Medicine struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Name            string     `gorm:"not null" json:"name"`
	UID             string     `gorm:"uniqueIndex;not null" json:"uid"`
	CloseUID        string     `gorm:"not null;default:''" json:"closeUid"`
	Quantity        int        `gorm:"not null" json:"quantity"`
	ExpiryDate      string     `gorm:"not null;default:''" json:"expiryDate"`
	ServoPin        int        `gorm:"not null;default:1" json:"servoPin"`
	NumReminders    int        `gorm:"not null;default:0" json:"numReminders"`
	ReminderTimes   StringList `gorm:"type:jsonb" json:"reminderTimes"`
	ReminderTimeout int        `gorm:"not null;default:2" json:"reminderTimeout"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// MedicineDto is the shape the cabinet caches locally.
type MedicineDto struct {
	ID              string     `json:"_id"`
	Name            string     `json:"name"`
	UID             string     `json:"uid"`
	CloseUID        string     `json:"closeUid"`
	Quantity        int        `json:"quantity"`
	ExpiryDate      string     `json:"expiryDate"`
	ServoPin        int        `json:"servoPin"`
	NumReminders    int        `json:"numReminders"`
	ReminderTimes   StringList `json:"reminderTimes"`
	ReminderTimeout int        `json:"reminderTimeout"`
}

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *Medicine) ToDto() MedicineDto {
	reminderTimes := m.ReminderTimes
	if reminderTimes == nil {
		reminderTimes = StringList{}
	}

	return MedicineDto{
		ID:              m.ID,
		Name:            m.Name,
		UID:             m.UID,
		CloseUID:        m.CloseUID,
		Quantity:        m.Quantity,
		ExpiryDate:      m.ExpiryDate,
		ServoPin:        m.ServoPin,
		NumReminders:    m.NumReminders,
		ReminderTimes:   reminderTimes,
		ReminderTimeout: m.ReminderTimeout,
	}
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var fieldBytes []byte
	switch v := value.(type) {
	case []byte:
		fieldBytes = v
	case string:
		fieldBytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(fieldBytes, (*[]string)(l))
}
