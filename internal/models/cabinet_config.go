package models

import "time"

const (
	DefaultServoTimeout            = 10000
	DefaultLockRFIDOutsideReminder = false
)

type CabinetConfig struct {
	ID                      uint      `gorm:"primaryKey" json:"_id,omitempty"`
	ServoTimeout            int       `gorm:"not null;default:10000" json:"servoTimeout"`
	LockRFIDOutsideReminder bool      `gorm:"not null;default:false" json:"lockRFIDOutsideReminder"`
	WifiSSID                string    `gorm:"not null;default:''" json:"wifiSSID"`
	WifiPassword            string    `gorm:"not null;default:''" json:"-"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

func DefaultCabinetConfig() *CabinetConfig {
	return &CabinetConfig{
		ServoTimeout:            DefaultServoTimeout,
		LockRFIDOutsideReminder: DefaultLockRFIDOutsideReminder,
	}
}
