package models

import "time"

// DeviceLog is an append-only record of a cabinet action; it is never updated after insert.
type DeviceLog struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	DeviceID  string    `gorm:"not null;index" json:"deviceID"`
	Timestamp string    `gorm:"not null" json:"timestamp"`
	CardUID   string    `gorm:"not null;index" json:"cardUID"`
	Action    string    `gorm:"not null;index" json:"action"`
	Servo     string    `gorm:"not null" json:"servo"`
	Details   string    `gorm:"not null;default:''" json:"details"`
	Success   bool      `gorm:"not null" json:"success"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
