package models

import "time"

type SensorReading struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	DeviceID  string    `gorm:"not null;index" json:"deviceID"`
	HeartRate float64   `gorm:"not null" json:"heartRate"`
	SpO2      float64   `gorm:"column:spo2;not null" json:"spo2"`
	Timestamp string    `gorm:"not null" json:"timestamp"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (s *SensorReading) ToInfluxTags() map[string]string {
	return map[string]string{
		"device_id": s.DeviceID,
	}
}

func (s *SensorReading) ToInfluxFields() map[string]interface{} {
	return map[string]interface{}{
		"heart_rate": s.HeartRate,
		"spo2":       s.SpO2,
	}
}

// MeasuredAt prefers the device clock and falls back to the server receive time.
func (s *SensorReading) MeasuredAt() time.Time {
	if t, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
		return t
	}
	if !s.CreatedAt.IsZero() {
		return s.CreatedAt
	}
	return time.Now()
}
