package messages

import (
	"fmt"
	"medbox-sync/internal/models"
)

type SensorMessage struct {
	DeviceID  string   `json:"deviceID,omitempty"`
	HeartRate *float64 `json:"heartRate"`
	SpO2      *float64 `json:"spo2"`
	Timestamp string   `json:"timestamp"`
}

func (m *SensorMessage) Validate() error {
	if m.HeartRate == nil {
		return fmt.Errorf("heartRate is required")
	}
	if m.SpO2 == nil {
		return fmt.Errorf("spo2 is required")
	}
	if m.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

func (m *SensorMessage) ToModel(defaultDeviceID string) models.SensorReading {
	return models.SensorReading{
		DeviceID:  orDefault(m.DeviceID, defaultDeviceID),
		HeartRate: *m.HeartRate,
		SpO2:      *m.SpO2,
		Timestamp: m.Timestamp,
	}
}
