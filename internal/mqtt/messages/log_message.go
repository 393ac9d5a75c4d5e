package messages

import (
	"fmt"
	"medbox-sync/internal/models"
)

const DefaultServo = "Servo1"

type DeviceLogMessage struct {
	DeviceID  string `json:"deviceID,omitempty"`
	Timestamp string `json:"timestamp"`
	CardUID   string `json:"cardUID"`
	Action    string `json:"action"`
	Servo     string `json:"servo,omitempty"`
	Details   string `json:"details,omitempty"`
	Success   *bool  `json:"success"`
}

func (m *DeviceLogMessage) Validate() error {
	if m.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if m.CardUID == "" {
		return fmt.Errorf("cardUID is required")
	}
	if m.Action == "" {
		return fmt.Errorf("action is required")
	}
	if m.Success == nil {
		return fmt.Errorf("success is required")
	}
	return nil
}

func (m *DeviceLogMessage) ToModel(defaultDeviceID string) models.DeviceLog {
	return models.DeviceLog{
		DeviceID:  orDefault(m.DeviceID, defaultDeviceID),
		Timestamp: m.Timestamp,
		CardUID:   m.CardUID,
		Action:    m.Action,
		Servo:     orDefault(m.Servo, DefaultServo),
		Details:   m.Details,
		Success:   *m.Success,
	}
}
