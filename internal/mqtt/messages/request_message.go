package messages

import (
	"fmt"
	"medbox-sync/internal/models"
)

type RequestMessage struct {
	Type     string `json:"type"`
	DeviceID string `json:"deviceID,omitempty"`
}

func (m *RequestMessage) Validate() error {
	if m.Type == "" {
		return fmt.Errorf("type is required")
	}
	return nil
}

func (m *RequestMessage) IsLoadAll() bool {
	return m.Type == models.MessageTypeLoadAll
}
