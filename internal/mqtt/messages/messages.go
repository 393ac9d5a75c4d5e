package messages

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage   = errors.New("message payload is empty")
	ErrInvalidMessage = errors.New("message payload is invalid")
)

type Validator interface {
	Validate() error
}

// Decode unmarshals a bus payload into msg and validates it. Every failure
// wraps ErrEmptyMessage or ErrInvalidMessage.
func Decode(payload []byte, msg Validator) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return ErrEmptyMessage
	}

	if err := json.Unmarshal(payload, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	return nil
}

type identity struct {
	DeviceID string `json:"deviceID"`
}

// PeekDeviceID returns the deviceID field of a payload without validating the
// rest of it. Unparseable payloads yield "".
func PeekDeviceID(payload []byte) string {
	var id identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return ""
	}
	return id.DeviceID
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
