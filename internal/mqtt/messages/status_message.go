package messages

import (
	"encoding/json"
	"fmt"
)

// StatusMessage is an opaque key-value snapshot published by the cabinet.
type StatusMessage map[string]interface{}

func (m *StatusMessage) UnmarshalJSON(data []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("status must be an object")
	}
	*m = fields
	return nil
}

func (m *StatusMessage) Validate() error {
	if *m == nil {
		return fmt.Errorf("status must be an object")
	}
	return nil
}
