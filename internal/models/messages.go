package models

const (
	MessageTypeLoadMedicines  = "load_medicines"
	MessageTypeLoadRecipients = "load_recipients"
	MessageTypeConfig         = "config"
	MessageTypeControl        = "control"
	MessageTypeLoadAll        = "load_all"
)

type LoadMedicinesMessage struct {
	Type      string        `json:"type"`
	Count     int           `json:"count"`
	Medicines []MedicineDto `json:"medicines"`
}

type LoadRecipientsMessage struct {
	Type       string         `json:"type"`
	Count      int            `json:"count"`
	Recipients []RecipientDto `json:"recipients"`
}

type ConfigMessage struct {
	Type                    string `json:"type"`
	ServoTimeout            int    `json:"servoTimeout"`
	LockRFIDOutsideReminder bool   `json:"lockRFIDOutsideReminder"`
}

type ControlCommand struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

type QuantityChanged struct {
	MedicineID string `json:"medicineID"`
	Quantity   int    `json:"quantity"`
}

func NewLoadMedicinesMessage(medicines []Medicine) LoadMedicinesMessage {
	dtos := make([]MedicineDto, 0, len(medicines))
	for i := range medicines {
		dtos = append(dtos, medicines[i].ToDto())
	}
	return LoadMedicinesMessage{
		Type:      MessageTypeLoadMedicines,
		Count:     len(dtos),
		Medicines: dtos,
	}
}

func NewLoadRecipientsMessage(recipients []Recipient) LoadRecipientsMessage {
	dtos := make([]RecipientDto, 0, len(recipients))
	for i := range recipients {
		dtos = append(dtos, recipients[i].ToDto())
	}
	return LoadRecipientsMessage{
		Type:       MessageTypeLoadRecipients,
		Count:      len(dtos),
		Recipients: dtos,
	}
}

func NewConfigMessage(config *CabinetConfig) ConfigMessage {
	if config == nil {
		config = DefaultCabinetConfig()
	}
	return ConfigMessage{
		Type:                    MessageTypeConfig,
		ServoTimeout:            config.ServoTimeout,
		LockRFIDOutsideReminder: config.LockRFIDOutsideReminder,
	}
}

func NewControlCommand(action string) ControlCommand {
	return ControlCommand{Type: MessageTypeControl, Action: action}
}
