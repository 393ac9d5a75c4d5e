package interfaces

import (
	"context"
	"encoding/json"
	"time"
)

type IBusPublisher interface {
	PublishJSON(topic string, data interface{}) error
}

type ITableListener interface {
	GetTableName() string
	HandleChange(ctx context.Context, event *TableChangeEvent) error
	GetChannelName() string
}

type IListenerManager interface {
	RegisterListener(listener ITableListener) error
	Initialize() error
	Start()
	Stop()
}

type OperationType string

const (
	InsertOperation OperationType = "INSERT"
	UpdateOperation OperationType = "UPDATE"
	DeleteOperation OperationType = "DELETE"
)

type TableChangeEvent struct {
	Operation OperationType          `json:"operation"`
	Table     string                 `json:"table"`
	OldData   map[string]interface{} `json:"old_data,omitempty"`
	NewData   map[string]interface{} `json:"new_data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ChangedColumns lists the columns whose values differ between the old and new row.
func (t *TableChangeEvent) ChangedColumns() []string {
	var changed []string
	for column, newValue := range t.NewData {
		oldValue, ok := t.OldData[column]
		if !ok || !jsonEqual(oldValue, newValue) {
			changed = append(changed, column)
		}
	}
	return changed
}

func jsonEqual(a, b interface{}) bool {
	left, err1 := json.Marshal(a)
	right, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(left) == string(right)
}
