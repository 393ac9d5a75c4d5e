package listeners

import "fmt"

const ChannelName = "table_events"

type BaseTableListener struct {
	tableName   string
	channelName string
}

func NewBaseTableListener(tableName string) *BaseTableListener {
	return &BaseTableListener{
		tableName:   tableName,
		channelName: ChannelName,
	}
}

func (b *BaseTableListener) GetTableName() string {
	return b.tableName
}

func (b *BaseTableListener) GetChannelName() string {
	return b.channelName
}

func stringField(data map[string]interface{}, key string) string {
	value, ok := data[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func intField(data map[string]interface{}, key string) (int, bool) {
	switch v := data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}
