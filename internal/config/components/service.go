package components

import (
	"medbox-sync/internal/config/shared"
	"medbox-sync/internal/interfaces"
	"time"
)

type ServiceConfig interface {
	interfaces.Config
}

type ServiceConfigImpl struct {
	Name                      string        `json:"name"`
	Version                   string        `json:"version"`
	DefaultDeviceID           string        `json:"default_device_id"`
	StalenessWindow           time.Duration `json:"staleness_window"`
	LivenessBroadcastInterval time.Duration `json:"liveness_broadcast_interval"`
	BulkConfigDelay           time.Duration `json:"bulk_config_delay"`
	BulkRecipientsDelay       time.Duration `json:"bulk_recipients_delay"`
	LaneBufferSize            int           `json:"lane_buffer_size"`
	LogRetention              time.Duration `json:"log_retention"`
	SensorRetention           time.Duration `json:"sensor_retention"`
	RetentionSweepInterval    time.Duration `json:"retention_sweep_interval"`
}

func NewServiceConfig() ServiceConfigImpl {
	config := ServiceConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (S *ServiceConfigImpl) Load() {
	S.Name = shared.GetEnv("SERVICE_NAME")
	S.Version = shared.GetEnv("SERVICE_VERSION")
	S.DefaultDeviceID = shared.GetEnv("DEFAULT_DEVICE_ID")
	S.StalenessWindow = shared.GetEnvAsDuration("STALENESS_WINDOW")
	S.LivenessBroadcastInterval = shared.GetEnvAsDuration("LIVENESS_BROADCAST_INTERVAL")
	S.BulkConfigDelay = shared.GetEnvAsDuration("BULK_CONFIG_DELAY")
	S.BulkRecipientsDelay = shared.GetEnvAsDuration("BULK_RECIPIENTS_DELAY")
	S.LaneBufferSize = shared.GetEnvAsInt("LANE_BUFFER_SIZE")
	S.LogRetention = shared.GetEnvAsDuration("LOG_RETENTION")
	S.SensorRetention = shared.GetEnvAsDuration("SENSOR_RETENTION")
	S.RetentionSweepInterval = shared.GetEnvAsDuration("RETENTION_SWEEP_INTERVAL")
}

func (S *ServiceConfigImpl) SetDefaults() {
	if S.Name == "" {
		S.Name = "medbox-sync"
	}
	if S.Version == "" {
		S.Version = "1.0.0"
	}
	if S.DefaultDeviceID == "" {
		S.DefaultDeviceID = "ESP32MedBox001"
	}
	if S.StalenessWindow <= 0 {
		S.StalenessWindow = 8 * time.Second
	}
	if S.LivenessBroadcastInterval <= 0 {
		S.LivenessBroadcastInterval = 2 * time.Second
	}
	if S.BulkConfigDelay <= 0 {
		S.BulkConfigDelay = 500 * time.Millisecond
	}
	if S.BulkRecipientsDelay <= 0 {
		S.BulkRecipientsDelay = time.Second
	}
	if S.LaneBufferSize <= 0 {
		S.LaneBufferSize = 128
	}
	if S.LogRetention <= 0 {
		S.LogRetention = 30 * 24 * time.Hour
	}
	if S.SensorRetention <= 0 {
		S.SensorRetention = 7 * 24 * time.Hour
	}
	if S.RetentionSweepInterval <= 0 {
		S.RetentionSweepInterval = time.Hour
	}
}

func (S *ServiceConfigImpl) Validate() error {
	if S.Name == "" {
		return &shared.ConfigError{Component: "service", Field: "name", Message: "is required"}
	}

	if S.DefaultDeviceID == "" {
		return &shared.ConfigError{Component: "service", Field: "default_device_id", Message: "is required"}
	}

	if S.LivenessBroadcastInterval >= S.StalenessWindow {
		return &shared.ConfigError{
			Component: "service",
			Field:     "liveness_broadcast_interval",
			Value:     S.LivenessBroadcastInterval,
			Message:   "must be shorter than the staleness window",
		}
	}

	// Steps are published in declaration order, so the recipients offset may not precede the config offset.
	if S.BulkRecipientsDelay < S.BulkConfigDelay {
		return &shared.ConfigError{
			Component: "service",
			Field:     "bulk_recipients_delay",
			Value:     S.BulkRecipientsDelay,
			Message:   "must not be shorter than bulk_config_delay",
		}
	}

	return nil
}

var _ ServiceConfig = (*ServiceConfigImpl)(nil)
