package components

import (
	"fmt"
	"medbox-sync/internal/config/shared"
	"medbox-sync/internal/interfaces"
	"strings"
)

type InfluxConfig interface {
	interfaces.Config
	GetUrl() string
	IsEnabled() bool
}

type InfluxConfigImpl struct {
	URL           string `json:"url"`
	Token         string `json:"token"`
	Organization  string `json:"organization"`
	Bucket        string `json:"bucket"`
	BatchSize     int    `json:"batch_size"`
	FlushInterval int    `json:"flush_interval_seconds"`
}

func NewInfluxConfig() InfluxConfigImpl {
	config := InfluxConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (I *InfluxConfigImpl) Load() {
	I.URL = shared.GetEnv("INFLUXDB_URL")
	I.Token = shared.GetEnv("INFLUXDB_TOKEN")
	I.Organization = shared.GetEnv("INFLUXDB_ORG")
	I.Bucket = shared.GetEnv("INFLUXDB_BUCKET")
	I.BatchSize = shared.GetEnvAsInt("INFLUXDB_BATCH_SIZE")
	I.FlushInterval = shared.GetEnvAsInt("INFLUXDB_FLUSH_INTERVAL")
}

func (I *InfluxConfigImpl) SetDefaults() {
	if I.URL == "" {
		I.URL = "http://localhost:8086"
	}
	if I.Organization == "" {
		I.Organization = "smartmedbox"
	}
	if I.Bucket == "" {
		I.Bucket = "vitals"
	}
	if I.BatchSize <= 0 {
		I.BatchSize = 100
	}
	if I.FlushInterval <= 0 {
		I.FlushInterval = 10
	}
}

// Validate only checks the mirror settings when a token is configured.
func (I *InfluxConfigImpl) Validate() error {
	if !I.IsEnabled() {
		return nil
	}
	if I.Organization == "" {
		return fmt.Errorf("influxdb organization is required")
	}
	if I.Bucket == "" {
		return fmt.Errorf("influxdb bucket is required")
	}
	if !strings.HasPrefix(I.URL, "http://") && !strings.HasPrefix(I.URL, "https://") {
		return fmt.Errorf("influxdb url must start with http:// or https://")
	}
	if I.FlushInterval > 60 {
		return fmt.Errorf("influxdb flush interval must be less than or equal to 60 seconds")
	}

	return nil
}

func (I *InfluxConfigImpl) GetUrl() string {
	return I.URL
}

func (I *InfluxConfigImpl) IsEnabled() bool {
	return I.Token != ""
}

var _ InfluxConfig = (*InfluxConfigImpl)(nil)
