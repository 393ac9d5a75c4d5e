package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"medbox-sync/internal/config/components"
	"medbox-sync/internal/interfaces"
)

type Wrapper interface {
	GetMQTTConfig() components.MQTTConfigImpl
	GetBrokerConfig() components.BrokerConfigImpl
	GetPostgresConfig() components.PostgresConfigImpl
	GetInfluxConfig() components.InfluxConfigImpl
	GetKafkaConfig() components.KafkaConfigImpl
	GetLoggerConfig() components.LoggerConfigImpl
	GetServiceConfig() components.ServiceConfigImpl
	GetHTTPConfig() components.HTTPConfigImpl
}

type WrapperImpl struct {
	MQTTConfig     components.MQTTConfigImpl     `json:"mqtt"`
	BrokerConfig   components.BrokerConfigImpl   `json:"broker"`
	PostgresConfig components.PostgresConfigImpl `json:"postgres"`
	InfluxConfig   components.InfluxConfigImpl   `json:"influx"`
	KafkaConfig    components.KafkaConfigImpl    `json:"kafka"`
	LoggerConfig   components.LoggerConfigImpl   `json:"logger"`
	ServiceConfig  components.ServiceConfigImpl  `json:"service"`
	HTTPConfig     components.HTTPConfigImpl     `json:"http"`
}

// NewWrapper reads .env (if present) before any component looks at the environment.
func NewWrapper() *WrapperImpl {
	_ = godotenv.Load()

	return &WrapperImpl{
		MQTTConfig:     components.NewMQTTConfig(),
		BrokerConfig:   components.NewBrokerConfig(),
		PostgresConfig: components.NewPostgresConfig(),
		InfluxConfig:   components.NewInfluxConfig(),
		KafkaConfig:    components.NewKafkaConfig(),
		LoggerConfig:   components.NewLoggerConfig(),
		ServiceConfig:  components.NewServiceConfig(),
		HTTPConfig:     components.NewHTTPConfig(),
	}
}

func Load() (*WrapperImpl, error) {
	wrapper := NewWrapper()
	if err := wrapper.Validate(); err != nil {
		return nil, err
	}
	return wrapper, nil
}

func (C *WrapperImpl) Validate() error {
	checks := []struct {
		name   string
		config interfaces.Config
	}{
		{"mqtt", &C.MQTTConfig},
		{"broker", &C.BrokerConfig},
		{"postgres", &C.PostgresConfig},
		{"influx", &C.InfluxConfig},
		{"kafka", &C.KafkaConfig},
		{"logger", &C.LoggerConfig},
		{"service", &C.ServiceConfig},
		{"http", &C.HTTPConfig},
	}

	for _, check := range checks {
		if err := check.config.Validate(); err != nil {
			return fmt.Errorf("invalid %s config: %w", check.name, err)
		}
	}
	return nil
}

func (C *WrapperImpl) GetMQTTConfig() components.MQTTConfigImpl         { return C.MQTTConfig }
func (C *WrapperImpl) GetBrokerConfig() components.BrokerConfigImpl     { return C.BrokerConfig }
func (C *WrapperImpl) GetPostgresConfig() components.PostgresConfigImpl { return C.PostgresConfig }
func (C *WrapperImpl) GetInfluxConfig() components.InfluxConfigImpl     { return C.InfluxConfig }
func (C *WrapperImpl) GetKafkaConfig() components.KafkaConfigImpl       { return C.KafkaConfig }
func (C *WrapperImpl) GetLoggerConfig() components.LoggerConfigImpl     { return C.LoggerConfig }
func (C *WrapperImpl) GetServiceConfig() components.ServiceConfigImpl   { return C.ServiceConfig }
func (C *WrapperImpl) GetHTTPConfig() components.HTTPConfigImpl         { return C.HTTPConfig }

var _ Wrapper = (*WrapperImpl)(nil)
