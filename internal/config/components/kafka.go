package components

import (
	"fmt"
	"medbox-sync/internal/config/shared"
	"medbox-sync/internal/interfaces"
	"time"
)

type KafkaConfig interface {
	interfaces.Config
	IsEnabled() bool
}

type KafkaConfigImpl struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	BatchTimeout time.Duration `json:"batch_timeout"`
}

func NewKafkaConfig() KafkaConfigImpl {
	config := KafkaConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (K *KafkaConfigImpl) Load() {
	K.Brokers = shared.GetEnvAsList("KAFKA_BROKERS")
	K.Topic = shared.GetEnv("KAFKA_TOPIC")
	K.BatchTimeout = shared.GetEnvAsDuration("KAFKA_BATCH_TIMEOUT")
}

func (K *KafkaConfigImpl) SetDefaults() {
	if K.Topic == "" {
		K.Topic = "medbox-events"
	}
	if K.BatchTimeout <= 0 {
		K.BatchTimeout = 10 * time.Millisecond
	}
}

func (K *KafkaConfigImpl) Validate() error {
	if !K.IsEnabled() {
		return nil
	}
	if K.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func (K *KafkaConfigImpl) IsEnabled() bool {
	return len(K.Brokers) > 0
}

var _ KafkaConfig = (*KafkaConfigImpl)(nil)
