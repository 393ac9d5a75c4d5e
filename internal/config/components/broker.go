package components

import (
	"fmt"
	"medbox-sync/internal/config/shared"
	"medbox-sync/internal/interfaces"
	"net"
)

type BrokerConfig interface {
	interfaces.Config
}

type BrokerConfigImpl struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

func NewBrokerConfig() BrokerConfigImpl {
	config := BrokerConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (B *BrokerConfigImpl) Load() {
	B.Enabled = shared.GetEnvAsBool("BROKER_ENABLED", true)
	B.Address = shared.GetEnv("BROKER_ADDRESS")
}

func (B *BrokerConfigImpl) SetDefaults() {
	if B.Address == "" {
		B.Address = ":1883"
	}
}

func (B *BrokerConfigImpl) Validate() error {
	if !B.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(B.Address); err != nil {
		return fmt.Errorf("BROKER_ADDRESS %q is not a valid listen address: %w", B.Address, err)
	}
	return nil
}

var _ BrokerConfig = (*BrokerConfigImpl)(nil)
