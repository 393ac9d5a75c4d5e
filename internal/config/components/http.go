package components

import (
	"fmt"
	"medbox-sync/internal/config/shared"
	"medbox-sync/internal/interfaces"
	"net"
	"time"
)

type HTTPConfig interface {
	interfaces.Config
}

type HTTPConfigImpl struct {
	Address         string        `json:"address"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

func NewHTTPConfig() HTTPConfigImpl {
	config := HTTPConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (H *HTTPConfigImpl) Load() {
	H.Address = shared.GetEnv("HTTP_ADDRESS")
	H.ShutdownTimeout = shared.GetEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT")
}

func (H *HTTPConfigImpl) SetDefaults() {
	if H.Address == "" {
		H.Address = ":3001"
	}
	if H.ShutdownTimeout <= 0 {
		H.ShutdownTimeout = 5 * time.Second
	}
}

func (H *HTTPConfigImpl) Validate() error {
	if _, _, err := net.SplitHostPort(H.Address); err != nil {
		return fmt.Errorf("HTTP_ADDRESS %q is not a valid listen address: %w", H.Address, err)
	}
	return nil
}

var _ HTTPConfig = (*HTTPConfigImpl)(nil)
