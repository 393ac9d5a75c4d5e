package components

import (
	"fmt"
	"medbox-sync/internal/config/shared"
	"medbox-sync/internal/interfaces"
	"strings"
)

type LoggerConfig interface {
	interfaces.Config
}

type LoggerConfigImpl struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

func NewLoggerConfig() LoggerConfigImpl {
	config := LoggerConfigImpl{}
	config.Load()
	config.SetDefaults()
	return config
}

func (L *LoggerConfigImpl) Load() {
	L.Level = shared.GetEnv("LOG_LEVEL")
	L.Format = shared.GetEnv("LOG_FORMAT")
}

func (L *LoggerConfigImpl) SetDefaults() {
	if L.Level == "" {
		L.Level = "info"
	}
	if L.Format == "" {
		L.Format = "console"
	}
}

func (L *LoggerConfigImpl) Validate() error {
	switch strings.ToLower(L.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, fatal, got %q", L.Level)
	}

	if L.Format != "console" && L.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", L.Format)
	}

	return nil
}

var _ LoggerConfig = (*LoggerConfigImpl)(nil)
