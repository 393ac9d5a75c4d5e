package broker

import (
	"context"
	"fmt"
	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/rs/zerolog"
	"medbox-sync/internal/config/components"
	"sync"
)

type BrokerImpl struct {
	server *mqtt.Server
	hook   *ConnectionHook
	config components.BrokerConfigImpl
	logger zerolog.Logger

	mu      sync.Mutex
	started bool
}

func NewBroker(cfg components.BrokerConfigImpl, logger zerolog.Logger) (*BrokerImpl, error) {
	server := mqtt.New(&mqtt.Options{})

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("failed to add auth hook: %w", err)
	}

	hook := NewConnectionHook(logger)
	if err := server.AddHook(hook, nil); err != nil {
		return nil, fmt.Errorf("failed to add connection hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: cfg.Address})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("failed to add tcp listener on %s: %w", cfg.Address, err)
	}

	return &BrokerImpl{
		server: server,
		hook:   hook,
		config: cfg,
		logger: logger,
	}, nil
}

func (b *BrokerImpl) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("broker already started")
	}

	if err := b.server.Serve(); err != nil {
		return fmt.Errorf("failed to serve broker: %w", err)
	}

	b.started = true
	b.logger.Info().Str("address", b.config.Address).Msg("MQTT broker listening")

	return nil
}

func (b *BrokerImpl) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}

	b.logger.Info().Msg("Stopping MQTT broker...")

	done := make(chan error, 1)
	go func() {
		done <- b.server.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to close broker: %w", err)
		}
	case <-ctx.Done():
		b.logger.Warn().Msg("Broker stop timeout")
	}

	b.started = false
	return nil
}

// ConnectedClients reports the number of clients currently connected to the
// embedded broker, including the relay's own bus client.
func (b *BrokerImpl) ConnectedClients() int64 {
	return b.hook.Count()
}
