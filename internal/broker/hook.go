package broker

import (
	"bytes"
	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/rs/zerolog"
	"sync/atomic"
)

type ConnectionHook struct {
	mqtt.HookBase
	logger  zerolog.Logger
	clients atomic.Int64
}

func NewConnectionHook(logger zerolog.Logger) *ConnectionHook {
	return &ConnectionHook{logger: logger}
}

func (h *ConnectionHook) ID() string {
	return "connection-counter"
}

func (h *ConnectionHook) Provides(b byte) bool {
	return bytes.Contains([]byte{
		mqtt.OnConnect,
		mqtt.OnDisconnect,
	}, []byte{b})
}

func (h *ConnectionHook) OnConnect(cl *mqtt.Client, pk packets.Packet) error {
	count := h.clients.Add(1)
	h.logger.Info().
		Str("client_id", cl.ID).
		Int64("clients", count).
		Msg("Client connected")
	return nil
}

func (h *ConnectionHook) OnDisconnect(cl *mqtt.Client, err error, expire bool) {
	count := h.clients.Add(-1)
	if count < 0 {
		h.clients.Store(0)
		count = 0
	}
	h.logger.Info().
		Err(err).
		Str("client_id", cl.ID).
		Int64("clients", count).
		Msg("Client disconnected")
}

func (h *ConnectionHook) Count() int64 {
	return h.clients.Load()
}
