package fanout

import (
	"encoding/json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"net/http"
	"sync"
)

const EventInitialStatus = "initial_status"

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SnapshotSource hands a joining consumer the current status on the same
// goroutine that emits broadcasts, so nothing broadcast later can overtake it.
type SnapshotSource interface {
	Attach(join func(status map[string]interface{})) bool
}

// Sink receives every encoded broadcast in emission order.
type Sink interface {
	Publish(event string, message []byte)
}

type Hub struct {
	log      zerolog.Logger
	source   SnapshotSource
	sinks    []Sink
	upgrader websocket.Upgrader

	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// SetSource is called once the relay exists; the relay itself broadcasts through the hub.
func (h *Hub) SetSource(source SnapshotSource) {
	h.source = source
}

func (h *Hub) AddSink(sink Sink) {
	h.sinks = append(h.sinks, sink)
}

func encode(event string, data interface{}) ([]byte, error) {
	return json.Marshal(Message{Event: event, Data: data})
}

// Broadcast encodes once and queues the message for every consumer. Slow
// consumers lose messages rather than slowing the caller.
func (h *Hub) Broadcast(event string, data interface{}) {
	message, err := encode(event, data)
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast")
		return
	}

	h.mu.RLock()
	dropped := 0
	for client := range h.clients {
		if !client.SafeSend(message) {
			dropped++
		}
	}
	consumers := len(h.clients)
	h.mu.RUnlock()

	if dropped > 0 {
		h.log.Warn().Str("event", event).Int("dropped", dropped).Msg("Dropped broadcast for slow consumers")
	}
	h.log.Debug().Str("event", event).Int("consumers", consumers).Msg("Broadcast")

	for _, sink := range h.sinks {
		sink.Publish(event, message)
	}
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := newClient(h, conn, uuid.NewString())
	h.join(client)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) ServeWSHandler() http.Handler {
	return http.HandlerFunc(h.ServeWS)
}

func (h *Hub) join(client *Client) {
	attach := func(status map[string]interface{}) {
		h.register(client)
		h.sendInitial(client, status)
	}

	if h.source != nil && h.source.Attach(attach) {
		return
	}
	attach(map[string]interface{}{})
}

func (h *Hub) sendInitial(client *Client, status map[string]interface{}) {
	message, err := encode(EventInitialStatus, status)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode initial status")
		return
	}
	client.SafeSend(message)
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	if client.closed.Load() {
		h.mu.Unlock()
		return
	}
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info().Str("client", client.id).Int("consumers", count).Msg("Consumer connected")
}

func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client]
	delete(h.clients, client)
	count := len(h.clients)
	client.Close()
	h.mu.Unlock()

	if known {
		h.log.Info().Str("client", client.id).Int("consumers", count).Msg("Consumer disconnected")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every consumer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for client := range clients {
		client.Close()
	}
}
