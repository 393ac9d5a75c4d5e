package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"math/rand"
	"medbox-sync/internal/config/components"
	"medbox-sync/internal/interfaces"
	"sync"
	"sync/atomic"
	"time"
)

// MessageHandler receives every message delivered on a subscribed filter.
// producerHint carries the transport-level publisher identity when known.
type MessageHandler func(topic string, payload []byte, producerHint string)

type Client struct {
	client    mqtt.Client
	config    components.MQTTConfigImpl
	logger    zerolog.Logger
	connected atomic.Bool

	subscriptions map[string]MessageHandler
	mu            sync.RWMutex
}

func NewClient(cfg components.MQTTConfigImpl, logger zerolog.Logger) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.GetUrl())

	clientID := fmt.Sprintf("%s-%d", cfg.ClientID, rand.Intn(10000))
	opts.SetClientID(clientID)

	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetCleanSession(cfg.CleanSession)
	opts.SetOrderMatters(true)

	c := &Client{
		config:        cfg,
		logger:        logger,
		subscriptions: make(map[string]MessageHandler),
	}

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		c.logger.Info().Str("broker", cfg.GetUrl()).Msg("Reconnecting to broker")
	})

	c.client = mqtt.NewClient(opts)

	return c
}

func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()

	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("error connecting to MQTT broker: %w", token.Error())
		}
		c.connected.Store(true)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connection to MQTT broker timed out: %w", ctx.Err())
	}
}

func (c *Client) Disconnect() {
	if c.client.IsConnected() {
		c.logger.Info().Msg("Disconnecting from MQTT broker")
		c.client.Disconnect(250)
	}
	c.connected.Store(false)
}

// Subscribe registers handler for filter. The subscription is replayed on every
// reconnect, so it survives broker restarts even with a clean session.
func (c *Client) Subscribe(filter string, handler MessageHandler) error {
	c.mu.Lock()
	c.subscriptions[filter] = handler
	c.mu.Unlock()

	if !c.client.IsConnected() {
		c.logger.Warn().Str("topic", filter).Msg("Not connected, subscription deferred until connect")
		return nil
	}

	return c.subscribe(filter, handler)
}

func (c *Client) subscribe(filter string, handler MessageHandler) error {
	token := c.client.Subscribe(filter, c.config.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload(), "")
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe to %s timed out", filter)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("error subscribing to topic %s: %w", filter, err)
	}

	c.logger.Info().Str("topic", filter).Msg("Added topic subscription")
	return nil
}

func (c *Client) Publish(topic string, payload []byte) error {
	if !c.IsConnected() {
		return fmt.Errorf("MQTT client is not connected, cannot publish to %s", topic)
	}

	token := c.client.Publish(topic, c.config.QoS, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	c.logger.Debug().
		Str("topic", topic).
		Int("payload_size", len(payload)).
		Msg("Successfully published message")

	return nil
}

// PublishJSON sends data as the raw message body; the cabinet parses it directly.
func (c *Client) PublishJSON(topic string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return c.Publish(topic, payload)
}

func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.client.IsConnected()
}

func (c *Client) onConnect(_ mqtt.Client) {
	c.connected.Store(true)
	c.logger.Info().
		Str("broker", c.config.GetUrl()).
		Msg("Successfully connected to broker")

	c.mu.RLock()
	defer c.mu.RUnlock()

	// paho invokes the handler on its own goroutine, so blocking on the tokens is safe here.
	for filter, handler := range c.subscriptions {
		if err := c.subscribe(filter, handler); err != nil {
			c.logger.Error().Err(err).Str("topic", filter).Msg("Failed to restore subscription")
		}
	}
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.connected.Store(false)
	c.logger.Warn().Err(err).Msg("Lost connection to broker")
}

var _ interfaces.IBusPublisher = (*Client)(nil)
