// Package mqtt assina o topico da camera e entrega cada frame ao
// consumidor. Only the thin broker plumbing lives here, payload
// handling belongs to the camera consumer.
package mqtt

import (
	"context"
	"time"
)

// MessageHandler receives every payload published on a subscribed topic.
// Handlers run on the paho callback goroutine, one message at a time.
type MessageHandler func(topic string, payload []byte)

// Client defines the broker operations the service needs.
type Client interface {
	// Connect attempts to connect to the MQTT broker.
	Connect(ctx context.Context) error

	// Subscribe registers a handler for a topic. Subscriptions survive
	// reconnects.
	Subscribe(topic string, handler MessageHandler) error

	// IsConnected reports whether the broker connection is up.
	IsConnected() bool

	// Disconnect closes the connection to the MQTT broker.
	Disconnect()
}

// Config holds the configuration for the MQTT client.
type Config struct {
	Broker            string
	ClientID          string
	Username          string
	Password          string
	ReconnectCooldown time.Duration
	ConnectTimeout    time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable default values
func DefaultConfig() Config {
	return Config{
		ReconnectCooldown: 5 * time.Second,
		ConnectTimeout:    30 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
	}
}
