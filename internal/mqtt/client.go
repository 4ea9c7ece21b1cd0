package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// client implements the Client interface over paho.
type client struct {
	config          Config
	logger          *slog.Logger
	internalClient  paho.Client
	lastConnAttempt time.Time
	mu              sync.Mutex
	subscriptions   map[string]MessageHandler
}

// NewClient creates a new MQTT client with the provided configuration.
func NewClient(cfg Config, logger *slog.Logger) Client {
	if cfg.ReconnectCooldown == 0 {
		cfg.ReconnectCooldown = DefaultConfig().ReconnectCooldown
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConfig().ConnectTimeout
	}
	if cfg.DisconnectTimeout == 0 {
		cfg.DisconnectTimeout = DefaultConfig().DisconnectTimeout
	}
	return &client{
		config:        cfg,
		logger:        logger,
		subscriptions: make(map[string]MessageHandler),
	}
}

// Connect attempts to establish a connection to the MQTT broker. It
// resolves the broker hostname first so a bad address fails fast
// instead of spinning inside paho's retry loop.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastConnAttempt) < c.config.ReconnectCooldown {
		return fmt.Errorf("connection attempt too recent, last attempt was %v ago", time.Since(c.lastConnAttempt))
	}
	c.lastConnAttempt = time.Now()

	u, err := url.Parse(c.config.Broker)
	if err != nil {
		return fmt.Errorf("invalid broker URL: %w", err)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("invalid broker URL: %q has no host", c.config.Broker)
	}

	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			if dnsErr, ok := err.(*net.DNSError); ok {
				return dnsErr
			}
			return fmt.Errorf("failed to resolve hostname %s: %w", host, err)
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOrderMatters(true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.internalClient = paho.NewClient(opts)

	token := c.internalClient.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	return nil
}

// Subscribe registers the handler and, when already connected,
// subscribes immediately. Either way onConnect replays the
// subscription after every (re)connect.
func (c *client) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subscriptions[topic] = handler

	if c.internalClient != nil && c.internalClient.IsConnected() {
		return c.subscribeLocked(topic, handler)
	}
	return nil
}

func (c *client) subscribeLocked(topic string, handler MessageHandler) error {
	token := c.internalClient.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	c.logger.Info("subscribed to topic", slog.String("topic", topic))
	return nil
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	if c.internalClient != nil && c.internalClient.IsConnected() {
		c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
	}
}

func (c *client) onConnect(_ paho.Client) {
	c.logger.Info("connected to MQTT broker", slog.String("broker", c.config.Broker))

	c.mu.Lock()
	defer c.mu.Unlock()

	for topic, handler := range c.subscriptions {
		if err := c.subscribeLocked(topic, handler); err != nil {
			c.logger.Error("resubscribe failed",
				slog.String("topic", topic),
				slog.Any("error", err),
			)
		}
	}
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	// Paho's auto-reconnect takes over from here.
	c.logger.Warn("connection to MQTT broker lost",
		slog.String("broker", c.config.Broker),
		slog.Any("error", err),
	)
}
