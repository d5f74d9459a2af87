package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultNATSTimeout      = 5 * time.Second
	defaultNATSStream       = "PRODUCTS"
	defaultRabbitMQExchange = "marketplace.products"
)

// NATSConfig points the event publisher at a JetStream server.
// Timeout and Stream fall back to 5s and PRODUCTS.
type NATSConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	return fmt.Sprintf("\n--- NATS ---\n  url: %s\n  timeout: %s\n  stream: %s\n",
		MaskURL(c.URL), c.Timeout, c.Stream)
}

func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	if !hasScheme(c.URL, "nats", "tls", "ws", "wss") {
		return fmt.Errorf("NATS URL must start with 'nats://': %s", MaskURL(c.URL))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid NATS timeout: %s", c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = defaultNATSTimeout
	}
	if c.Stream == "" {
		c.Stream = defaultNATSStream
	}
	return nil
}

// RabbitMQConfig points the event publisher at a topic exchange.
type RabbitMQConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

func (c *RabbitMQConfig) String() string {
	return fmt.Sprintf("\n--- RabbitMQ ---\n  url: %s\n  exchange: %s\n", MaskURL(c.URL), c.Exchange)
}

func (c *RabbitMQConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("RabbitMQ URL is not configured")
	}
	if !hasScheme(c.URL, "amqp", "amqps") {
		return fmt.Errorf("RabbitMQ URL must start with 'amqp://': %s", MaskURL(c.URL))
	}
	if c.Exchange == "" {
		c.Exchange = defaultRabbitMQExchange
	}
	return nil
}

func hasScheme(url string, schemes ...string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(url, s+"://") {
			return true
		}
	}
	return false
}
