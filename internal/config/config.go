// Package config defines the configuration of the marketplace service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/marketplace/pkg/config"
	"github.com/abgdnv/marketplace/pkg/config/configloader"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	BrokerNone     = "none"
	BrokerNATS     = "nats"
	BrokerRabbitMQ = "rabbitmq"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Store      StoreConfig             `koanf:"store"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Events     EventsConfig            `koanf:"events"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// StoreConfig selects the product store backend.
type StoreConfig struct {
	Backend string `koanf:"backend"`
	Migrate bool   `koanf:"migrate"`
}

// EventsConfig selects the broker product events are published to.
type EventsConfig struct {
	Broker   string                `koanf:"broker"`
	Nats     config.NATSConfig     `koanf:"nats"`
	RabbitMQ config.RabbitMQConfig `koanf:"rabbitmq"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  backend: %s\n", c.Store.Backend))
	b.WriteString(fmt.Sprintf("  migrate: %t\n", c.Store.Migrate))
	if c.Store.Backend == BackendPostgres {
		b.WriteString(c.Database.String())
		b.WriteString(c.Resilience.String())
	}

	b.WriteString("\n--- Events ---\n")
	b.WriteString(fmt.Sprintf("  broker: %s\n", c.Events.Broker))
	switch c.Events.Broker {
	case BrokerNATS:
		b.WriteString(c.Events.Nats.String())
	case BrokerRabbitMQ:
		b.WriteString(c.Events.RabbitMQ.String())
	}

	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid.
// Sections of backends that are not selected are not validated.
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}

	switch c.Store.Backend {
	case "":
		c.Store.Backend = BackendMemory
	case BackendMemory:
	case BackendPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}

	switch c.Events.Broker {
	case "":
		c.Events.Broker = BrokerNone
	case BrokerNone:
	case BrokerNATS:
		if err := c.Events.Nats.Validate(); err != nil {
			return err
		}
	case BrokerRabbitMQ:
		if err := c.Events.RabbitMQ.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported events broker: %s", c.Events.Broker)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}

	return nil
}
