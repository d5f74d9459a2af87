// Package config holds the configuration sections shared by the marketplace components.
// Every section validates itself and renders a human readable summary for startup logs.
package config

import (
	"fmt"
	"time"
)

const defaultMaxBodyBytes = 1 << 20

// HTTPConfig configures the public listener. MaxBodyBytes caps request bodies
// accepted by the entry points and defaults to 1 MiB.
type HTTPConfig struct {
	Port           int   `koanf:"port"`
	MaxHeaderBytes int   `koanf:"maxheaderbytes"`
	MaxBodyBytes   int64 `koanf:"maxbodybytes"`
	Timeout        struct {
		Read       time.Duration `koanf:"read"`
		Write      time.Duration `koanf:"write"`
		Idle       time.Duration `koanf:"idle"`
		ReadHeader time.Duration `koanf:"readheader"`
	} `koanf:"timeout"`
}

func (c *HTTPConfig) String() string {
	t := c.Timeout
	return fmt.Sprintf("\n--- Server ---\n  port: %d\n  max header/body bytes: %d/%d\n  timeouts: read=%s write=%s idle=%s readHeader=%s\n",
		c.Port, c.MaxHeaderBytes, c.MaxBodyBytes, t.Read, t.Write, t.Idle, t.ReadHeader)
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read", c.Timeout.Read},
		{"write", c.Timeout.Write},
		{"idle", c.Timeout.Idle},
		{"read header", c.Timeout.ReadHeader},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("invalid HTTP server %s timeout: %v", t.name, t.value)
		}
	}
	if c.MaxHeaderBytes < 0 {
		return fmt.Errorf("invalid HTTP server max header bytes: %d", c.MaxHeaderBytes)
	}
	switch {
	case c.MaxBodyBytes < 0:
		return fmt.Errorf("invalid HTTP server max body bytes: %d", c.MaxBodyBytes)
	case c.MaxBodyBytes == 0:
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	return nil
}
