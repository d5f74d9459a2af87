package config

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig is used by the postgres store backend. MaxConns of 0 keeps
// the pgxpool default.
type DatabaseConfig struct {
	URL      string        `koanf:"url"`
	Timeout  time.Duration `koanf:"timeout"`
	MaxConns int32         `koanf:"maxconns"`
}

func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("\n--- Database ---\n  url: %s\n  timeout: %s\n  max conns: %d\n",
		MaskURL(c.URL), c.Timeout, c.MaxConns)
}

func (c *DatabaseConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("database URL is not configured")
	}
	if !hasScheme(c.URL, "postgres", "postgresql") {
		return fmt.Errorf("database URL must start with 'postgres://': %s", MaskURL(c.URL))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("database connect timeout is not configured")
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("database.maxconns must not be negative: %d", c.MaxConns)
	}
	return nil
}

// MaskURL hides the credentials part of a connection URL.
func MaskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	if i := strings.LastIndex(url, "@"); i >= 0 {
		return "****" + url[i:]
	}
	return "****"
}
