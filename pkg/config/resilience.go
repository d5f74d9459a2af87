package config

import (
	"fmt"
	"time"
)

type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// CircuitBreakerConfig guards store calls. The breaker trips after
// ConsecutiveFailures failures in a row, or once ErrorRatePercent of the
// requests in the current window have failed.
type CircuitBreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	MaxRequests         uint32        `koanf:"maxrequests"`
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ResilienceConfig) String() string {
	cb := c.CircuitBreaker
	if !cb.Enabled {
		return "\n--- Circuit Breaker ---\n  enabled: false\n"
	}
	return fmt.Sprintf("\n--- Circuit Breaker ---\n  enabled: true\n  half-open requests: %d\n  trip after: %d failures or %d%% errors\n  open for: %s\n",
		cb.MaxRequests, cb.ConsecutiveFailures, cb.ErrorRatePercent, cb.OpenTimeout)
}

func (c *ResilienceConfig) Validate() error {
	cb := c.CircuitBreaker
	if !cb.Enabled {
		return nil
	}
	switch {
	case cb.MaxRequests == 0:
		return fmt.Errorf("resilience.circuitbreaker.maxrequests must be greater than 0")
	case cb.ConsecutiveFailures == 0:
		return fmt.Errorf("resilience.circuitbreaker.consecutivefailures must be greater than 0")
	case cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100:
		return fmt.Errorf("resilience.circuitbreaker.errorratepercent must be between 0 and 100: %d", cb.ErrorRatePercent)
	case cb.OpenTimeout <= 0:
		return fmt.Errorf("resilience.circuitbreaker.opentimeout must be greater than 0")
	}
	return nil
}
