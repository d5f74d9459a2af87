package config

import (
	"fmt"
	"time"
)

type TelemetryConfig struct {
	Enabled bool         `koanf:"enabled"`
	Traces  TracesConfig `koanf:"traces"`
}

// TracesConfig configures span export. SampleRatio applies to root spans only;
// children follow their parent's decision.
type TracesConfig struct {
	SampleRatio *float64       `koanf:"sampleratio"`
	OtlpHttp    OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Ratio returns the configured sample ratio, or 1 when unset.
func (c TracesConfig) Ratio() float64 {
	if c.SampleRatio == nil {
		return 1
	}
	return *c.SampleRatio
}

func (c *TelemetryConfig) String() string {
	if !c.Enabled {
		return "\n--- Telemetry ---\n  enabled: false\n"
	}
	o := c.Traces.OtlpHttp
	return fmt.Sprintf("\n--- Telemetry ---\n  enabled: true\n  endpoint: %s (insecure=%t, timeout=%s)\n  sample ratio: %g\n",
		o.Endpoint, o.Insecure, o.Timeout, c.Traces.Ratio())
}

// Validate checks the exporter settings only when tracing is enabled.
func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Traces.OtlpHttp.Endpoint == "" {
		return fmt.Errorf("telemetry.traces.otlphttp.endpoint is not configured")
	}
	if c.Traces.OtlpHttp.Timeout <= 0 {
		return fmt.Errorf("telemetry.traces.otlphttp.timeout must be greater than 0")
	}
	if r := c.Traces.Ratio(); r < 0 || r > 1 {
		return fmt.Errorf("telemetry.traces.sampleratio must be between 0 and 1: %g", r)
	}
	return nil
}
