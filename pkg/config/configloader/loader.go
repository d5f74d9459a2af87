// Package configloader loads layered configuration into any type implementing Validator.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

type options struct {
	configFile string
	envFile    string
	overrides  map[string]any
	warnf      func(format string, args ...any)
}

// Option customizes where Load looks for configuration sources.
type Option func(*options)

// WithConfigFile overrides the YAML configuration file path.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile overrides the dotenv file path.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithOverrides sets dotted keys on top of every other source.
func WithOverrides(values map[string]any) Option {
	return func(o *options) { o.overrides = values }
}

// WithWarnf redirects warnings about unreadable optional sources.
// They go to the standard logger by default since no slog logger exists yet.
func WithWarnf(warnf func(format string, args ...any)) Option {
	return func(o *options) { o.warnf = warnf }
}

// Load merges, in increasing order of priority, the YAML file, the dotenv file,
// the process environment and explicit overrides, then validates the result.
// Environment keys carry the upper-cased service name as prefix and use '_'
// as separator: MARKETPLACE_STORE_BACKEND sets store.backend.
func Load[T Validator](serviceName string, opts ...Option) (T, error) {
	var cfg T
	o := options{configFile: "config.yaml", envFile: ".env", warnf: log.Printf}
	for _, opt := range opts {
		opt(&o)
	}

	prefix := strings.ToUpper(serviceName) + "_"
	toKey := func(name string) string {
		name = strings.TrimPrefix(strings.ToUpper(name), prefix)
		return strings.ReplaceAll(strings.ToLower(name), "_", ".")
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		o.warnf("WARN: skipping config file %s: %v", o.configFile, err)
	}
	if err := loadDotEnv(k, o.envFile, toKey); err != nil {
		o.warnf("WARN: skipping env file %s: %v", o.envFile, err)
	}
	if err := k.Load(env.Provider(prefix, ".", toKey), nil); err != nil {
		o.warnf("WARN: skipping process environment: %v", err)
	}
	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return cfg, fmt.Errorf("invalid config overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv merges a dotenv file without touching the process environment.
// A missing file is not an error.
func loadDotEnv(k *koanf.Koanf, path string, toKey func(string) string) error {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	m := make(map[string]any, len(values))
	for name, v := range values {
		m[toKey(name)] = v
	}
	return k.Load(confmap.Provider(m, "."), nil)
}
