package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Scroll store backends for the interactive client.
const (
	ScrollStoreMemory = "memory"
	ScrollStoreRedis  = "redis"
)

// ClientConfig configures storefrontctl. Command-line flags override it.
type ClientConfig struct {
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"warn"`
	ServerURL string        `env:"STOREFRONT_URL" envDefault:"http://localhost:8080"`
	Timeout   time.Duration `env:"STOREFRONT_TIMEOUT" envDefault:"10s"`

	// Session-scoped scroll position storage used by the browse session.
	ScrollStore string        `env:"SCROLL_STORE" envDefault:"memory"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
	ScrollTTL   time.Duration `env:"SCROLL_TTL" envDefault:"30m"`
}

// LoadClient reads the client configuration from the process environment
// and applies overrides, typically command-line flags, before validating.
func LoadClient(overrides ...func(*ClientConfig)) (*ClientConfig, error) {
	return LoadClientFrom(nil, overrides...)
}

// LoadClientFrom is LoadClient reading variables from environ. A nil environ
// means the process environment.
func LoadClientFrom(environ map[string]string, overrides ...func(*ClientConfig)) (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := pkgconfig.LoadWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration after flags have been applied.
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server URL: %q", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	switch c.ScrollStore {
	case ScrollStoreMemory:
	case ScrollStoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when SCROLL_STORE=redis")
		}
		if c.ScrollTTL <= 0 {
			return fmt.Errorf("invalid scroll TTL: %s", c.ScrollTTL)
		}
	default:
		return fmt.Errorf("invalid scroll store %q: want %q or %q", c.ScrollStore, ScrollStoreMemory, ScrollStoreRedis)
	}
	return nil
}
