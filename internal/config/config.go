package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/whitepeony/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Commerce platform
	CommerceBaseURL string        `env:"COMMERCE_BASE_URL" envDefault:"http://localhost:8080"`
	CommerceTimeout time.Duration `env:"COMMERCE_TIMEOUT" envDefault:"10s"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cache TTLs
	CartTTL     time.Duration `env:"CART_TTL" envDefault:"24h"`
	WishlistTTL time.Duration `env:"WISHLIST_TTL" envDefault:"168h"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`

	// Pprof access, comma-separated CIDRs
	PprofCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !strings.HasPrefix(c.CommerceBaseURL, "http://") && !strings.HasPrefix(c.CommerceBaseURL, "https://") {
		return fmt.Errorf("invalid commerce base URL: %s", c.CommerceBaseURL)
	}
	if c.CartTTL <= 0 || c.WishlistTTL <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}
