package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Session  SessionConfig
	Shop     ShopConfig
	Seed     SeedConfig
	Password PasswordConfig
	Audit    AuditConfig
}

type SessionConfig struct {
	// Secret signs the session cookie. Empty means a random key per process,
	// which logs everyone out on restart.
	Secret       string `env:"SESSION_SECRET"`
	CookieName   string `env:"SESSION_COOKIE, default=storefront_session"`
	CookieSecure bool   `env:"COOKIE_SECURE,  default=false"`

	// AnonymousTTL bounds how long an anonymous session is kept.
	AnonymousTTL  time.Duration `env:"ANON_SESSION_TTL,       default=30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1m"`
}

type ShopConfig struct {
	ShippingFlatRate string `env:"SHIPPING_FLAT_RATE, default=7.99"`
}

type SeedConfig struct {
	Products int    `env:"SEED_PRODUCTS,      default=10"`
	Email    string `env:"SEED_USER_EMAIL,    default=michael@example.com"`
	Username string `env:"SEED_USER_USERNAME, default=michael"`
	Password string `env:"SEED_USER_PASSWORD, default=password"`
}

type PasswordConfig struct {
	MemoryKB    uint32 `env:"ARGON2_MEMORY_KB,   default=65536"`
	Time        uint32 `env:"ARGON2_TIME,        default=3"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM, default=2"`
}

type AuditConfig struct {
	Buffer  int `env:"AUDIT_BUFFER,  default=256"`
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := cfg.ShippingRate(); err != nil {
		return nil, err
	}
	if cfg.IsProduction() && cfg.Session.Secret == "" {
		return nil, errors.New("SESSION_SECRET is required in production")
	}
	if cfg.Session.AnonymousTTL <= 0 || cfg.Session.SweepInterval <= 0 {
		return nil, errors.New("ANON_SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	return &cfg, nil
}

// ShippingRate parses the flat shipping rate. Negative rates are rejected.
func (c *Config) ShippingRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Shop.ShippingFlatRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SHIPPING_FLAT_RATE: %w", err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("SHIPPING_FLAT_RATE: must not be negative, got %s", rate)
	}
	return rate, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
