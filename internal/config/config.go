package config

import (
	"time"

	"github.com/maxviazov/fabricare-service/internal/cache"
	"github.com/maxviazov/fabricare-service/internal/logger"
)

type Config struct {
	App        AppConfig           `mapstructure:"app"`
	Logger     logger.LoggerConfig `mapstructure:"logger" validate:"-"`
	Postgres   PostgresConfig      `mapstructure:"postgres"`
	Cache      cache.Config        `mapstructure:"cache"`
	Pagination PaginationConfig    `mapstructure:"pagination"`
	Auth       AuthConfig          `mapstructure:"auth"`
	Payment    PaymentConfig       `mapstructure:"payment"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
	// Seconds to wait for in-flight requests on shutdown.
	ShutdownTimeout int `mapstructure:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	DBName   string `mapstructure:"db" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns int32 `mapstructure:"max_conns"`
	MinConns int32 `mapstructure:"min_conns"`
	// Durations in seconds.
	MaxConnLifetime   int `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int `mapstructure:"health_check_period"`
	// Statements slower than this many milliseconds are logged at warn.
	SlowQueryMillis int `mapstructure:"slow_query_ms"`

	// Migrate applies embedded goose migrations on startup.
	Migrate bool `mapstructure:"migrate"`
}

// PaginationConfig holds list endpoint defaults.
type PaginationConfig struct {
	MaxLimit        int `mapstructure:"max_limit" validate:"min=1"`
	CacheTTLSeconds int `mapstructure:"cache_ttl"`
}

func (p PaginationConfig) CacheTTL() time.Duration {
	return time.Duration(p.CacheTTLSeconds) * time.Second
}

type AuthConfig struct {
	// PasetoKey is a hex encoded 32-byte V4 symmetric key.
	PasetoKey          string `mapstructure:"paseto_key" validate:"omitempty,hexadecimal,len=64"`
	AccessTokenMinutes int    `mapstructure:"access_token_minutes" validate:"min=1"`
}

type PaymentConfig struct {
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	SuccessURL      string `mapstructure:"success_url" validate:"omitempty,url"`
	CancelURL       string `mapstructure:"cancel_url" validate:"omitempty,url"`
	Currency        string `mapstructure:"currency" validate:"len=3"`
}
