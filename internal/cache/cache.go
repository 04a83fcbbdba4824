// Package cache provides the key/value response cache used by list endpoints.
// The only invalidation primitive is Flush: every mutation drops the whole cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrMiss is returned by Get when no live entry exists for the key.
var ErrMiss = errors.New("cache miss")

// Cache is a TTL key/value store with global flush.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Flush(ctx context.Context) error
}

// Drivers.
const (
	DriverRedis = "redis"
	DriverLocal = "local"
	DriverNone  = "none"
)

type Config struct {
	Driver  string        `mapstructure:"driver" validate:"omitempty,oneof=redis local none"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Local   LocalConfig   `mapstructure:"local"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	// Timeouts in seconds.
	DialTimeout  int `mapstructure:"dial_timeout"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LocalConfig struct {
	SizeMB int `mapstructure:"size_mb"`
}

type BreakerConfig struct {
	MaxRequests         uint32 `mapstructure:"max_requests"`
	IntervalSeconds     int    `mapstructure:"interval_seconds"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
	ConsecutiveFailures uint32 `mapstructure:"consecutive_failures"`
}

// New builds the cache selected by cfg.Driver. Redis and local backends are wrapped in a
// circuit breaker so that backend failures surface as misses. The returned close func
// releases backend resources and is never nil.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (Cache, func() error, error) {
	l := logger.With().Str("module", "cache").Str("driver", cfg.Driver).Logger()
	noClose := func() error { return nil }

	switch cfg.Driver {
	case DriverRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noClose, err
		}
		l.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("redis cache connected")
		return NewResilient(NewRedis(client), cfg.Breaker, l), client.Close, nil
	case DriverLocal:
		l.Info().Int("size_mb", cfg.Local.SizeMB).Msg("local cache enabled")
		return NewResilient(NewLocal(cfg.Local.SizeMB), cfg.Breaker, l), noClose, nil
	case DriverNone, "":
		l.Warn().Msg("response cache disabled; list endpoints always hit the database")
		return NewNoop(), noClose, nil
	default:
		return nil, noClose, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
