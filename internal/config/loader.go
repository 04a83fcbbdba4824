package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads the YAML file at path and overlays APP_* environment variables
// (APP_POSTGRES_PASSWORD overrides postgres.password).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	setDefaults(v)

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can resolve env-only values during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fabricare-service")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", 10)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 300)
	v.SetDefault("postgres.health_check_period", 30)
	v.SetDefault("postgres.slow_query_ms", 200)
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.local.size_mb", 64)

	v.SetDefault("pagination.max_limit", 25)
	v.SetDefault("pagination.cache_ttl", 1000)

	v.SetDefault("auth.paseto_key", "")
	v.SetDefault("auth.access_token_minutes", 15)

	v.SetDefault("payment.stripe_secret_key", "")
	v.SetDefault("payment.webhook_secret", "")
	v.SetDefault("payment.success_url", "http://localhost:3000/order/success")
	v.SetDefault("payment.cancel_url", "http://localhost:3000/order/cancel")
	v.SetDefault("payment.currency", "usd")
}
