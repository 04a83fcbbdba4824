package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxviazov/fabricare-service/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestConfigLoad_FromYAMLAndEnv(t *testing.T) {
	// Minimal YAML; secrets will come from ENV
	yaml := `
app:
  name: fabricare-service
  version: 0.1.0
  env: test
  port: 18080

logger:
  level: info
  format: json
  output_target: stdout
  time_format: rfc3339
  with_caller: false
  stacktrace: false

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1
  max_conn_lifetime: 60
  max_conn_idle_time: 30
  health_check_period: 15

cache:
  driver: redis
  redis:
    addr: cache:6379

pagination:
  max_limit: 40
`
	path := writeTempConfig(t, yaml)

	// Provide required secrets via ENV using the canonical APP_* names
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("APP_POSTGRES_PASSWORD", "testpass")
	t.Setenv("APP_POSTGRES_DB", "testdb")
	t.Setenv("APP_PAYMENT_WEBHOOK_SECRET", "whsec_test")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Port != 18080 {
		t.Fatalf("expected app.port 18080, got %d", cfg.App.Port)
	}
	if cfg.Postgres.User != "testuser" || cfg.Postgres.Password != "testpass" || cfg.Postgres.DBName != "testdb" {
		t.Fatalf("env overrides not applied: got user=%q pass=%q db=%q", cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	}
	if cfg.Postgres.Host != "127.0.0.1" || cfg.Postgres.Port != 5432 || cfg.Postgres.SSLMode != "disable" {
		t.Fatalf("yaml values not loaded as expected: host=%q port=%d sslmode=%q", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.SSLMode)
	}
	if cfg.Logger.OutputTarget != "stdout" || cfg.Logger.TimeFormat != "rfc3339" {
		t.Fatalf("logger section not loaded: %+v", cfg.Logger)
	}
	if cfg.Cache.Driver != "redis" || cfg.Cache.Redis.Addr != "cache:6379" {
		t.Fatalf("cache section not loaded: %+v", cfg.Cache)
	}
	if cfg.Pagination.MaxLimit != 40 {
		t.Fatalf("expected pagination.max_limit 40, got %d", cfg.Pagination.MaxLimit)
	}
	if cfg.Pagination.CacheTTL() != 1000*time.Second {
		t.Fatalf("expected default cache ttl 1000s, got %s", cfg.Pagination.CacheTTL())
	}
	if cfg.Payment.WebhookSecret != "whsec_test" || cfg.Payment.Currency != "usd" {
		t.Fatalf("payment section not loaded: %+v", cfg.Payment)
	}
	if cfg.Auth.AccessTokenMinutes != 15 {
		t.Fatalf("expected default token lifetime 15, got %d", cfg.Auth.AccessTokenMinutes)
	}
}

func TestConfigLoad_MissingRequiredEnvFails(t *testing.T) {
	yaml := `
app:
  name: abc
  version: 0.0.0
  env: test
  port: 18080

logger:
  level: info

postgres:
  host: localhost
  port: 5432
  sslmode: disable
`
	path := writeTempConfig(t, yaml)

	// Ensure secrets are not set
	t.Setenv("APP_POSTGRES_USER", "")
	t.Setenv("APP_POSTGRES_PASSWORD", "")
	t.Setenv("APP_POSTGRES_DB", "")

	_, err := config.Load(path)
	if err == nil {
		t.Fatalf("expected error when required env are missing, got nil")
	}
}

func TestConfigLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"cache_driver": "cache:\n  driver: memcached\n",
		"paseto_key":   "auth:\n  paseto_key: not-hex\n",
		"max_limit":    "pagination:\n  max_limit: 0\n",
	}
	for name, section := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeTempConfig(t, section)
			t.Setenv("APP_POSTGRES_USER", "u")
			t.Setenv("APP_POSTGRES_PASSWORD", "p")
			t.Setenv("APP_POSTGRES_DB", "d")
			if _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestConfigLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
