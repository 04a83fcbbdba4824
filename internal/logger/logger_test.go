package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	logpkg "github.com/maxviazov/fabricare-service/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		config         *logpkg.LoggerConfig
		expectError    bool
		validateOutput func(zerolog.Logger) bool
	}{
		{
			name: "valid production environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     zerolog.TimeFormatUnix,
				Fields:         map[string]interface{}{"key": "value"},
				WithCaller:     false,
				Stacktrace:     false,
			},
			expectError: false,
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel
			},
		},
		{
			name: "invalid configuration - wrong env",
			config: &logpkg.LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env", // not allowed by validator
				Level:       "debug",
			},
			expectError:    true,
			validateOutput: nil,
		},
		{
			name: "valid development environment with debug level",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "dev",
				Level:          "debug",
				TimeField:      "timestamp",
				TimeFormat:     zerolog.TimeFormatUnix,
				Fields:         map[string]interface{}{"key": "value"},
				WithCaller:     true,
				Stacktrace:     true,
			},
			expectError: false,
			validateOutput: func(logger zerolog.Logger) bool {
				return true
			},
		},
		{
			name: "invalid log level",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "invalid-level", // not allowed
				TimeField:      "timestamp",
				TimeFormat:     zerolog.TimeFormatUnix,
			},
			expectError:    true,
			validateOutput: nil,
		},
		{
			name: "valid staging environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "2.0.0",
				Env:            "staging",
				Level:          "warn",
				TimeField:      "time",
				TimeFormat:     zerolog.TimeFormatUnix,
				WithCaller:     false,
				Stacktrace:     true,
			},
			expectError: false,
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.WarnLevel
			},
		},
		{
			name: "valid development environment without debug",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "dev",
				Level:          "info",
				TimeField:      "time",
				TimeFormat:     zerolog.TimeFormatUnix,
				WithCaller:     false,
				Stacktrace:     false,
			},
			expectError: false,
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel
			},
		},
		{
			name: "valid production environment with additional fields",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.1",
				Env:            "prod",
				Level:          "error",
				TimeField:      "timestamp",
				TimeFormat:     zerolog.TimeFormatUnix,
				Fields:         map[string]interface{}{"customField": "customValue"},
				WithCaller:     true,
				Stacktrace:     true,
			},
			expectError: false,
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.ErrorLevel
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := logpkg.New(test.config)
			if test.expectError {
				assert.NotNil(t, err)
			} else {
				assert.NoError(t, err)
				if test.validateOutput != nil {
					assert.True(t, test.validateOutput(l))
				}
			}
		})
	}

	t.Run("debug log file creation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "debug.log")
		config := &logpkg.LoggerConfig{
			ServiceName:    "integration-test",
			ServiceVersion: "1.0.0",
			Env:            "dev",
			Level:          "debug",
			TimeField:      "timestamp",
			TimeFormat:     zerolog.TimeFormatUnix,
			DebugFile:      path,
		}

		l, err := logpkg.New(config)
		assert.NoError(t, err)
		l.Debug().Msg("written to file")

		data, statErr := os.ReadFile(path)
		assert.NoError(t, statErr)
		assert.Contains(t, string(data), "written to file")
	})

	t.Run("defaults applied", func(t *testing.T) {
		config := &logpkg.LoggerConfig{}
		_, err := logpkg.New(config)
		assert.NoError(t, err)
		assert.Equal(t, "prod", config.Env)
		assert.Equal(t, "json", config.Format)
		assert.Equal(t, "fabricare-service", config.ServiceName)
		assert.True(t, config.Stacktrace)
	})

	t.Run("dev profile", func(t *testing.T) {
		config := &logpkg.LoggerConfig{Env: "dev", DebugFile: filepath.Join(t.TempDir(), "debug.log")}
		_, err := logpkg.New(config)
		assert.NoError(t, err)
		assert.Equal(t, "debug", config.Level)
		assert.Equal(t, "console", config.Format)
		assert.True(t, config.WithCaller)
		assert.False(t, config.Stacktrace)
	})
}
