package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// redacted replaces query arguments whose SQL touches credential columns.
const redacted = "[redacted]"

var sensitiveColumns = []string{"password_hash", "password"}

// queryLogger adapts zerolog to pgx's tracelog.Logger.
// Statements slower than slow are promoted to warn regardless of the pgx level.
type queryLogger struct {
	logger zerolog.Logger
	slow   time.Duration
}

func newQueryLogger(logger zerolog.Logger, slow time.Duration) *queryLogger {
	return &queryLogger{logger: logger.With().Str("component", "pgx").Logger(), slow: slow}
}

func (l *queryLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}

	elapsed, _ := data["time"].(time.Duration)
	delete(data, "time")
	if l.slow > 0 && elapsed >= l.slow && level > tracelog.LogLevelWarn {
		level = tracelog.LogLevelWarn
		msg = "slow " + msg
	}

	event := l.event(level)
	if elapsed > 0 {
		event = event.Dur("duration", elapsed)
	}
	if sql, ok := data["sql"].(string); ok {
		event = event.Str("sql", compactSQL(sql))
		if _, ok := data["args"]; ok && touchesCredentials(sql) {
			event = event.Str("args", redacted)
			delete(data, "args")
		}
		delete(data, "sql")
	}
	if err, ok := data["err"].(error); ok {
		event = event.Err(err)
		delete(data, "err")
	}
	if len(data) > 0 {
		event = event.Fields(data)
	}
	event.Msg(msg)
}

func (l *queryLogger) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelTrace:
		return l.logger.Trace()
	case tracelog.LogLevelDebug:
		return l.logger.Debug()
	case tracelog.LogLevelInfo:
		return l.logger.Info()
	case tracelog.LogLevelWarn:
		return l.logger.Warn()
	case tracelog.LogLevelError:
		return l.logger.Error()
	default:
		return l.logger.Info().Str("pgx_log_level", level.String())
	}
}

func touchesCredentials(sql string) bool {
	lower := strings.ToLower(sql)
	for _, col := range sensitiveColumns {
		if strings.Contains(lower, col) {
			return true
		}
	}
	return false
}

// compactSQL folds the multi-line statements built in the repositories onto one line.
func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
