package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	defaultBreakerMaxRequests = 3
	defaultBreakerInterval    = 60 * time.Second
	defaultBreakerTimeout     = 30 * time.Second
	defaultBreakerFailures    = 5
)

// Resilient guards a backend with a circuit breaker. A failing or unreachable backend never
// fails the caller: reads degrade to ErrMiss, writes and flushes are logged and dropped.
type Resilient struct {
	inner Cache
	cb    *gobreaker.CircuitBreaker
	log   zerolog.Logger
}

func NewResilient(inner Cache, cfg BreakerConfig, logger zerolog.Logger) *Resilient {
	l := logger.With().Str("component", "cache_breaker").Logger()

	maxReq := cfg.MaxRequests
	if maxReq == 0 {
		maxReq = defaultBreakerMaxRequests
	}
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}

	settings := gobreaker.Settings{
		Name:        "response-cache",
		MaxRequests: maxReq,
		Interval:    secondsOr(cfg.IntervalSeconds, defaultBreakerInterval),
		Timeout:     secondsOr(cfg.TimeoutSeconds, defaultBreakerTimeout),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ev := l.Info()
			if to == gobreaker.StateOpen {
				ev = l.Error()
			}
			ev.Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cache breaker state changed")
		},
	}

	return &Resilient{inner: inner, cb: gobreaker.NewCircuitBreaker(settings), log: l}
}

func (r *Resilient) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := r.cb.Execute(func() (any, error) {
		return r.inner.Get(ctx, key)
	})
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			r.log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return nil, ErrMiss
	}
	b, _ := out.([]byte)
	return b, nil
}

func (r *Resilient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := r.cb.Execute(func() (any, error) {
		return nil, r.inner.Set(ctx, key, value, ttl)
	})
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return nil
}

func (r *Resilient) Flush(ctx context.Context) error {
	_, err := r.cb.Execute(func() (any, error) {
		return nil, r.inner.Flush(ctx)
	})
	if err != nil {
		r.log.Error().Err(err).Msg("cache flush failed")
	}
	return nil
}

// State reports the breaker state for diagnostics.
func (r *Resilient) State() gobreaker.State { return r.cb.State() }

var _ Cache = (*Resilient)(nil)
