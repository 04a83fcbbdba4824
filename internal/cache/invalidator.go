package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// Invalidator drops every cached page after a successful write.
// A failed flush is logged; the write it follows has already happened.
type Invalidator struct {
	c   Cache
	log zerolog.Logger
}

func NewInvalidator(c Cache, logger zerolog.Logger) *Invalidator {
	if c == nil {
		c = NewNoop()
	}
	return &Invalidator{c: c, log: logger.With().Str("component", "cache_invalidator").Logger()}
}

// Invalidate flushes the cache; reason ends up in the log line.
func (i *Invalidator) Invalidate(ctx context.Context, reason string) {
	if err := i.c.Flush(ctx); err != nil {
		i.log.Error().Err(err).Str("reason", reason).Msg("cache flush failed")
		return
	}
	i.log.Debug().Str("reason", reason).Msg("cache flushed")
}
