package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

const defaultLocalSizeMB = 64

// Local is an in-process cache for single-instance deployments.
type Local struct {
	cache *freecache.Cache
}

func NewLocal(sizeMB int) *Local {
	if sizeMB <= 0 {
		sizeMB = defaultLocalSizeMB
	}
	return &Local{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	b, err := l.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("local get: %w", err)
	}
	return b, nil
}

// Set stores value with a whole-second TTL; freecache treats 0 as "never expires",
// so anything below one second is rounded up.
func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("local set: empty key")
	}
	secs := int(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	if err := l.cache.Set([]byte(key), value, secs); err != nil {
		return fmt.Errorf("local set: %w", err)
	}
	return nil
}

func (l *Local) Flush(context.Context) error {
	l.cache.Clear()
	return nil
}

var _ Cache = (*Local)(nil)
