package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/cache"
)

// Responder serves list requests for one endpoint configuration.
// It is safe for concurrent use; it holds no per-request state.
type Responder[T any] struct {
	cfg   Config
	cache cache.Cache
	log   zerolog.Logger
}

func NewResponder[T any](cfg Config, c cache.Cache, logger zerolog.Logger) *Responder[T] {
	if c == nil {
		c = cache.NewNoop()
	}
	if cfg.Direction == "" {
		cfg.Direction = Asc
	}
	l := logger.With().Str("module", "pagination").Str("order_by", cfg.OrderBy).Logger()
	return &Responder[T]{cfg: cfg, cache: c, log: l}
}

// Config returns the responder configuration.
func (r *Responder[T]) Config() Config { return r.cfg }

// Respond produces the page for req. A live cache entry under key is returned as is,
// tagged with SourceCache; otherwise the base query is loaded, counted and sliced, and
// the result is cached for CacheTTL.
func (r *Responder[T]) Respond(ctx context.Context, key string, req Request, load Loader[T]) (Page[T], error) {
	if page, ok := r.lookup(ctx, key); ok {
		return page, nil
	}

	p, err := validate(req, r.cfg)
	if err != nil {
		return Page[T]{}, err
	}

	q, extra, err := load(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	total, err := q.Count(ctx, nil)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count rows: %w", err)
	}

	w := Window{OrderBy: r.cfg.OrderBy, Desc: r.cfg.Direction == Desc, Limit: p.limit}
	offset := p.offset
	if p.cursorMode() {
		past, preceding := OpGt, OpLe
		if w.Desc {
			past, preceding = OpLt, OpGe
		}
		w.Bound = &Bound{Column: r.cfg.OrderBy, Op: past, Value: p.cursor}
		offset, err = q.Count(ctx, &Bound{Column: r.cfg.OrderBy, Op: preceding, Value: p.cursor})
		if err != nil {
			return Page[T]{}, fmt.Errorf("count rows before cursor: %w", err)
		}
	} else {
		if total > 0 && offset >= total {
			return Page[T]{}, invalid(fmt.Sprintf("offset %d out of range for %d rows", offset, total))
		}
		w.Offset = offset
	}

	items := []T{}
	if w.Limit > 0 {
		items, err = q.Fetch(ctx, w)
		if err != nil {
			return Page[T]{}, fmt.Errorf("fetch rows: %w", err)
		}
		if len(items) > w.Limit {
			items = items[:w.Limit]
		}
	}

	page := Page[T]{
		Data:       items,
		Pagination: Meta{Offset: offset, Limit: p.limit, Count: len(items), Total: total},
		Extra:      extra,
		Source:     SourceDB,
	}
	r.store(ctx, key, page)
	return page, nil
}

func (r *Responder[T]) cachingEnabled() bool { return r.cfg.CacheTTL > 0 }

func (r *Responder[T]) lookup(ctx context.Context, key string) (Page[T], bool) {
	if !r.cachingEnabled() {
		return Page[T]{}, false
	}
	b, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.log.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		}
		return Page[T]{}, false
	}
	var page Page[T]
	if err := json.Unmarshal(b, &page); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return Page[T]{}, false
	}
	page.Source = SourceCache
	return page, true
}

func (r *Responder[T]) store(ctx context.Context, key string, page Page[T]) {
	if !r.cachingEnabled() {
		return
	}
	b, err := json.Marshal(page)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("page not cacheable")
		return
	}
	if err := r.cache.Set(ctx, key, b, r.cfg.CacheTTL); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}
