// Package pagination turns a lazily evaluated row set into an ordered, sliced page
// with positional accounting, short-circuiting through a response cache when it can.
//
// The responder is generic over the row type; the storage layer plugs in through Query,
// the cache through cache.Cache.
package pagination

import (
	"context"
	"time"
)

// Direction of the configured ordering column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// CursorKind tells how an "after" cursor is parsed before it is compared with the ordering column.
type CursorKind string

const (
	CursorTimestamp CursorKind = "timestamp"
	CursorString    CursorKind = "string"
)

// Response sources.
const (
	SourceCache = "cache"
	SourceDB    = "db"
)

// Config is the per-endpoint responder configuration.
// An empty OrderBy means the engine's natural order; cursor requests are then rejected.
type Config struct {
	MaxLimit   int
	OrderBy    string
	Direction  Direction
	CursorKind CursorKind
	CacheTTL   time.Duration
}

// Request is the raw page request of a single call. Nil fields are absent.
type Request struct {
	Limit  *int
	Offset *int
	After  *string
}

// Op is a comparison applied to the ordering column.
type Op string

const (
	OpGt Op = ">"
	OpLt Op = "<"
	OpGe Op = ">="
	OpLe Op = "<="
)

// Bound restricts rows by comparing the ordering column with a cursor value.
type Bound struct {
	Column string
	Op     Op
	Value  any
}

// Window describes the slice a Query has to fetch.
type Window struct {
	OrderBy string
	Desc    bool
	Bound   *Bound
	Limit   int
	Offset  int
}

// Query is a filtered base set of rows the responder can count and slice.
// Implementations must honor the Window order and never return more than Limit rows.
type Query[T any] interface {
	Count(ctx context.Context, bound *Bound) (int, error)
	Fetch(ctx context.Context, w Window) ([]T, error)
}

// Extra is endpoint-computed data merged at the top level of a page.
type Extra map[string]any

// Loader evaluates the base query of a list endpoint. It is only called on a cache miss.
type Loader[T any] func(ctx context.Context) (Query[T], Extra, error)

// Meta is the positional accounting of a page.
type Meta struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}
