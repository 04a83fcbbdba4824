package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

// psql builds every statement with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// OrderTimestamp is the ordering key every list exposes; it maps to the row's created_at.
const OrderTimestamp = "timestamp"

// listQuery is a lazily evaluated, filtered select. Nothing runs until the
// responder calls Count or Fetch.
type listQuery[T any] struct {
	pool *pgxpool.Pool
	base squirrel.SelectBuilder
	// columns maps API ordering keys to qualified SQL columns.
	columns map[string]string
	// tiebreak keeps the order total when ordering values collide.
	tiebreak string
	scan     func(row pgx.Row) (T, error)
}

func newListQuery[T any](pool *pgxpool.Pool, base squirrel.SelectBuilder, table string, scan func(pgx.Row) (T, error)) *listQuery[T] {
	return &listQuery[T]{
		pool:     pool,
		base:     base,
		columns:  map[string]string{OrderTimestamp: table + ".created_at", "id": table + ".id"},
		tiebreak: table + ".id",
		scan:     scan,
	}
}

func (q *listQuery[T]) column(key string) (string, error) {
	col, ok := q.columns[key]
	if !ok {
		return "", fmt.Errorf("unsupported order column %q", key)
	}
	return col, nil
}

func (q *listQuery[T]) restrict(b squirrel.SelectBuilder, bound *pagination.Bound) (squirrel.SelectBuilder, error) {
	if bound == nil {
		return b, nil
	}
	col, err := q.column(bound.Column)
	if err != nil {
		return b, err
	}
	switch bound.Op {
	case pagination.OpGt:
		return b.Where(squirrel.Gt{col: bound.Value}), nil
	case pagination.OpLt:
		return b.Where(squirrel.Lt{col: bound.Value}), nil
	case pagination.OpGe:
		return b.Where(squirrel.GtOrEq{col: bound.Value}), nil
	case pagination.OpLe:
		return b.Where(squirrel.LtOrEq{col: bound.Value}), nil
	default:
		return b, fmt.Errorf("unsupported bound operator %q", bound.Op)
	}
}

func (q *listQuery[T]) Count(ctx context.Context, bound *pagination.Bound) (int, error) {
	if err := ensurePool(q.pool); err != nil {
		return 0, err
	}
	inner, err := q.restrict(q.base, bound)
	if err != nil {
		return 0, err
	}
	sql, args, err := psql.Select("COUNT(*)").FromSelect(inner, "sub").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := getQ(ctx, q.pool).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, repository.MapPgError(err)
	}
	return total, nil
}

func (q *listQuery[T]) Fetch(ctx context.Context, w pagination.Window) ([]T, error) {
	if err := ensurePool(q.pool); err != nil {
		return nil, err
	}
	b, err := q.restrict(q.base, w.Bound)
	if err != nil {
		return nil, err
	}
	dir := " ASC"
	if w.Desc {
		dir = " DESC"
	}
	if w.OrderBy != "" {
		col, err := q.column(w.OrderBy)
		if err != nil {
			return nil, err
		}
		b = b.OrderBy(col + dir)
	}
	b = b.OrderBy(q.tiebreak + dir).
		Limit(uint64(w.Limit)).
		Offset(uint64(w.Offset))

	sql, args, err := b.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := getQ(ctx, q.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) { return q.scan(row) })
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

var _ pagination.Query[struct{}] = (*listQuery[struct{}])(nil)
