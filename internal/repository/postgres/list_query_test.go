package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/fabricare-service/internal/pagination"
)

func scanNothing(pgx.Row) (struct{}, error) { return struct{}{}, nil }

func TestListQuery_RestrictBuildsBoundPredicate(t *testing.T) {
	q := newListQuery(nil, psql.Select("artists.id").From("artists"), "artists", scanNothing)
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		op   pagination.Op
		want string
	}{
		{pagination.OpGt, "SELECT artists.id FROM artists WHERE artists.created_at > $1"},
		{pagination.OpLt, "SELECT artists.id FROM artists WHERE artists.created_at < $1"},
		{pagination.OpGe, "SELECT artists.id FROM artists WHERE artists.created_at >= $1"},
		{pagination.OpLe, "SELECT artists.id FROM artists WHERE artists.created_at <= $1"},
	}
	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			b, err := q.restrict(q.base, &pagination.Bound{Column: OrderTimestamp, Op: tc.op, Value: at})
			require.NoError(t, err)
			sql, args, err := b.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tc.want, sql)
			assert.Equal(t, []any{at}, args)
		})
	}
}

func TestListQuery_RejectsUnknownColumnAndOperator(t *testing.T) {
	q := newListQuery(nil, psql.Select("users.id").From("users"), "users", scanNothing)

	_, err := q.restrict(q.base, &pagination.Bound{Column: "password_hash", Op: pagination.OpGt, Value: 1})
	assert.Error(t, err)

	_, err = q.restrict(q.base, &pagination.Bound{Column: OrderTimestamp, Op: "!=", Value: 1})
	assert.Error(t, err)

	b, err := q.restrict(q.base, nil)
	require.NoError(t, err)
	sql, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT users.id FROM users", sql)
}

func TestListQuery_NilPool(t *testing.T) {
	q := newListQuery(nil, psql.Select("users.id").From("users"), "users", scanNothing)
	_, err := q.Count(t.Context(), nil)
	assert.ErrorIs(t, err, errNilPool)
	_, err = q.Fetch(t.Context(), pagination.Window{Limit: 1})
	assert.ErrorIs(t, err, errNilPool)
}
