package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/fabricare-service/internal/repository"
)

func TestMapPgError(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no_rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), repository.ErrNotFound},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, repository.ErrAlreadyExists},
		{"foreign_key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, repository.ErrConflict},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, repository.ErrConflict},
		{"passthrough", boom, boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := repository.MapPgError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapPgError_OtherCodesPassThrough(t *testing.T) {
	got := repository.MapPgError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, got, &pgErr)
	assert.Equal(t, pgerrcode.DeadlockDetected, pgErr.Code)
}

func TestMapPgError_ConstraintColumn(t *testing.T) {
	cases := []struct {
		table, constraint, code string
		wantColumn              string
	}{
		{"users", "users_email_key", pgerrcode.UniqueViolation, "email"},
		{"users", "users_username_key", pgerrcode.UniqueViolation, "username"},
		{"carts", "carts_product_id_fkey", pgerrcode.ForeignKeyViolation, "product_id"},
		{"carts", "uq_carts_customer_product", pgerrcode.UniqueViolation, ""},
		{"carts", "carts_quantity_check", pgerrcode.CheckViolation, "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			err := repository.MapPgError(&pgconn.PgError{Code: tc.code, TableName: tc.table, ConstraintName: tc.constraint})
			var ce *repository.ConstraintError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.wantColumn, ce.Column)
			assert.Equal(t, tc.constraint, ce.Constraint)
		})
	}

	err := repository.MapPgError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, TableName: "users", ConstraintName: "users_email_key"})
	assert.Equal(t, "email already exists", err.Error())
}
