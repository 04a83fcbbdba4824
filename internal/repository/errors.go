package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors I prefer to bubble up from repository implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
)

// ConstraintError is a domain error caused by a named table constraint.
// Column is set when it can be read off a default Postgres constraint name.
type ConstraintError struct {
	Err        error
	Table      string
	Column     string
	Constraint string
}

func (e *ConstraintError) Error() string {
	if e.Column != "" {
		return e.Column + " " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// MapPgError translates common Postgres error codes to domain errors.
// I only map what I expect to handle explicitly at higher layers; everything else passes through.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return constraintError(ErrAlreadyExists, pgErr, "_key")
		case pgerrcode.ForeignKeyViolation:
			return constraintError(ErrConflict, pgErr, "_fkey")
		case pgerrcode.CheckViolation:
			return constraintError(ErrConflict, pgErr, "_check")
		}
	}
	return err
}

// constraintError reads the column off names like users_email_key or carts_product_id_fkey.
func constraintError(sentinel error, pgErr *pgconn.PgError, suffix string) error {
	ce := &ConstraintError{Err: sentinel, Table: pgErr.TableName, Constraint: pgErr.ConstraintName}
	if ce.Table != "" && strings.HasPrefix(ce.Constraint, ce.Table+"_") && strings.HasSuffix(ce.Constraint, suffix) {
		ce.Column = strings.TrimSuffix(strings.TrimPrefix(ce.Constraint, ce.Table+"_"), suffix)
	}
	return ce
}
