// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/fabricare-service/internal/cache"
	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrUnauthorized means the caller could not be authenticated (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden means the caller is authenticated but lacks the required role (HTTP 403).
var ErrForbidden = errors.New("forbidden")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error if any field errors are present.
func NewInvalidInputError(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// orderKey is the ordering key of every list; lists are newest first.
const orderKey = "timestamp"

// ListSettings configures the responders behind every paginated use case.
type ListSettings struct {
	MaxLimit int
	CacheTTL time.Duration
}

// ListRequest is one paginated call: the cache key of the request and its page parameters.
type ListRequest struct {
	Key  string
	Page pagination.Request
}

// ForUser narrows the cache key to one caller. Lists whose rows depend on
// who is asking must go through it, or callers share one cached page.
func (lr ListRequest) ForUser(userID int64) ListRequest {
	lr.Key += ":user:" + strconv.FormatInt(userID, 10)
	return lr
}

func newResponder[T any](s ListSettings, c cache.Cache, logger zerolog.Logger) *pagination.Responder[T] {
	return pagination.NewResponder[T](pagination.Config{
		MaxLimit:   s.MaxLimit,
		OrderBy:    orderKey,
		Direction:  pagination.Desc,
		CursorKind: pagination.CursorTimestamp,
		CacheTTL:   s.CacheTTL,
	}, c, logger)
}

// loaderOf wraps an already-built lazy query as a responder loader.
func loaderOf[T any](q pagination.Query[T]) pagination.Loader[T] {
	return func(context.Context) (pagination.Query[T], pagination.Extra, error) {
		return q, nil, nil
	}
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims are the verified contents of an access token.
type Claims struct {
	UserID   int64
	Username string
	Role     string
}

// UserService defines account use cases.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (model.User, error)
	Authenticate(ctx context.Context, login, password string) (model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	// Lookup resolves a numeric id or a username.
	Lookup(ctx context.Context, ident string) (model.User, error)
	UpdateMe(ctx context.Context, me model.User, in UpdateUserInput) (model.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, lr ListRequest) (pagination.Page[model.User], error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(u model.User) (Token, error)
	Verify(token string) (Claims, error)
}

// ArtistService defines artist use cases.
type ArtistService interface {
	Create(ctx context.Context, in ArtistInput) (model.Artist, error)
	GetByName(ctx context.Context, name string) (model.Artist, error)
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, lr ListRequest) (pagination.Page[model.Artist], error)
}

// ProductService defines catalogue use cases.
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (model.Product, error)
	Update(ctx context.Context, id int64, in ProductPatch) (model.Product, error)
	Delete(ctx context.Context, id int64) error
	// GetSale returns a product with the quantity the caller already holds in the cart.
	GetSale(ctx context.Context, me model.User, id int64) (model.Product, error)
	List(ctx context.Context, lr ListRequest) (pagination.Page[model.Product], error)
	ListByArtist(ctx context.Context, artistName string, lr ListRequest) (pagination.Page[model.Product], error)
}

// CartService defines cart and checkout use cases.
type CartService interface {
	Add(ctx context.Context, me model.User, productID int64, in CartInput) (model.CartItem, error)
	RemoveMine(ctx context.Context, me model.User, id int64) error
	Remove(ctx context.Context, id int64) error
	ListAll(ctx context.Context, lr ListRequest) (pagination.Page[model.CartItem], error)
	ListMine(ctx context.Context, me model.User, lr ListRequest) (pagination.Page[model.CartItem], error)
	ListForUser(ctx context.Context, username string, lr ListRequest) (pagination.Page[model.CartItem], error)
	// Checkout opens a hosted payment session for the caller's cart and returns its URL.
	Checkout(ctx context.Context, me model.User) (string, error)
}

// OrderService defines order use cases and payment reconciliation.
type OrderService interface {
	List(ctx context.Context, lr ListRequest) (pagination.Page[model.Order], error)
	Delete(ctx context.Context, id int64) error
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
