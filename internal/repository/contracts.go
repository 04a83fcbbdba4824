package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// Repositories called with the ctx passed to fn join the transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// List methods below return lazily evaluated queries: nothing touches the database
// until the responder counts or fetches. Every query orders by "timestamp".

// UserRepository declares persistence operations for users.
// I return domain models and surface domain errors from errors.go rather than PG codes.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id int64) error
	// ListCustomers lists every user except administrators.
	ListCustomers() pagination.Query[model.User]
}

// ArtistRepository declares persistence operations for artists.
type ArtistRepository interface {
	Create(ctx context.Context, a model.Artist) (model.Artist, error)
	GetByID(ctx context.Context, id int64) (model.Artist, error)
	GetByName(ctx context.Context, name string) (model.Artist, error)
	// Names returns artist names, most recently added first.
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id int64) error
	List() pagination.Query[model.Artist]
}

// ProductRepository declares persistence operations for products.
type ProductRepository interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	GetByID(ctx context.Context, id int64) (model.Product, error)
	Update(ctx context.Context, p model.Product) (model.Product, error)
	Delete(ctx context.Context, id int64) error
	// IDsByTitles resolves product titles to ids; unknown titles are skipped.
	IDsByTitles(ctx context.Context, titles []string) ([]int64, error)
	List() pagination.Query[model.Product]
	ListByArtist(artistID int64) pagination.Query[model.Product]
}

// CartRepository declares persistence operations for cart lines.
type CartRepository interface {
	// Add puts one unit of a product in the customer's cart, incrementing an existing line.
	Add(ctx context.Context, customerID, productID int64, size string) (model.CartItem, error)
	GetByID(ctx context.Context, id int64) (model.CartItem, error)
	Delete(ctx context.Context, id int64) error
	// DeleteForCustomer removes a line only if it belongs to the customer.
	DeleteForCustomer(ctx context.Context, customerID, id int64) error
	ItemsForCustomer(ctx context.Context, customerID int64) ([]model.CartItem, error)
	QuantityInCart(ctx context.Context, customerID, productID int64) (int, error)
	// Clear empties the customer's cart and reports how many lines were removed.
	Clear(ctx context.Context, customerID int64) (int, error)
	// Total sums quantity*price over the customer's cart.
	Total(ctx context.Context, customerID int64) (decimal.Decimal, error)
	List() pagination.Query[model.CartItem]
	ListByCustomer(customerID int64) pagination.Query[model.CartItem]
}

// OrderRepository declares persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o model.Order, productIDs []int64) (model.Order, error)
	Delete(ctx context.Context, id int64) error
	List() pagination.Query[model.Order]
}
