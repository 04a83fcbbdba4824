package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

const cartColumns = `carts.id, carts.quantity, carts.size, carts.customer_id, carts.product_id, carts.created_at,
	products.title, products.price, products.quantity, products.sub_images, users.username`

type cartRepository struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) repository.CartRepository {
	return &cartRepository{pool: pool}
}

func selectCarts() squirrel.SelectBuilder {
	return psql.Select(cartColumns).
		From("carts").
		Join("products ON products.id = carts.product_id").
		Join("users ON users.id = carts.customer_id")
}

func scanCartItem(row pgx.Row) (model.CartItem, error) {
	var c model.CartItem
	err := row.Scan(&c.ID, &c.Quantity, &c.Size, &c.CustomerID, &c.ProductID, &c.Timestamp,
		&c.Product.Title, &c.Product.Price, &c.Product.Quantity, &c.Product.SubImages,
		&c.Customer.Username)
	if err != nil {
		return model.CartItem{}, err
	}
	c.Product.ID = c.ProductID
	c.Customer.ID = c.CustomerID
	c.TotalPrice = c.Quantity * c.Product.Price
	return c, nil
}

func (r *cartRepository) Add(ctx context.Context, customerID, productID int64, size string) (model.CartItem, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.CartItem{}, err
	}
	var id int64
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO carts (customer_id, product_id, size, quantity) VALUES ($1, $2, $3, 1)
		 ON CONFLICT (customer_id, product_id) DO UPDATE SET quantity = carts.quantity + 1
		 RETURNING id`,
		customerID, productID, size,
	).Scan(&id)
	if err != nil {
		return model.CartItem{}, repository.MapPgError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *cartRepository) GetByID(ctx context.Context, id int64) (model.CartItem, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.CartItem{}, err
	}
	sql, args, err := selectCarts().Where(squirrel.Eq{"carts.id": id}).ToSql()
	if err != nil {
		return model.CartItem{}, err
	}
	out, err := scanCartItem(getQ(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return model.CartItem{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *cartRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.pool, "carts", id)
}

func (r *cartRepository) DeleteForCustomer(ctx context.Context, customerID, id int64) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx,
		`DELETE FROM carts WHERE id = $1 AND customer_id = $2`, id, customerID,
	)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *cartRepository) ItemsForCustomer(ctx context.Context, customerID int64) ([]model.CartItem, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	sql, args, err := selectCarts().
		Where(squirrel.Eq{"carts.customer_id": customerID}).
		OrderBy("carts.created_at", "carts.id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CartItem, error) { return scanCartItem(row) })
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return items, nil
}

func (r *cartRepository) QuantityInCart(ctx context.Context, customerID, productID int64) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var qty int
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM carts WHERE customer_id = $1 AND product_id = $2`,
		customerID, productID,
	).Scan(&qty)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return qty, nil
}

func (r *cartRepository) Clear(ctx context.Context, customerID int64) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx, `DELETE FROM carts WHERE customer_id = $1`, customerID)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *cartRepository) Total(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	if err := ensurePool(r.pool); err != nil {
		return decimal.Zero, err
	}
	var raw string
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(carts.quantity * products.price), 0)::text
		 FROM carts JOIN products ON products.id = carts.product_id
		 WHERE carts.customer_id = $1`,
		customerID,
	).Scan(&raw)
	if err != nil {
		return decimal.Zero, repository.MapPgError(err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse cart total %q: %w", raw, err)
	}
	return total, nil
}

func (r *cartRepository) List() pagination.Query[model.CartItem] {
	return newListQuery(r.pool, selectCarts(), "carts", scanCartItem)
}

func (r *cartRepository) ListByCustomer(customerID int64) pagination.Query[model.CartItem] {
	base := selectCarts().Where(squirrel.Eq{"carts.customer_id": customerID})
	return newListQuery(r.pool, base, "carts", scanCartItem)
}

var _ repository.CartRepository = (*cartRepository)(nil)
