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

// Products are aggregated into one JSON column so a page of orders is a single query.
const orderColumns = `orders.id, orders.price::text, orders.status, orders.payment_id,
	orders.customer_id, users.username, orders.created_at,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', p.id, 'title', p.title, 'price', p.price, 'quantity', p.quantity, 'subImages', p.sub_images
		) ORDER BY p.id)
		FROM order_products op JOIN products p ON p.id = op.product_id
		WHERE op.order_id = orders.id
	), '[]'::json) AS products`

type orderRepository struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

func selectOrders() squirrel.SelectBuilder {
	return psql.Select(orderColumns).
		From("orders").
		Join("users ON users.id = orders.customer_id")
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o     model.Order
		price string
	)
	err := row.Scan(&o.ID, &price, &o.Status, &o.PaymentID,
		&o.CustomerID, &o.Customer.Username, &o.Timestamp, &o.Products)
	if err != nil {
		return model.Order{}, err
	}
	o.Customer.ID = o.CustomerID
	if o.Price, err = decimal.NewFromString(price); err != nil {
		return model.Order{}, fmt.Errorf("parse order price %q: %w", price, err)
	}
	return o, nil
}

// Create inserts the order and links its products. Run it inside WithinTx to
// keep the order and its product rows atomic.
func (r *orderRepository) Create(ctx context.Context, o model.Order, productIDs []int64) (model.Order, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Order{}, err
	}
	exec := getQ(ctx, r.pool)
	var id int64
	err := exec.QueryRow(ctx,
		`INSERT INTO orders (price, status, payment_id, customer_id) VALUES ($1::numeric, $2, $3, $4)
		 RETURNING id`,
		o.Price.String(), o.Status, o.PaymentID, o.CustomerID,
	).Scan(&id)
	if err != nil {
		return model.Order{}, repository.MapPgError(err)
	}

	if len(productIDs) > 0 {
		ins := psql.Insert("order_products").Columns("order_id", "product_id")
		for _, pid := range productIDs {
			ins = ins.Values(id, pid)
		}
		sql, args, err := ins.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return model.Order{}, err
		}
		if _, err := exec.Exec(ctx, sql, args...); err != nil {
			return model.Order{}, repository.MapPgError(err)
		}
	}

	sql, args, err := selectOrders().Where(squirrel.Eq{"orders.id": id}).ToSql()
	if err != nil {
		return model.Order{}, err
	}
	out, err := scanOrder(exec.QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Order{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.pool, "orders", id)
}

func (r *orderRepository) List() pagination.Query[model.Order] {
	return newListQuery(r.pool, selectOrders(), "orders", scanOrder)
}

var _ repository.OrderRepository = (*orderRepository)(nil)
