package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

const productColumns = `products.id, products.title, products.deadline, products.goal, products.price,
	products.artist_id, artists.name, artists.description, artists.website,
	products.main_image, products.sub_images, products.composition, products.color, products.style,
	products.quantity, products.sizes, products.created_at`

type productRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool, now: time.Now}
}

func (r *productRepository) selectProducts() squirrel.SelectBuilder {
	return psql.Select(productColumns).
		From("products").
		Join("artists ON artists.id = products.artist_id")
}

func (r *productRepository) scan(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Title, &p.Deadline, &p.Goal, &p.Price,
		&p.ArtistID, &p.ArtistName, &p.ArtistDetails, &p.ArtistWebsite,
		&p.MainImage, &p.SubImages, &p.Composition, &p.Color, &p.Style,
		&p.Quantity, &p.Sizes, &p.Timestamp)
	if err != nil {
		return model.Product{}, err
	}
	p.DaysLeft = p.RemainingDays(r.now())
	return p, nil
}

// nonNil keeps JSONB list columns as [] instead of null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *productRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Product{}, err
	}
	var id int64
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO products (title, deadline, goal, price, artist_id, main_image, sub_images,
		                       composition, color, style, quantity, sizes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		p.Title, p.Deadline, p.Goal, p.Price, p.ArtistID, p.MainImage, nonNil(p.SubImages),
		p.Composition, p.Color, p.Style, p.Quantity, nonNil(p.Sizes),
	).Scan(&id)
	if err != nil {
		return model.Product{}, repository.MapPgError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (model.Product, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Product{}, err
	}
	sql, args, err := r.selectProducts().Where(squirrel.Eq{"products.id": id}).ToSql()
	if err != nil {
		return model.Product{}, err
	}
	out, err := r.scan(getQ(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return model.Product{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *productRepository) Update(ctx context.Context, p model.Product) (model.Product, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Product{}, err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx,
		`UPDATE products
		 SET title = $2, deadline = $3, goal = $4, price = $5, artist_id = $6, main_image = $7,
		     sub_images = $8, composition = $9, color = $10, style = $11, quantity = $12, sizes = $13
		 WHERE id = $1`,
		p.ID, p.Title, p.Deadline, p.Goal, p.Price, p.ArtistID, p.MainImage,
		nonNil(p.SubImages), p.Composition, p.Color, p.Style, p.Quantity, nonNil(p.Sizes),
	)
	if err != nil {
		return model.Product{}, repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return model.Product{}, repository.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.pool, "products", id)
}

func (r *productRepository) IDsByTitles(ctx context.Context, titles []string) ([]int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, nil
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT id FROM products WHERE title = ANY($1) ORDER BY id`, titles,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return ids, nil
}

func (r *productRepository) List() pagination.Query[model.Product] {
	return newListQuery(r.pool, r.selectProducts(), "products", r.scan)
}

func (r *productRepository) ListByArtist(artistID int64) pagination.Query[model.Product] {
	base := r.selectProducts().Where(squirrel.Eq{"products.artist_id": artistID})
	return newListQuery(r.pool, base, "products", r.scan)
}

var _ repository.ProductRepository = (*productRepository)(nil)
