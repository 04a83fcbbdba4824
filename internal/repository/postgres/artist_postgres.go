package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

const artistColumns = `artists.id, artists.name, artists.image, artists.description, artists.website, artists.created_at`

type artistRepository struct{ pool *pgxpool.Pool }

func NewArtistRepository(pool *pgxpool.Pool) repository.ArtistRepository {
	return &artistRepository{pool: pool}
}

func scanArtist(row pgx.Row) (model.Artist, error) {
	var a model.Artist
	err := row.Scan(&a.ID, &a.Name, &a.Image, &a.Description, &a.Website, &a.Timestamp)
	return a, err
}

func (r *artistRepository) Create(ctx context.Context, a model.Artist) (model.Artist, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Artist{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO artists (name, image, description, website) VALUES ($1, $2, $3, $4)
		 RETURNING `+artistColumns,
		a.Name, a.Image, a.Description, a.Website,
	)
	out, err := scanArtist(row)
	if err != nil {
		return model.Artist{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *artistRepository) GetByID(ctx context.Context, id int64) (model.Artist, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Artist{}, err
	}
	out, err := scanArtist(getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE id = $1`, id,
	))
	if err != nil {
		return model.Artist{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *artistRepository) GetByName(ctx context.Context, name string) (model.Artist, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Artist{}, err
	}
	out, err := scanArtist(getQ(ctx, r.pool).QueryRow(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE name = $1`, name,
	))
	if err != nil {
		return model.Artist{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *artistRepository) Names(ctx context.Context) ([]string, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT name FROM artists ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return names, nil
}

func (r *artistRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.pool, "artists", id)
}

func (r *artistRepository) List() pagination.Query[model.Artist] {
	return newListQuery(r.pool, psql.Select(artistColumns).From("artists"), "artists", scanArtist)
}

var _ repository.ArtistRepository = (*artistRepository)(nil)
