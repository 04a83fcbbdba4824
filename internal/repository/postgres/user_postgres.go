package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/fabricare-service/internal/model"
	"github.com/maxviazov/fabricare-service/internal/pagination"
	"github.com/maxviazov/fabricare-service/internal/repository"
)

// AvatarSize is the gravatar edge length attached to user payloads.
const AvatarSize = 128

const userColumns = `users.id, users.first_name, users.last_name, users.username, users.email,
	users.role, users.password_hash, users.date_joined, users.created_at,
	(SELECT COUNT(*) FROM carts WHERE carts.customer_id = users.id) AS cart_size`

type userRepository struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email,
		&u.Role, &u.PasswordHash, &u.DateJoined, &u.Timestamp, &u.CartSize)
	if err != nil {
		return model.User{}, err
	}
	u.Avatar = model.GravatarURL(u.Email, AvatarSize)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	var id int64
	err := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, username, email, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		u.FirstName, u.LastName, u.Username, u.Email, u.Role, u.PasswordHash,
	).Scan(&id)
	if err != nil {
		return model.User{}, repository.MapPgError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) getBy(ctx context.Context, pred squirrel.Sqlizer) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	sql, args, err := psql.Select(userColumns).From("users").Where(pred).ToSql()
	if err != nil {
		return model.User{}, err
	}
	u, err := scanUser(getQ(ctx, r.pool).QueryRow(ctx, sql, args...))
	if err != nil {
		return model.User{}, repository.MapPgError(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getBy(ctx, squirrel.Eq{"users.id": id})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.getBy(ctx, squirrel.Eq{"users.username": username})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getBy(ctx, squirrel.Eq{"users.email": email})
}

func (r *userRepository) Update(ctx context.Context, u model.User) (model.User, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.User{}, err
	}
	tag, err := getQ(ctx, r.pool).Exec(ctx,
		`UPDATE users
		 SET first_name = $2, last_name = $3, username = $4, email = $5, role = $6, password_hash = $7
		 WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.Role, u.PasswordHash,
	)
	if err != nil {
		return model.User{}, repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return model.User{}, repository.ErrNotFound
	}
	return r.GetByID(ctx, u.ID)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.pool, "users", id)
}

func (r *userRepository) ListCustomers() pagination.Query[model.User] {
	base := psql.Select(userColumns).
		From("users").
		Where(squirrel.NotEq{"users.role": model.RoleAdmin})
	return newListQuery(r.pool, base, "users", scanUser)
}

// deleteByID removes one row by primary key, reporting ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, pool *pgxpool.Pool, table string, id int64) error {
	if err := ensurePool(pool); err != nil {
		return err
	}
	sql, args, err := psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := getQ(ctx, pool).Exec(ctx, sql, args...)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*userRepository)(nil)
