package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

// UsersRepo is the credential store. Soft-deleted rows stay in the table but
// every read path applies the deleted predicate.
type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

const userColumns = `id, nome, email, senha_hash, deleted, created_at, created_by, updated_at, updated_by`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Deleted,
		&u.CreatedAt,
		&u.CreatedBy,
		&u.UpdatedAt,
		&u.UpdatedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM usuario WHERE id = $1 AND deleted = false`,
			id,
		))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var err error

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM usuario WHERE email = $1 AND deleted = false`,
			email,
		))
		return err
	})

	return u, err
}

// ExistsByEmail reports whether a live record other than excludeID already
// owns the email. Pass excludeID = "" for create checks.
func (r *UsersRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool

	err := r.observe("users.exists_by_email", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(
                SELECT 1 FROM usuario
                WHERE email = $1 AND deleted = false AND id <> $2
             )`,
			email, excludeID,
		).Scan(&exists)
	})

	return exists, err
}

// Create inserts after a transactional uniqueness check. A partial unique
// index on live emails backs the check, so a concurrent insert surfaces as a
// unique violation and maps to ErrEmailAlreadyUsed either way.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	err := r.observe("users.create", func() error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			var exists bool

			err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM usuario WHERE email = $1 AND deleted = false)`,
				u.Email,
			).Scan(&exists)

			if err != nil {
				return err
			}

			if exists {
				return ErrEmailAlreadyUsed
			}

			_, err = tx.Exec(ctx,
				`INSERT INTO usuario (id, nome, email, senha_hash, deleted, created_at, created_by, updated_at, updated_by)
                 VALUES ($1,$2,$3,$4,false,$5,$6,$7,$8)`,
				u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt, u.CreatedBy, u.UpdatedAt, u.UpdatedBy,
			)

			if IsUniqueViolation(err) {
				return ErrEmailAlreadyUsed
			}
			return err
		})
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// Update rewrites nome, email and senha_hash for a live record.
func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	u.UpdatedAt = time.Now().UTC()

	err := r.observe("users.update", func() error {
		return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			var exists bool

			err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM usuario WHERE email = $1 AND deleted = false AND id <> $2)`,
				u.Email, u.ID,
			).Scan(&exists)

			if err != nil {
				return err
			}

			if exists {
				return ErrEmailAlreadyUsed
			}

			tag, err := tx.Exec(ctx,
				`UPDATE usuario
                 SET nome = $2, email = $3, senha_hash = $4, updated_at = $5, updated_by = $6
                 WHERE id = $1 AND deleted = false`,
				u.ID, u.Name, u.Email, u.PasswordHash, u.UpdatedAt, u.UpdatedBy,
			)

			if IsUniqueViolation(err) {
				return ErrEmailAlreadyUsed
			}

			if err != nil {
				return err
			}

			if tag.RowsAffected() == 0 {
				return ErrUserNotFound
			}
			return nil
		})
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

// SoftDelete flips the deleted flag; the row is never physically removed.
// Deleting an id that does not exist at all returns ErrUserNotFound; an
// already-deleted id is a no-op.
func (r *UsersRepo) SoftDelete(ctx context.Context, id, actor string) error {
	return r.observe("users.soft_delete", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE usuario
             SET deleted = true, updated_at = $2, updated_by = $3
             WHERE id = $1 AND deleted = false`,
			id, time.Now().UTC(), actor,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			// distinguish missing from already soft-deleted
			var dummy string

			err = r.pool.QueryRow(ctx, `SELECT id FROM usuario WHERE id = $1`, id).Scan(&dummy)

			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		return nil
	})
}
