package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rickmoura/gastoshub/internal/config"
	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/repo/postgres"
	"github.com/rickmoura/gastoshub/internal/security"
)

// EnsureAdminUser bootstraps the configured administrator account if no
// live user owns that email yet.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	repo := postgres.NewUsersRepo(pool, nil)

	_, err := repo.GetByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, postgres.ErrUserNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
	}
	u.CreatedBy = cfg.AdminEmail
	u.UpdatedBy = cfg.AdminEmail

	_, err = repo.Create(ctx, u)

	if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
		// another instance seeded first
		return nil
	}

	return err
}
