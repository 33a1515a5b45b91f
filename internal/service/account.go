package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rickmoura/gastoshub/internal/actorctx"
	"github.com/rickmoura/gastoshub/internal/apperr"
	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/repo/postgres"
	"github.com/rickmoura/gastoshub/internal/security"
)

// UserStore is the credential store contract the account service needs.
// Both the postgres and the in-memory repos satisfy it.
type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	SoftDelete(ctx context.Context, id, actor string) error
}

type TokenIssuer interface {
	Issue(subject string, extra map[string]any) (string, error)
}

// Account orchestrates login and user CRUD on top of the credential store,
// the password hasher and the token service.
type Account struct {
	store UserStore
	jwt   TokenIssuer
	log   *slog.Logger
}

func NewAccount(store UserStore, jwt TokenIssuer, log *slog.Logger) *Account {
	return &Account{store: store, jwt: jwt, log: log}
}

type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"idUser"`
	Name   string `json:"nome"`
}

type SaveInput struct {
	ID       string
	Name     string
	Email    string
	Password string
}

// Login verifies the raw password against the stored hash and mints a token
// with the user's email as subject. Unknown email, soft-deleted user and
// wrong password all fail the same way so existence never leaks.
func (s *Account) Login(ctx context.Context, login, senha string) (LoginResult, error) {
	u, err := s.store.GetByEmail(ctx, login)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return LoginResult{}, apperr.ErrInvalidLogin
		}
		return LoginResult{}, err
	}

	err = security.CheckPassword(u.PasswordHash, senha)

	if err != nil {
		return LoginResult{}, apperr.ErrInvalidLogin
	}

	token, err := s.jwt.Issue(u.Email, nil)

	if err != nil {
		return LoginResult{}, err
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", u.ID)

	return LoginResult{
		Token:  token,
		UserID: u.ID,
		Name:   u.Name,
	}, nil
}

// Save registers a new user: uniqueness check, hash, write.
func (s *Account) Save(ctx context.Context, in SaveInput) (user.User, error) {
	taken, err := s.store.ExistsByEmail(ctx, in.Email, "")

	if err != nil {
		return user.User{}, err
	}

	if taken {
		return user.User{}, apperr.ErrEmailRegistered
	}

	hash, err := security.HashPassword(in.Password)

	if err != nil {
		return user.User{}, err
	}

	id := in.ID

	if id == "" {
		id = uuid.NewString()
	}

	actor, _ := actorctx.ActorFrom(ctx)

	if actor == "" {
		// self-registration: the new user is their own creator
		actor = in.Email
	}

	u := user.User{
		ID:           id,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	u.CreatedBy = actor
	u.UpdatedBy = actor

	created, err := s.store.Create(ctx, u)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			return user.User{}, apperr.ErrEmailRegistered
		}
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user created", "user_id", created.ID)

	return created, nil
}

// Update resolves the existing record by id and merges nome, email and the
// re-hashed senha before writing.
func (s *Account) Update(ctx context.Context, in SaveInput) (user.User, error) {
	existing, err := s.store.GetByID(ctx, in.ID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, apperr.ErrUserNotFound
		}
		return user.User{}, err
	}

	taken, err := s.store.ExistsByEmail(ctx, in.Email, in.ID)

	if err != nil {
		return user.User{}, err
	}

	if taken {
		return user.User{}, apperr.ErrEmailRegistered
	}

	hash, err := security.HashPassword(in.Password)

	if err != nil {
		return user.User{}, err
	}

	existing.Name = in.Name
	existing.Email = in.Email
	existing.PasswordHash = hash

	if actor, ok := actorctx.ActorFrom(ctx); ok {
		existing.UpdatedBy = actor
	}

	updated, err := s.store.Update(ctx, existing)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailAlreadyUsed):
			return user.User{}, apperr.ErrEmailRegistered
		case errors.Is(err, postgres.ErrUserNotFound):
			return user.User{}, apperr.ErrUserNotFound
		}
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user updated", "user_id", updated.ID)

	return updated, nil
}

func (s *Account) FindByID(ctx context.Context, id string) (user.User, error) {
	u, err := s.store.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, apperr.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// FindByEmail is what the authentication gate uses to turn a verified token
// subject back into a user.
func (s *Account) FindByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := s.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return user.User{}, apperr.ErrEmailNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// DeleteByID soft-deletes. A nonexistent id is an error; an already-deleted
// id succeeds silently (the store treats it as a no-op).
func (s *Account) DeleteByID(ctx context.Context, id string) error {
	actor, _ := actorctx.ActorFrom(ctx)

	err := s.store.SoftDelete(ctx, id, actor)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id)

	return nil
}
