package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rickmoura/gastoshub/internal/domain/user"
	"github.com/rickmoura/gastoshub/internal/repo/postgres"
)

// UsersRepo is an in-memory twin of the postgres credential store, used in
// tests. It enforces the same contract: soft-deleted rows are invisible to
// reads, live emails stay unique, writes are serialized under one lock.
type UsersRepo struct {
	mu    sync.Mutex
	users map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{users: make(map[string]user.User)}
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok || u.Deleted {
		return user.User{}, postgres.ErrUserNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email && !u.Deleted {
			return u, nil
		}
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (r *UsersRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.emailTakenLocked(email, excludeID), nil
}

func (r *UsersRepo) emailTakenLocked(email, excludeID string) bool {
	for _, u := range r.users {
		if u.Email == email && !u.Deleted && u.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(u.Email, "") {
		return user.User{}, postgres.ErrEmailAlreadyUsed
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]

	if !ok || existing.Deleted {
		return user.User{}, postgres.ErrUserNotFound
	}

	if r.emailTakenLocked(u.Email, u.ID) {
		return user.User{}, postgres.ErrEmailAlreadyUsed
	}

	u.CreatedAt = existing.CreatedAt
	u.CreatedBy = existing.CreatedBy
	u.UpdatedAt = time.Now().UTC()

	r.users[u.ID] = u
	return u, nil
}

func (r *UsersRepo) SoftDelete(ctx context.Context, id, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]

	if !ok {
		return postgres.ErrUserNotFound
	}

	if u.Deleted {
		// already gone, deleting again is a no-op
		return nil
	}

	u.Deleted = true
	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = actor

	r.users[id] = u
	return nil
}

// Raw returns the stored record even when soft-deleted. Tests use it to
// check that deletion keeps the row and its audit fields around.
func (r *UsersRepo) Raw(id string) (user.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	return u, ok
}
