// Package memory provides in-memory repository implementations with the
// same uniqueness semantics as the Postgres ones. They back the usecase
// tests; no production wiring uses them.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// FailCreate, when set, rejects the next Create with a CONFLICT to
	// simulate a racing insert winning at the store.
	FailCreate error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		for _, id := range u.Identities {
			if id.Provider == provider && id.ProviderID == providerID {
				return cloneUser(u), nil
			}
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.FailCreate; err != nil {
		r.FailCreate = nil
		return err
	}
	if user == nil || user.Email == "" {
		return domain.ErrInvalidPayload
	}
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return domain.ErrDuplicateIdentity
		}
		for _, id := range existing.Identities {
			for _, candidate := range user.Identities {
				if id.Provider == candidate.Provider && id.ProviderID == candidate.ProviderID {
					return domain.ErrDuplicateIdentity
				}
			}
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.users {
		if id == user.ID {
			continue
		}
		if other.Email == user.Email || other.Username == user.Username {
			return domain.WrapError(domain.ErrCodeConflict, "username or email already in use", nil)
		}
	}

	existing.Username = user.Username
	existing.Email = user.Email
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *UserRepository) LinkProvider(ctx context.Context, userID, provider, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		for _, id := range u.Identities {
			if id.Provider == provider && id.ProviderID == providerID {
				return domain.ErrDuplicateIdentity
			}
		}
	}

	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.HasProvider(provider) {
		return domain.ErrDuplicateIdentity
	}
	u.Identities = append(u.Identities, domain.ProviderIdentity{Provider: provider, ProviderID: providerID})
	u.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepository) Search(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	query := strings.ToLower(filter.Query)

	var users []domain.User
	for _, u := range r.users {
		if len(users) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.Identities = append([]domain.ProviderIdentity(nil), u.Identities...)
	return &out
}
