package repository

import (
	"context"

	"github.com/planhub/backend/domain"
)

type UserFilter struct {
	Query string
	Limit int
}

// UserRepository persists accounts and their provider identities. Create,
// Update and LinkProvider fail with a CONFLICT-coded error on a uniqueness
// violation (email, username, or provider identity); that constraint is the
// sole correctness mechanism for racing identity resolution.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	LinkProvider(ctx context.Context, userID, provider, providerID string) error
	Search(ctx context.Context, filter UserFilter) ([]domain.User, error)
}
