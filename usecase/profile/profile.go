package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) Get(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// Update changes username/email. Cross-account uniqueness is enforced by
// the store and surfaces as a CONFLICT.
func (uc *UseCase) Update(ctx context.Context, principalID, username, email string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "username and email are required", nil)
	}

	user, err := uc.users.GetByID(ctx, principalID)
	if err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Search finds accounts by username or email fragment, feeding the
// add-member flow. Queries shorter than two characters are rejected.
func (uc *UseCase) Search(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "search query must be at least 2 characters", nil)
	}
	return uc.users.Search(ctx, repository.UserFilter{Query: query, Limit: 10})
}
