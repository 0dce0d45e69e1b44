package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/pkg/token"
	"github.com/planhub/backend/repository"
	identityUC "github.com/planhub/backend/usecase/identity"
)

type UseCase struct {
	users    repository.UserRepository
	resolver *identityUC.UseCase
	tokens   *token.Service
	revoked  repository.RevocationStore
	logger   *zap.Logger
}

func New(users repository.UserRepository, resolver *identityUC.UseCase, tokens *token.Service, revoked repository.RevocationStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		resolver: resolver,
		tokens:   tokens,
		revoked:  revoked,
		logger:   logger,
	}
}

// Login exchanges an external-provider profile for a signed session token.
func (uc *UseCase) Login(ctx context.Context, profile identityUC.Profile) (string, *domain.User, error) {
	user, err := uc.resolver.Resolve(ctx, profile)
	if err != nil {
		return "", nil, err
	}

	signed, err := uc.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	uc.logger.Info("issued session token",
		zap.String("provider", profile.Provider),
		zap.String("user_id", user.ID))
	return signed, user, nil
}

// Authenticate verifies a bearer token and rejects revoked ones. The
// returned claim is a point-in-time snapshot; use CurrentUser for live
// account data.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (*token.Claims, error) {
	claims, err := uc.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	if uc.revoked != nil {
		revoked, err := uc.revoked.IsRevoked(ctx, token.Hash(raw))
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "check token revocation", err)
		}
		if revoked {
			return nil, domain.ErrUnauthorized
		}
	}
	return claims, nil
}

// CurrentUser re-fetches the account behind a verified claim.
func (uc *UseCase) CurrentUser(ctx context.Context, claims *token.Claims) (*domain.User, error) {
	if claims == nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.users.GetByID(ctx, claims.ID)
}

// Logout denies the token for the remainder of its lifetime. Idempotent:
// an expired or already revoked token is a no-op.
func (uc *UseCase) Logout(ctx context.Context, raw string) error {
	claims, err := uc.tokens.Verify(raw)
	if err != nil {
		if err == token.ErrExpired {
			return nil
		}
		return err
	}
	if uc.revoked == nil {
		return nil
	}
	return uc.revoked.Revoke(ctx, token.Hash(raw), claims.ExpiresAt.Time)
}
