package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

// Profile is the normalized external-provider profile. Provider-specific
// handshake adapters produce it; the resolver never sees provider wire
// formats.
type Profile struct {
	Provider    string
	ProviderID  string
	Username    string
	DisplayName string
	Email       string
}

// UseCase maps a provider profile to exactly one canonical account,
// creating or linking as needed.
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

// Resolve looks up the account for the given profile. Lookup order:
// exact (provider, provider id) match, then email match with a provider
// link, then a fresh account with a random placeholder credential. Two
// concurrent resolutions of the same new identity are arbitrated by the
// store's uniqueness constraints: when a racing create or link is
// rejected, the lookup is retried once before the conflict surfaces.
func (uc *UseCase) Resolve(ctx context.Context, profile Profile) (*domain.User, error) {
	if profile.Provider == "" || profile.ProviderID == "" || profile.Email == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "incomplete provider profile", nil)
	}

	user, err := uc.users.GetByProvider(ctx, profile.Provider, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	user, err = uc.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return uc.link(ctx, user, profile)
	}
	if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return nil, err
	}

	return uc.create(ctx, profile)
}

func (uc *UseCase) link(ctx context.Context, user *domain.User, profile Profile) (*domain.User, error) {
	if err := uc.users.LinkProvider(ctx, user.ID, profile.Provider, profile.ProviderID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			return uc.retryLookup(ctx, profile)
		}
		return nil, err
	}

	uc.logger.Info("linked provider to existing account",
		zap.String("provider", profile.Provider),
		zap.String("user_id", user.ID))

	user.Identities = append(user.Identities, domain.ProviderIdentity{
		Provider:   profile.Provider,
		ProviderID: profile.ProviderID,
	})
	return user, nil
}

func (uc *UseCase) create(ctx context.Context, profile Profile) (*domain.User, error) {
	// Provider-created accounts get a random placeholder credential; they
	// cannot authenticate through a password channel.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "generate placeholder credential", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     usernameFor(profile),
		Email:        profile.Email,
		PasswordHash: string(hash),
		Identities: []domain.ProviderIdentity{
			{Provider: profile.Provider, ProviderID: profile.ProviderID},
		},
	}

	if err := uc.users.Create(ctx, user); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			// A concurrent request won the race; their account is ours.
			return uc.retryLookup(ctx, profile)
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "create account for provider login", err)
	}

	uc.logger.Info("created account from provider profile",
		zap.String("provider", profile.Provider),
		zap.String("user_id", user.ID))
	return user, nil
}

// retryLookup re-runs the lookup after the store rejected a racing write.
func (uc *UseCase) retryLookup(ctx context.Context, profile Profile) (*domain.User, error) {
	if user, err := uc.users.GetByProvider(ctx, profile.Provider, profile.ProviderID); err == nil {
		return user, nil
	}
	if user, err := uc.users.GetByEmail(ctx, profile.Email); err == nil {
		return user, nil
	}
	return nil, domain.ErrDuplicateIdentity
}

func usernameFor(profile Profile) string {
	if profile.Username != "" {
		return profile.Username
	}
	if profile.DisplayName != "" {
		return profile.DisplayName
	}
	if at := strings.Index(profile.Email, "@"); at > 0 {
		return profile.Email[:at]
	}
	return profile.Email
}
