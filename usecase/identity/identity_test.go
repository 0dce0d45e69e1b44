package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository/memory"
)

func githubProfile() Profile {
	return Profile{
		Provider:   "github",
		ProviderID: "12345",
		Username:   "alice",
		Email:      "alice@example.com",
	}
}

func TestResolveCreatesAccount(t *testing.T) {
	users := memory.NewUserRepository()
	uc := New(users, nil)

	user, err := uc.Resolve(context.Background(), githubProfile())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash, "placeholder credential must be set")
	require.Len(t, user.Identities, 1)
	assert.Equal(t, "github", user.Identities[0].Provider)
	assert.Equal(t, "12345", user.Identities[0].ProviderID)
}

func TestResolveIsIdempotent(t *testing.T) {
	users := memory.NewUserRepository()
	uc := New(users, nil)

	first, err := uc.Resolve(context.Background(), githubProfile())
	require.NoError(t, err)

	second, err := uc.Resolve(context.Background(), githubProfile())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestResolveLinksByEmail(t *testing.T) {
	users := memory.NewUserRepository()
	existing := &domain.User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
		Identities: []domain.ProviderIdentity{
			{Provider: "gitlab", ProviderID: "999"},
		},
	}
	require.NoError(t, users.Create(context.Background(), existing))

	uc := New(users, nil)
	user, err := uc.Resolve(context.Background(), githubProfile())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID, "must link to the existing account, not create a new one")

	// The link is durable: a provider-id lookup now resolves directly.
	linked, err := users.GetByProvider(context.Background(), "github", "12345")
	require.NoError(t, err)
	assert.Equal(t, "u1", linked.ID)
}

func TestResolveUsernameFallback(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{
			name:    "username preferred",
			profile: Profile{Provider: "github", ProviderID: "1", Username: "alice", DisplayName: "Alice A", Email: "a@example.com"},
			want:    "alice",
		},
		{
			name:    "display name next",
			profile: Profile{Provider: "github", ProviderID: "2", DisplayName: "Alice A", Email: "b@example.com"},
			want:    "Alice A",
		},
		{
			name:    "email local part last",
			profile: Profile{Provider: "github", ProviderID: "3", Email: "carol@example.com"},
			want:    "carol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := New(memory.NewUserRepository(), nil)
			user, err := uc.Resolve(context.Background(), tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, user.Username)
		})
	}
}

func TestResolveIncompleteProfile(t *testing.T) {
	uc := New(memory.NewUserRepository(), nil)

	for _, profile := range []Profile{
		{},
		{Provider: "github", ProviderID: "1"},
		{Provider: "github", Email: "a@example.com"},
		{ProviderID: "1", Email: "a@example.com"},
	} {
		_, err := uc.Resolve(context.Background(), profile)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	}
}

// racingUsers hides the winner's account until our own create is rejected,
// reproducing the lost-race interleaving at the store.
type racingUsers struct {
	*memory.UserRepository
	visible bool
}

func (r *racingUsers) GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error) {
	if !r.visible {
		return nil, domain.ErrUserNotFound
	}
	return r.UserRepository.GetByProvider(ctx, provider, providerID)
}

func (r *racingUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if !r.visible {
		return nil, domain.ErrUserNotFound
	}
	return r.UserRepository.GetByEmail(ctx, email)
}

func (r *racingUsers) Create(ctx context.Context, user *domain.User) error {
	r.visible = true
	return domain.ErrDuplicateIdentity
}

func TestResolveRetriesAfterRacingCreate(t *testing.T) {
	backing := memory.NewUserRepository()
	winner := &domain.User{
		ID:       "winner",
		Username: "alice",
		Email:    "alice@example.com",
		Identities: []domain.ProviderIdentity{
			{Provider: "github", ProviderID: "12345"},
		},
	}
	require.NoError(t, backing.Create(context.Background(), winner))

	uc := New(&racingUsers{UserRepository: backing}, nil)

	user, err := uc.Resolve(context.Background(), githubProfile())
	require.NoError(t, err)
	assert.Equal(t, "winner", user.ID, "retry must adopt the winner's account")
}

func TestResolveSurfacesUnresolvableConflict(t *testing.T) {
	users := memory.NewUserRepository()
	users.FailCreate = domain.ErrDuplicateIdentity
	uc := New(users, nil)

	// The store rejected the create but neither lookup resolves: the
	// conflict is surfaced instead of being retried forever.
	_, err := uc.Resolve(context.Background(), githubProfile())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}
