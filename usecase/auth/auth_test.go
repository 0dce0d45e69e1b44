package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/pkg/token"
	"github.com/planhub/backend/repository/memory"
	identityUC "github.com/planhub/backend/usecase/identity"
)

func newUseCase(t *testing.T, ttl time.Duration) (*UseCase, *memory.UserRepository) {
	t.Helper()
	users := memory.NewUserRepository()
	resolver := identityUC.New(users, nil)
	tokens := token.NewService("test-secret", "planhub", ttl)
	revoked := memory.NewRevocationStore()
	return New(users, resolver, tokens, revoked, nil), users
}

func githubProfile() identityUC.Profile {
	return identityUC.Profile{
		Provider:   "github",
		ProviderID: "12345",
		Username:   "alice",
		Email:      "alice@example.com",
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	uc, _ := newUseCase(t, time.Hour)

	signed, user, err := uc.Login(context.Background(), githubProfile())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := uc.Authenticate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	uc, _ := newUseCase(t, time.Hour)

	_, err := uc.Authenticate(context.Background(), "not-a-token")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestLogoutRevokes(t *testing.T) {
	uc, _ := newUseCase(t, time.Hour)

	signed, _, err := uc.Login(context.Background(), githubProfile())
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background(), signed))

	// A structurally valid, unexpired token is now refused.
	_, err = uc.Authenticate(context.Background(), signed)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	// Logging out again stays idempotent.
	assert.NoError(t, uc.Logout(context.Background(), signed))
}

func TestLogoutExpiredTokenIsNoop(t *testing.T) {
	uc, _ := newUseCase(t, time.Nanosecond)

	signed, _, err := uc.Login(context.Background(), githubProfile())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	assert.NoError(t, uc.Logout(context.Background(), signed))
}

func TestCurrentUserReflectsLiveState(t *testing.T) {
	uc, users := newUseCase(t, time.Hour)

	signed, user, err := uc.Login(context.Background(), githubProfile())
	require.NoError(t, err)

	// Rename the account after the token was minted.
	fresh, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	fresh.Username = "alice-renamed"
	require.NoError(t, users.Update(context.Background(), fresh))

	claims, err := uc.Authenticate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username, "claims are a point-in-time snapshot")

	live, err := uc.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", live.Username)
}
