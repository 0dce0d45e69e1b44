package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planhub/backend/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("secret", "planhub", time.Hour)

	signed, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.ID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "planhub", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService("secret", "planhub", time.Nanosecond)

	signed, err := svc.Issue(testUser())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrExpired)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewService("secret-a", "planhub", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewService("secret-b", "planhub", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService("secret", "planhub", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestIssueRequiresUser(t *testing.T) {
	svc := NewService("secret", "planhub", time.Hour)

	_, err := svc.Issue(nil)
	assert.Error(t, err)

	_, err = svc.Issue(&domain.User{})
	assert.Error(t, err)
}

func TestDefaultTTL(t *testing.T) {
	svc := NewService("secret", "planhub", 0)
	assert.Equal(t, DefaultTTL, svc.TTL())
}

func TestHashStable(t *testing.T) {
	a := Hash("token-one")
	b := Hash("token-one")
	c := Hash("token-two")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
