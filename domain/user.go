package domain

import "time"

// User represents a canonical account. A user can carry several linked
// external identities, at most one per provider. Email is unique across
// accounts.
type User struct {
	ID           string             `json:"id"`
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"-"`
	Identities   []ProviderIdentity `json:"identities,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ProviderIdentity links an account to one external provider profile.
type ProviderIdentity struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
}

// HasProvider reports whether the user already carries an identity for the
// given provider.
func (u *User) HasProvider(provider string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Identities {
		if id.Provider == provider {
			return true
		}
	}
	return false
}
