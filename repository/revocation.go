package repository

import (
	"context"
	"time"
)

// RevocationStore records tokens invalidated before their natural expiry.
// Tokens are otherwise stateless; this denylist is the only server-side
// session state and entries lapse at the token's own expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenHash string, until time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
