package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/planhub/backend/repository"
)

type revocationStore struct {
	client *redislib.Client
	prefix string
}

// NewRevocationStore creates a Redis-backed token denylist. Entries expire
// together with the token they shadow, so the set stays bounded by the
// token TTL.
func NewRevocationStore(client *redislib.Client) repository.RevocationStore {
	return &revocationStore{
		client: client,
		prefix: "revoked:",
	}
}

func (r *revocationStore) Revoke(ctx context.Context, tokenHash string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired; nothing to deny.
		return nil
	}
	return r.client.Set(ctx, r.key(tokenHash), "1", ttl).Err()
}

func (r *revocationStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	err := r.client.Get(ctx, r.key(tokenHash)).Err()
	if err == redislib.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *revocationStore) key(tokenHash string) string {
	return fmt.Sprintf("%s%s", r.prefix, tokenHash)
}
