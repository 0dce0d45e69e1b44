package memory

import (
	"context"
	"sync"
	"time"
)

type RevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewRevocationStore() *RevocationStore {
	return &RevocationStore{revoked: make(map[string]time.Time)}
}

func (r *RevocationStore) Revoke(ctx context.Context, tokenHash string, until time.Time) error {
	if !until.After(time.Now()) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenHash] = until
	return nil
}

func (r *RevocationStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	until, ok := r.revoked[tokenHash]
	return ok && until.After(time.Now()), nil
}
