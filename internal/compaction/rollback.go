package compaction

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cce/internal/model"
)

// RollbackRegistry maps opaque tokens to pre-compaction message
// snapshots, with an opportunistic expiry sweep on every lookup (spec
// §4.10.3).
type RollbackRegistry struct {
	mu      sync.Mutex
	entries map[string]model.RollbackEntry
}

// NewRollbackRegistry creates an empty registry.
func NewRollbackRegistry() *RollbackRegistry {
	return &RollbackRegistry{entries: make(map[string]model.RollbackEntry)}
}

// Register stores messages under a freshly minted token with the given
// TTL (zero TTL means "never expires") and returns the token.
func (r *RollbackRegistry) Register(messages []model.Message, ttl time.Duration) string {
	token := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := model.RollbackEntry{
		Token:            token,
		OriginalMessages: messages,
		CreatedAt:        time.Now(),
	}
	if ttl > 0 {
		entry.TTL = &ttl
	}
	r.entries[token] = entry
	return token
}

// Rollback returns the original messages for token, sweeping expired
// entries first. The second return value is false if token is unknown
// or has expired.
func (r *RollbackRegistry) Rollback(token string) ([]model.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()

	entry, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	return entry.OriginalMessages, true
}

func (r *RollbackRegistry) sweepLocked() {
	now := time.Now()
	for token, entry := range r.entries {
		if entry.Expired(now) {
			delete(r.entries, token)
		}
	}
}
