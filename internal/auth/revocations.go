package auth

import (
	"sync"
	"time"
)

// Revocations remembers logged-out token ids until they would have
// expired anyway.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewRevocations returns an empty list.
func NewRevocations() *Revocations {
	return &Revocations{revoked: make(map[string]time.Time)}
}

// Revoke marks the token id as unusable.
func (r *Revocations) Revoke(id string, expires time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for key, until := range r.revoked {
		if until.Before(now) {
			delete(r.revoked, key)
		}
	}
	r.revoked[id] = expires
}

// Revoked reports whether the token id was revoked.
func (r *Revocations) Revoked(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok
}
