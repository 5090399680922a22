package auth

import (
	"context"
	"sync"
	"time"
)

// VerifierCache wraps a UserVerifier with TTL-based caching.
// This avoids hitting the database on every authenticated request.
type VerifierCache struct {
	inner UserVerifier
	cache map[uint]verifierEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type verifierEntry struct {
	exists    bool
	expiresAt time.Time
}

// NewVerifierCache wraps inner; answers are reused for ttl.
func NewVerifierCache(inner UserVerifier, ttl time.Duration) *VerifierCache {
	return &VerifierCache{
		inner: inner,
		cache: make(map[uint]verifierEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Verify reports whether uid still exists, using the cache if the entry is fresh.
func (c *VerifierCache) Verify(ctx context.Context, uid uint) bool {
	c.mu.RLock()
	entry, ok := c.cache[uid]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.exists
	}

	exists := c.inner(ctx, uid)

	c.mu.Lock()
	c.cache[uid] = verifierEntry{exists: exists, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return exists
}
