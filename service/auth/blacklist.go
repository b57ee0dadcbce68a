package auth

import (
	"sync"
	"time"
)

// Blacklist holds tokens invalidated by logout until they expire on their
// own. Safe for concurrent use.
type Blacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewBlacklist() *Blacklist {
	return &Blacklist{tokens: make(map[string]time.Time)}
}

// Add records token as revoked until expiresAt, pruning stale entries.
func (b *Blacklist) Add(token string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for t, exp := range b.tokens {
		if exp.Before(now) {
			delete(b.tokens, t)
		}
	}
	b.tokens[token] = expiresAt
}

func (b *Blacklist) Contains(token string) bool {
	b.mu.RLock()
	exp, ok := b.tokens[token]
	b.mu.RUnlock()
	if !ok {
		return false
	}
	return exp.After(time.Now())
}
