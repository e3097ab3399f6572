package service

import (
	"context"
	"sync"
	"time"
)

// ReplayGuard enforces single consumption of OAuth state tokens: a state
// nonce is accepted exactly once within its lifetime.
type ReplayGuard interface {
	// Consume marks the nonce as used for ttl. Returns false when the
	// nonce was already consumed.
	Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}

// memoryReplayGuard is a process-local ReplayGuard for development and
// tests.
type memoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewMemoryReplayGuard creates a new in-memory replay guard
func NewMemoryReplayGuard() ReplayGuard {
	return &memoryReplayGuard{seen: make(map[string]time.Time)}
}

func (g *memoryReplayGuard) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, expiry := range g.seen {
		if now.After(expiry) {
			delete(g.seen, k)
		}
	}

	if _, ok := g.seen[nonce]; ok {
		return false, nil
	}

	g.seen[nonce] = now.Add(ttl)
	return true, nil
}
