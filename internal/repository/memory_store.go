package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/star3ai/social-auth-service/internal/domain"
)

// memoryStore implements AccountStore backed by a process-local map. Used
// for development and tests; selection happens at startup, never as a
// runtime fallback.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]*domain.AccountRecord
}

// NewMemoryStore creates a new in-memory account store
func NewMemoryStore() AccountStore {
	return &memoryStore{
		records: make(map[string]*domain.AccountRecord),
	}
}

// Get retrieves the record for an identity
func (s *memoryStore) Get(ctx context.Context, identity string) (*domain.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[identity]
	if !ok {
		return nil, fmt.Errorf("account record for %s not found: %w", identity, ErrNotFound)
	}

	return record.Clone(), nil
}

// Put creates or replaces the record for record.Identity
func (s *memoryStore) Put(ctx context.Context, record *domain.AccountRecord) error {
	if record.Identity == "" {
		return fmt.Errorf("account record missing identity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cp := record.Clone()
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		if existing, ok := s.records[cp.Identity]; ok {
			cp.CreatedAt = existing.CreatedAt
		} else {
			cp.CreatedAt = now
		}
	}
	cp.UpdatedAt = now

	s.records[cp.Identity] = cp

	record.ID = cp.ID
	record.CreatedAt = cp.CreatedAt
	record.UpdatedAt = cp.UpdatedAt

	return nil
}

// Ping always succeeds for the in-memory store
func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}
