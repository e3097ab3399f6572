package repository

import (
	"context"

	"github.com/star3ai/social-auth-service/internal/domain"
)

// AccountStore defines methods for account record persistence. Records are
// keyed by identity (email). Implementations are selected once at startup
// via configuration.
type AccountStore interface {
	// Get retrieves the record for an identity, or ErrNotFound.
	Get(ctx context.Context, identity string) (*domain.AccountRecord, error)

	// Put creates or fully replaces the record for record.Identity.
	Put(ctx context.Context, record *domain.AccountRecord) error

	// Ping checks if the backing store is available.
	Ping(ctx context.Context) error
}
