package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/pkg/database"
)

// postgresStore implements AccountStore on top of PostgreSQL. One row per
// identity; linked accounts are stored as a JSONB document so the record
// keeps its insertion order.
type postgresStore struct {
	db *database.Postgres
}

// NewPostgresStore creates a new PostgreSQL-backed account store
func NewPostgresStore(db *database.Postgres) AccountStore {
	return &postgresStore{db: db}
}

// Get retrieves the record for an identity
func (s *postgresStore) Get(ctx context.Context, identity string) (*domain.AccountRecord, error) {
	query := `
		SELECT id, identity, linked_accounts, created_at, updated_at
		FROM account_records
		WHERE identity = $1
	`

	record := &domain.AccountRecord{}
	var linkedAccounts []byte

	err := s.db.DB.QueryRowContext(ctx, query, identity).Scan(
		&record.ID,
		&record.Identity,
		&linkedAccounts,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account record for %s not found: %w", identity, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account record: %w", err)
	}

	if err := json.Unmarshal(linkedAccounts, &record.LinkedAccounts); err != nil {
		return nil, fmt.Errorf("failed to decode linked accounts: %w", err)
	}

	return record, nil
}

// Put creates or replaces the record for record.Identity
func (s *postgresStore) Put(ctx context.Context, record *domain.AccountRecord) error {
	if record.Identity == "" {
		return fmt.Errorf("account record missing identity")
	}

	query := `
		INSERT INTO account_records (id, identity, linked_accounts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity) DO UPDATE
		SET linked_accounts = EXCLUDED.linked_accounts,
		    updated_at = EXCLUDED.updated_at
	`

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	linkedAccounts, err := json.Marshal(record.LinkedAccounts)
	if err != nil {
		return fmt.Errorf("failed to encode linked accounts: %w", err)
	}

	_, err = s.db.DB.ExecContext(ctx, query,
		record.ID,
		record.Identity,
		linkedAccounts,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put account record: %w", err)
	}

	return nil
}

// Ping checks if the database is available
func (s *postgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
