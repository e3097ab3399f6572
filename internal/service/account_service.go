package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/internal/dto"
	"github.com/star3ai/social-auth-service/internal/repository"
	"github.com/star3ai/social-auth-service/internal/tiktok"
	"go.uber.org/zap"
)

// Publish defaults for the initiation call. Media bytes are never
// transferred by this service, so the source descriptor carries placeholder
// sizes.
const (
	defaultPrivacyLevel    = "SELF_ONLY"
	defaultCoverTimestamp  = 1000
	defaultVideoSize       = 50000000
	defaultChunkSize       = 10000000
	defaultTotalChunkCount = 5
)

// accountService implements AccountService
type accountService struct {
	store  repository.AccountStore
	client tiktok.Client
	logger *zap.Logger
	locks  keyedMutex
}

// NewAccountService creates a new account service
func NewAccountService(store repository.AccountStore, client tiktok.Client, logger *zap.Logger) AccountService {
	return &accountService{
		store:  store,
		client: client,
		logger: logger,
	}
}

// UpsertLinkedAccount creates or updates one linked account of an identity.
// The read-modify-write runs under a per-identity mutex so concurrent
// callbacks for the same identity cannot lose updates.
func (s *accountService) UpsertLinkedAccount(ctx context.Context, identity string, account domain.LinkedAccount) (*domain.AccountRecord, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity is required")
	}
	if account.Provider == "" || account.ProviderID == "" {
		return nil, fmt.Errorf("linked account missing provider or provider id")
	}

	unlock := s.locks.lock(identity)
	defer unlock()

	record, err := s.store.Get(ctx, identity)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load account record: %w", err)
		}
		record = &domain.AccountRecord{Identity: identity}
	}

	replaced := false
	for i, existing := range record.LinkedAccounts {
		if existing.Provider == account.Provider && existing.ProviderID == account.ProviderID {
			record.LinkedAccounts[i] = account
			replaced = true
			break
		}
	}
	if !replaced {
		record.LinkedAccounts = append(record.LinkedAccounts, account)
	}

	if err := s.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save account record: %w", err)
	}

	s.logger.Info("linked account upserted",
		zap.String("identity", identity),
		zap.String("provider", account.Provider),
		zap.String("provider_id", account.ProviderID),
		zap.Bool("replaced", replaced),
	)

	return record, nil
}

// ListAccounts projects the stored linked accounts for one provider. An
// unknown identity yields an empty slice, not an error.
func (s *accountService) ListAccounts(ctx context.Context, identity, provider string) ([]domain.AccountSummary, error) {
	record, err := s.store.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.AccountSummary{}, nil
		}
		return nil, fmt.Errorf("failed to load account record: %w", err)
	}

	accounts := []domain.AccountSummary{}
	for _, linked := range record.LinkedAccounts {
		if linked.Provider != provider {
			continue
		}
		accounts = append(accounts, domain.AccountSummary{
			Name:      linked.DisplayName,
			AccountID: linked.ProviderID,
			Avatar:    linked.AvatarURL,
		})
	}

	return accounts, nil
}

// FindToken resolves the stored access token for a linked account
func (s *accountService) FindToken(ctx context.Context, identity, provider, providerID string) (string, error) {
	record, err := s.store.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("no account record for %s: %w", identity, ErrNoLinkedAccount)
		}
		return "", fmt.Errorf("failed to load account record: %w", err)
	}

	for _, linked := range record.LinkedAccounts {
		if linked.Provider == provider && linked.ProviderID == providerID {
			return linked.AccessToken, nil
		}
	}

	return "", fmt.Errorf("no %s account %s linked to %s: %w", provider, providerID, identity, ErrNoLinkedAccount)
}

// ListVideos lists the videos of a linked account
func (s *accountService) ListVideos(ctx context.Context, identity, provider, providerID string) ([]tiktok.Video, error) {
	if provider != domain.ProviderTikTok {
		return nil, fmt.Errorf("provider %q: %w", provider, ErrUnsupportedProvider)
	}

	token, err := s.FindToken(ctx, identity, provider, providerID)
	if err != nil {
		return nil, err
	}

	videos, err := s.client.ListVideos(ctx, token)
	if err != nil {
		s.logger.Error("failed to list videos",
			zap.String("identity", identity),
			zap.String("provider", provider),
			zap.String("provider_id", providerID),
			zap.Error(err),
		)
		return nil, err
	}

	return videos, nil
}

// CreateVideoPost initiates a video publish job for a linked account
func (s *accountService) CreateVideoPost(ctx context.Context, identity, provider string, req *dto.CreateVideoRequest) (*tiktok.PublishInit, error) {
	if provider != domain.ProviderTikTok {
		return nil, fmt.Errorf("provider %q: %w", provider, ErrUnsupportedProvider)
	}
	if req.Content.VideoURL == "" {
		return nil, fmt.Errorf("video URL is required")
	}

	token, err := s.FindToken(ctx, identity, provider, req.ProviderID)
	if err != nil {
		return nil, err
	}

	result, err := s.client.InitVideoPublish(ctx, token, tiktok.PublishRequest{
		PostInfo: tiktok.PostInfo{
			Title:                 req.Content.Description,
			PrivacyLevel:          defaultPrivacyLevel,
			VideoCoverTimestampMS: defaultCoverTimestamp,
		},
		SourceInfo: tiktok.SourceInfo{
			Source:          "FILE_UPLOAD",
			VideoSize:       defaultVideoSize,
			ChunkSize:       defaultChunkSize,
			TotalChunkCount: defaultTotalChunkCount,
		},
	})
	if err != nil {
		s.logger.Error("failed to initiate video publish",
			zap.String("identity", identity),
			zap.String("provider", provider),
			zap.String("provider_id", req.ProviderID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("video publish initiated",
		zap.String("identity", identity),
		zap.String("provider_id", req.ProviderID),
		zap.String("publish_id", result.Data.PublishID),
	)

	return result, nil
}

// keyedMutex serializes work per string key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
