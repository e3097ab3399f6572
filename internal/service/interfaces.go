package service

import (
	"context"

	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/internal/dto"
	"github.com/star3ai/social-auth-service/internal/tiktok"
)

// OAuthService drives the authorization-code exchange with the external
// provider.
type OAuthService interface {
	// InitiateLogin returns the external authorization URL the caller's
	// user agent should be redirected to. ErrUnsupportedProvider for any
	// provider other than tiktok; no network call is made in that case.
	InitiateLogin(ctx context.Context, provider, identity string, platform domain.Platform) (string, error)

	// HandleCallback consumes the state token, exchanges the code, fetches
	// the external profile, and links the account.
	HandleCallback(ctx context.Context, provider, code, stateToken string) (*CallbackResult, error)

	// ErrorRedirect returns the platform-appropriate redirect target for a
	// failed callback, carrying the error code in the query string.
	ErrorRedirect(platform domain.Platform, code string) string
}

// CallbackResult is the outcome of a successful OAuth callback.
type CallbackResult struct {
	Identity      string
	Platform      domain.Platform
	RedirectURL   string
	CookiePayload string // raw token-exchange payload, JSON encoded
}

// AccountService owns linked-account records and the provider calls that
// need a stored token.
type AccountService interface {
	// UpsertLinkedAccount creates or updates the (provider, provider_id)
	// entry of the identity's record. Safe for concurrent callbacks on the
	// same identity.
	UpsertLinkedAccount(ctx context.Context, identity string, account domain.LinkedAccount) (*domain.AccountRecord, error)

	// ListAccounts projects the identity's linked accounts for one
	// provider. Absent identity or accounts yield an empty slice.
	ListAccounts(ctx context.Context, identity, provider string) ([]domain.AccountSummary, error)

	// FindToken resolves the stored access token, or ErrNoLinkedAccount.
	FindToken(ctx context.Context, identity, provider, providerID string) (string, error)

	// ListVideos lists the videos of a linked account.
	ListVideos(ctx context.Context, identity, provider, providerID string) ([]tiktok.Video, error)

	// CreateVideoPost initiates a video publish job for a linked account.
	CreateVideoPost(ctx context.Context, identity, provider string, req *dto.CreateVideoRequest) (*tiktok.PublishInit, error)
}
