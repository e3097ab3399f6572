package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/internal/tiktok"
	"github.com/star3ai/social-auth-service/internal/utils"
	"github.com/star3ai/social-auth-service/pkg/observability"
	"go.uber.org/zap"
)

// RedirectConfig holds the post-callback redirect targets per platform.
// Failures always redirect too, carrying an error code in the query string.
type RedirectConfig struct {
	WebSuccessURL string
	AppSuccessURL string
	WebErrorURL   string
	AppErrorURL   string
}

// oauthService implements OAuthService
type oauthService struct {
	client          tiktok.Client
	codec           *utils.StateCodec
	replayGuard     ReplayGuard
	accounts        AccountService
	notifier        UserNotifier
	logger          *zap.Logger
	audit           *observability.AuditLogger
	redirects       RedirectConfig
	defaultIdentity string
	stateTTL        time.Duration
}

// NewOAuthService creates a new OAuth service. defaultIdentity is the
// documented placeholder used when the caller supplies no identity; the
// surrounding system is expected to supply a verified one in production.
func NewOAuthService(
	client tiktok.Client,
	codec *utils.StateCodec,
	replayGuard ReplayGuard,
	accounts AccountService,
	notifier UserNotifier,
	logger *zap.Logger,
	audit *observability.AuditLogger,
	redirects RedirectConfig,
	defaultIdentity string,
	stateTTL time.Duration,
) OAuthService {
	return &oauthService{
		client:          client,
		codec:           codec,
		replayGuard:     replayGuard,
		accounts:        accounts,
		notifier:        notifier,
		logger:          logger,
		audit:           audit,
		redirects:       redirects,
		defaultIdentity: defaultIdentity,
		stateTTL:        stateTTL,
	}
}

// InitiateLogin builds the external authorization redirect URL. No state is
// persisted; the encoded state parameter carries all callback context.
func (s *oauthService) InitiateLogin(ctx context.Context, provider, identity string, platform domain.Platform) (string, error) {
	if provider != domain.ProviderTikTok {
		s.logger.Warn("login attempted with unsupported provider", zap.String("provider", provider))
		return "", fmt.Errorf("provider %q: %w", provider, ErrUnsupportedProvider)
	}

	identity = utils.SanitizeEmail(identity)
	if identity == "" {
		identity = s.defaultIdentity
	}

	state, err := s.codec.Encode(domain.OAuthState{
		Identity: identity,
		Platform: platform,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	s.logger.Info("redirecting to provider authorization",
		zap.String("identity", identity),
		zap.String("provider", provider),
		zap.String("platform", string(platform)),
	)

	return s.client.AuthCodeURL(state), nil
}

// HandleCallback drives the token exchange and account linking after the
// provider redirects back.
func (s *oauthService) HandleCallback(ctx context.Context, provider, code, stateToken string) (*CallbackResult, error) {
	if provider != domain.ProviderTikTok {
		s.logger.Warn("callback received for unsupported provider", zap.String("provider", provider))
		return nil, fmt.Errorf("provider %q: %w", provider, ErrUnsupportedProvider)
	}

	state, nonce, err := s.codec.Decode(stateToken)
	if err != nil {
		s.logger.Error("failed to decode callback state", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}

	fresh, err := s.replayGuard.Consume(ctx, nonce, s.stateTTL)
	if err != nil {
		s.logger.Error("replay guard failure", zap.String("identity", state.Identity), zap.Error(err))
		return nil, fmt.Errorf("failed to consume state: %w", err)
	}
	if !fresh {
		s.logger.Warn("callback state replayed", zap.String("identity", state.Identity))
		return nil, fmt.Errorf("state already consumed: %w", ErrMalformedState)
	}

	token, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("token exchange failed",
			zap.String("identity", state.Identity),
			zap.String("provider", provider),
			zap.Error(err),
		)
		return nil, err
	}

	profile, err := s.client.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		s.logger.Error("profile fetch failed",
			zap.String("identity", state.Identity),
			zap.String("provider", provider),
			zap.Error(err),
		)
		return nil, err
	}

	account := domain.LinkedAccount{
		Provider:    provider,
		ProviderID:  profile.OpenID,
		DisplayName: profile.DisplayName,
		AvatarURL:   profile.AvatarURL,
		AccessToken: token.AccessToken,
	}

	if _, err := s.accounts.UpsertLinkedAccount(ctx, state.Identity, account); err != nil {
		s.logger.Error("account linking failed",
			zap.String("identity", state.Identity),
			zap.String("provider", provider),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to link account: %w", err)
	}

	// The local store is the linkage source of truth; a failed downstream
	// notification must not fail the login.
	if err := s.notifier.NotifyLinked(ctx, state.Identity, account); err != nil {
		s.logger.Warn("user service notification failed",
			zap.String("identity", state.Identity),
			zap.String("provider", provider),
			zap.Error(err),
		)
	}

	s.audit.Event("account_linked",
		zap.String("identity", state.Identity),
		zap.String("provider", provider),
		zap.String("provider_id", profile.OpenID),
		zap.String("platform", string(state.Platform)),
	)

	cookiePayload, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token payload: %w", err)
	}

	redirectURL := s.redirects.WebSuccessURL
	if state.Platform == domain.PlatformApp {
		redirectURL = s.redirects.AppSuccessURL
	}

	return &CallbackResult{
		Identity:      state.Identity,
		Platform:      state.Platform,
		RedirectURL:   redirectURL,
		CookiePayload: string(cookiePayload),
	}, nil
}

// ErrorRedirect returns the platform-appropriate failure redirect target
func (s *oauthService) ErrorRedirect(platform domain.Platform, code string) string {
	target := s.redirects.WebErrorURL
	if platform == domain.PlatformApp {
		target = s.redirects.AppErrorURL
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}

	return target + sep + "error=" + url.QueryEscape(code)
}
