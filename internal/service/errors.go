package service

import (
	"errors"

	"github.com/star3ai/social-auth-service/internal/tiktok"
)

// Expected failure modes of the login/callback and account flows. Every
// expected failure gets its own kind; only truly unexpected faults reach
// callers as plain wrapped errors.
var (
	// ErrUnsupportedProvider is returned for any provider other than tiktok.
	// Callers handle this as a normal outcome, not a fault.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMalformedState is returned when the callback state token cannot be
	// decoded, is expired, or was already consumed.
	ErrMalformedState = errors.New("malformed state")

	// ErrNoLinkedAccount is returned when no stored token exists for the
	// requested (identity, provider, provider_id) combination.
	ErrNoLinkedAccount = errors.New("no linked account")
)

// Error codes carried on callback error redirects.
const (
	CodeUnsupportedProvider = "unsupported_provider"
	CodeBadState            = "bad_state"
	CodeAuthFailed          = "auth_failed"
	CodeProfileFailed       = "profile_failed"
	CodeLinkFailed          = "link_failed"
)

// CallbackErrorCode maps a HandleCallback error to the code attached to the
// error redirect's query string.
func CallbackErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedProvider):
		return CodeUnsupportedProvider
	case errors.Is(err, ErrMalformedState):
		return CodeBadState
	}

	var upstream *tiktok.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Op {
		case tiktok.OpExchangeCode:
			return CodeAuthFailed
		case tiktok.OpFetchProfile:
			return CodeProfileFailed
		}
	}

	return CodeLinkFailed
}
