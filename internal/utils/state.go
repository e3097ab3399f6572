package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/star3ai/social-auth-service/internal/domain"
)

// StateCodec encodes OAuth state into a signed, URL-safe token and decodes
// it back on callback. Tokens carry a jti so callbacks can be consumed
// exactly once, and expire after the configured TTL.
type StateCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewStateCodec creates a new state codec
func NewStateCodec(secret string, ttl time.Duration) *StateCodec {
	return &StateCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

type stateClaims struct {
	Identity string `json:"email"`
	Platform string `json:"platform"`
	jwt.RegisteredClaims
}

// Encode signs an OAuth state into an opaque token suitable for the state
// query parameter of the authorization redirect.
func (c *StateCodec) Encode(state domain.OAuthState) (string, error) {
	now := time.Now()
	claims := &stateClaims{
		Identity: state.Identity,
		Platform: string(state.Platform),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	return tokenString, nil
}

// Decode verifies a state token and returns the original state plus the
// token's unique id (used by the replay guard). Any parse, signature, or
// expiry failure is returned as an error; callers treat all of them as
// malformed state.
func (c *StateCodec) Decode(tokenString string) (domain.OAuthState, string, error) {
	var claims stateClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return domain.OAuthState{}, "", fmt.Errorf("failed to parse state: %w", err)
	}

	if !token.Valid {
		return domain.OAuthState{}, "", fmt.Errorf("invalid state token")
	}

	if claims.ID == "" {
		return domain.OAuthState{}, "", fmt.Errorf("state token missing id")
	}

	state := domain.OAuthState{
		Identity: claims.Identity,
		Platform: domain.ParsePlatform(claims.Platform),
	}

	return state, claims.ID, nil
}
