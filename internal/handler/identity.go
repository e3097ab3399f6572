package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/star3ai/social-auth-service/internal/utils"
)

const identityContextKey = "identity"

// IdentityMiddleware resolves the caller identity for API routes. This is
// an explicit stub: it trusts the X-User-Email header and falls back to the
// configured default test identity. The surrounding system is expected to
// supply a verified identity in production.
func IdentityMiddleware(defaultIdentity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := utils.SanitizeEmail(c.GetHeader("X-User-Email"))
		if identity == "" {
			identity = defaultIdentity
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// IdentityFromContext returns the identity resolved by IdentityMiddleware
func IdentityFromContext(c *gin.Context) string {
	return c.GetString(identityContextKey)
}
