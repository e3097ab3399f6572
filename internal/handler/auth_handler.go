package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/internal/dto"
	"github.com/star3ai/social-auth-service/internal/service"
)

// accessTokenCookieMaxAge bounds how long the raw token payload cookie
// stays valid on the caller's user agent.
const accessTokenCookieMaxAge = 3600

// AuthHandler handles OAuth login and callback requests
type AuthHandler struct {
	oauthService service.OAuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(oauthService service.OAuthService) *AuthHandler {
	return &AuthHandler{
		oauthService: oauthService,
	}
}

// Login initiates the OAuth authorization-code flow
// @Summary Initiate OAuth login
// @Description Redirect the user agent to the provider's authorization page
// @Tags auth
// @Param provider path string true "Provider name"
// @Param email query string false "Caller identity"
// @Param platform query string false "Client platform (web or app)"
// @Success 302
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/{provider}/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	provider := c.Param("provider")
	platform := domain.ParsePlatform(c.Query("platform"))

	authorizeURL, err := h.oauthService.InitiateLogin(
		c.Request.Context(),
		provider,
		c.Query("email"),
		platform,
	)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedProvider) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Unsupported provider",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.Redirect(http.StatusFound, authorizeURL)
}

// Callback completes the OAuth flow after the provider redirects back.
// Every failure answers with a platform-appropriate error redirect carrying
// an error code in the query string.
// @Summary Handle OAuth callback
// @Tags auth
// @Param provider path string true "Provider name"
// @Param code query string true "Authorization code"
// @Param state query string true "Encoded state token"
// @Param platform query string false "Client platform (web or app)"
// @Success 302
// @Router /auth/{provider}/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")
	platform := domain.ParsePlatform(c.Query("platform"))

	result, err := h.oauthService.HandleCallback(
		c.Request.Context(),
		provider,
		c.Query("code"),
		c.Query("state"),
	)
	if err != nil {
		code := service.CallbackErrorCode(err)
		c.Redirect(http.StatusFound, h.oauthService.ErrorRedirect(platform, code))
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie("access_token", result.CookiePayload, accessTokenCookieMaxAge, "/", "", true, true)

	c.Redirect(http.StatusFound, result.RedirectURL)
}
