package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/internal/dto"
	"github.com/star3ai/social-auth-service/internal/service"
	"github.com/star3ai/social-auth-service/internal/tiktok"
)

// SocialHandler handles linked-account and video requests
type SocialHandler struct {
	accounts service.AccountService
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(accounts service.AccountService) *SocialHandler {
	return &SocialHandler{
		accounts: accounts,
	}
}

// GetAccounts lists the caller's linked accounts for a provider
// @Summary List linked accounts
// @Tags social
// @Produce json
// @Param provider path string true "Provider name"
// @Success 200 {array} domain.AccountSummary
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/{provider}/accounts [get]
func (h *SocialHandler) GetAccounts(c *gin.Context) {
	provider := c.Param("provider")
	if provider != domain.ProviderTikTok {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Unsupported provider",
		})
		return
	}

	accounts, err := h.accounts.ListAccounts(c.Request.Context(), IdentityFromContext(c), provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetVideos lists the videos of one linked account
// @Summary List videos of a linked account
// @Tags social
// @Produce json
// @Param provider path string true "Provider name"
// @Param provider_id path string true "Provider account id"
// @Success 200 {array} tiktok.Video
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/{provider}/videos/{provider_id} [get]
func (h *SocialHandler) GetVideos(c *gin.Context) {
	videos, err := h.accounts.ListVideos(
		c.Request.Context(),
		IdentityFromContext(c),
		c.Param("provider"),
		c.Param("provider_id"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if videos == nil {
		videos = []tiktok.Video{}
	}

	c.JSON(http.StatusOK, videos)
}

// CreateVideo initiates a video publish job on a linked account
// @Summary Initiate a video publish
// @Tags social
// @Accept json
// @Produce json
// @Param provider path string true "Provider name"
// @Param request body dto.CreateVideoRequest true "Publish request"
// @Success 200 {object} tiktok.PublishInit
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/{provider}/video/create [post]
func (h *SocialHandler) CreateVideo(c *gin.Context) {
	var req dto.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	result, err := h.accounts.CreateVideoPost(c.Request.Context(), IdentityFromContext(c), c.Param("provider"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeError maps service failures onto the API error contract
func (h *SocialHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedProvider):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Unsupported provider",
		})
	case errors.Is(err, service.ErrNoLinkedAccount):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: "TikTok account not found",
		})
	default:
		var upstream *tiktok.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{
				Error:   "Upstream error",
				Message: upstream.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}
