package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/star3ai/social-auth-service/internal/domain"
	"github.com/star3ai/social-auth-service/internal/dto"
	"github.com/star3ai/social-auth-service/internal/service"
	"github.com/star3ai/social-auth-service/internal/tiktok"
	"github.com/stretchr/testify/assert"
)

// fakeAccountService is a scriptable service.AccountService.
type fakeAccountService struct {
	accounts []domain.AccountSummary
	videos   []tiktok.Video
	publish  *tiktok.PublishInit
	err      error

	lastIdentity string
}

func (f *fakeAccountService) UpsertLinkedAccount(ctx context.Context, identity string, account domain.LinkedAccount) (*domain.AccountRecord, error) {
	return nil, f.err
}

func (f *fakeAccountService) ListAccounts(ctx context.Context, identity, provider string) ([]domain.AccountSummary, error) {
	f.lastIdentity = identity
	return f.accounts, f.err
}

func (f *fakeAccountService) FindToken(ctx context.Context, identity, provider, providerID string) (string, error) {
	return "", f.err
}

func (f *fakeAccountService) ListVideos(ctx context.Context, identity, provider, providerID string) ([]tiktok.Video, error) {
	f.lastIdentity = identity
	return f.videos, f.err
}

func (f *fakeAccountService) CreateVideoPost(ctx context.Context, identity, provider string, req *dto.CreateVideoRequest) (*tiktok.PublishInit, error) {
	f.lastIdentity = identity
	return f.publish, f.err
}

func newAPIRouter(accounts service.AccountService) *gin.Engine {
	router := gin.New()
	h := NewSocialHandler(accounts)

	api := router.Group("/api")
	api.Use(IdentityMiddleware("fallback@example.com"))
	{
		api.GET("/:provider/accounts", h.GetAccounts)
		api.GET("/:provider/videos/:provider_id", h.GetVideos)
		api.POST("/:provider/video/create", h.CreateVideo)
	}

	return router
}

func TestGetAccounts(t *testing.T) {
	accounts := &fakeAccountService{
		accounts: []domain.AccountSummary{
			{Name: "Creator", AccountID: "open-1", Avatar: "https://cdn.example.com/a.png"},
		},
	}
	router := newAPIRouter(accounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tiktok/accounts", nil)
	req.Header.Set("X-User-Email", "User@Example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Creator","account_id":"open-1","avatar":"https://cdn.example.com/a.png"}]`, w.Body.String())
	assert.Equal(t, "user@example.com", accounts.lastIdentity)
}

func TestGetAccounts_FallbackIdentity(t *testing.T) {
	accounts := &fakeAccountService{accounts: []domain.AccountSummary{}}
	router := newAPIRouter(accounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tiktok/accounts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fallback@example.com", accounts.lastIdentity)
}

func TestGetAccounts_UnsupportedProvider(t *testing.T) {
	router := newAPIRouter(&fakeAccountService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/instagram/accounts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Unsupported provider"}`, w.Body.String())
}

func TestGetVideos(t *testing.T) {
	accounts := &fakeAccountService{
		videos: []tiktok.Video{{ID: "v1", Title: "first"}},
	}
	router := newAPIRouter(accounts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tiktok/videos/open-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"v1"`)
}

func TestGetVideos_EmptyListIsArray(t *testing.T) {
	router := newAPIRouter(&fakeAccountService{videos: nil})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tiktok/videos/open-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGetVideos_NoLinkedAccount(t *testing.T) {
	router := newAPIRouter(&fakeAccountService{
		err: fmt.Errorf("no account: %w", service.ErrNoLinkedAccount),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tiktok/videos/open-unknown", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"TikTok account not found"}`, w.Body.String())
}

func TestGetVideos_UpstreamError(t *testing.T) {
	router := newAPIRouter(&fakeAccountService{
		err: &tiktok.UpstreamError{Op: tiktok.OpListVideos, Status: 500, Body: "boom"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tiktok/videos/open-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Upstream error")
}

func TestCreateVideo(t *testing.T) {
	accounts := &fakeAccountService{
		publish: &tiktok.PublishInit{Data: tiktok.PublishData{PublishID: "pub-1"}},
	}
	router := newAPIRouter(accounts)

	body := `{"provider_id":"open-1","content":{"video_url":"https://cdn.example.com/v.mp4","description":"caption"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tiktok/video/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"publish_id":"pub-1"`)
}

func TestCreateVideo_InvalidBody(t *testing.T) {
	router := newAPIRouter(&fakeAccountService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tiktok/video/create", strings.NewReader(`{"provider_id":"open-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
}
