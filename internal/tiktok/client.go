package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// TikTok API endpoints
const (
	DefaultAuthorizeURL   = "https://www.tiktok.com/v2/auth/authorize/"
	DefaultTokenURL       = "https://open.tiktokapis.com/v2/oauth/token/"
	DefaultUserInfoURL    = "https://open.tiktokapis.com/v2/user/info/"
	DefaultVideoListURL   = "https://open.tiktokapis.com/v2/video/list/"
	DefaultPublishInitURL = "https://open.tiktokapis.com/v2/post/publish/video/init/"

	defaultTimeout = 10 * time.Second

	profileFields = "open_id,union_id,avatar_url,display_name"
	videoFields   = "id,title,video_description,duration,cover_image_url,create_time"

	maxBodySize = 1 << 20
)

// Scopes requested on every authorization redirect: basic profile plus
// video publish and upload.
var Scopes = []string{"user.info.basic", "video.publish", "video.upload"}

// Client defines the calls this service makes against TikTok.
type Client interface {
	// AuthCodeURL returns the authorization redirect URL carrying the
	// encoded state.
	AuthCodeURL(state string) string

	// ExchangeCode exchanges an authorization code for a token payload.
	ExchangeCode(ctx context.Context, code string) (*TokenPayload, error)

	// FetchProfile loads the external user profile for a bearer token.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)

	// ListVideos lists the videos owned by the token's account.
	ListVideos(ctx context.Context, accessToken string) ([]Video, error)

	// InitVideoPublish starts a publish job. It does not transfer media
	// bytes or poll for completion.
	InitVideoPublish(ctx context.Context, accessToken string, req PublishRequest) (*PublishInit, error)
}

// Config holds client credentials and endpoint overrides. Zero-value
// endpoints fall back to the production TikTok API.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration

	AuthorizeURL   string
	TokenURL       string
	UserInfoURL    string
	VideoListURL   string
	PublishInitURL string
}

// httpClient is the default HTTP implementation of Client.
type httpClient struct {
	oauth          *oauth2.Config
	http           *http.Client
	userInfoURL    string
	videoListURL   string
	publishInitURL string
}

// NewClient creates a new TikTok API client
func NewClient(cfg Config) Client {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if cfg.VideoListURL == "" {
		cfg.VideoListURL = DefaultVideoListURL
	}
	if cfg.PublishInitURL == "" {
		cfg.PublishInitURL = DefaultPublishInitURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &httpClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http:           &http.Client{Timeout: cfg.Timeout},
		userInfoURL:    cfg.UserInfoURL,
		videoListURL:   cfg.VideoListURL,
		publishInitURL: cfg.PublishInitURL,
	}
}

// AuthCodeURL builds the authorization redirect URL
func (c *httpClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges the authorization code for an access token
func (c *httpClient) ExchangeCode(ctx context.Context, code string) (*TokenPayload, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, &UpstreamError{
				Op:     OpExchangeCode,
				Status: retrieveErr.Response.StatusCode,
				Body:   string(retrieveErr.Body),
				Err:    err,
			}
		}
		return nil, upstreamErr(OpExchangeCode, err)
	}

	payload := &TokenPayload{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
	}
	if v, ok := token.Extra("expires_in").(float64); ok {
		payload.ExpiresIn = int64(v)
	}
	if v, ok := token.Extra("scope").(string); ok {
		payload.Scope = v
	}
	if v, ok := token.Extra("open_id").(string); ok {
		payload.OpenID = v
	}

	if payload.AccessToken == "" {
		return nil, &UpstreamError{Op: OpExchangeCode, Err: fmt.Errorf("token response missing access_token")}
	}

	return payload, nil
}

// FetchProfile loads the user profile for an access token
func (c *httpClient) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var response struct {
		Data struct {
			User Profile `json:"user"`
		} `json:"data"`
		Error ResponseMeta `json:"error"`
	}

	url := fmt.Sprintf("%s?fields=%s", c.userInfoURL, profileFields)
	if err := c.doJSON(ctx, OpFetchProfile, http.MethodGet, url, accessToken, nil, &response); err != nil {
		return nil, err
	}

	if response.Data.User.OpenID == "" {
		return nil, &UpstreamError{Op: OpFetchProfile, Err: fmt.Errorf("user info response missing open_id")}
	}

	return &response.Data.User, nil
}

// ListVideos lists videos owned by the token's account
func (c *httpClient) ListVideos(ctx context.Context, accessToken string) ([]Video, error) {
	var response struct {
		Data struct {
			Videos  []Video `json:"videos"`
			Cursor  int64   `json:"cursor"`
			HasMore bool    `json:"has_more"`
		} `json:"data"`
		Error ResponseMeta `json:"error"`
	}

	url := fmt.Sprintf("%s?fields=%s", c.videoListURL, videoFields)
	if err := c.doJSON(ctx, OpListVideos, http.MethodGet, url, accessToken, nil, &response); err != nil {
		return nil, err
	}

	return response.Data.Videos, nil
}

// InitVideoPublish starts a video publish job
func (c *httpClient) InitVideoPublish(ctx context.Context, accessToken string, req PublishRequest) (*PublishInit, error) {
	result := &PublishInit{}
	if err := c.doJSON(ctx, OpPublishInit, http.MethodPost, c.publishInitURL, accessToken, req, result); err != nil {
		return nil, err
	}

	return result, nil
}

// doJSON issues one bearer-authenticated request and decodes the JSON
// response into out. Non-2xx responses become UpstreamError with the
// status and body.
func (c *httpClient) doJSON(ctx context.Context, op, method, url, accessToken string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return upstreamErr(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return upstreamErr(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Op: op, Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Op: op, Status: resp.StatusCode, Body: string(raw), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
