package tiktok

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RedirectURL:    "http://localhost:8080/auth/tiktok/callback",
		AuthorizeURL:   server.URL + "/authorize",
		TokenURL:       server.URL + "/token",
		UserInfoURL:    server.URL + "/user/info",
		VideoListURL:   server.URL + "/video/list",
		PublishInitURL: server.URL + "/publish/init",
	})
}

func TestAuthCodeURL(t *testing.T) {
	client := testClient(t, http.NotFoundHandler())

	raw := client.AuthCodeURL("state-token")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse auth URL: %v", err)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("expected client_id, got %q", q.Get("client_id"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("expected response_type=code, got %q", q.Get("response_type"))
	}
	if q.Get("state") != "state-token" {
		t.Errorf("expected state to round trip, got %q", q.Get("state"))
	}
	if q.Get("redirect_uri") == "" {
		t.Error("expected redirect_uri to be set")
	}
	scope := q.Get("scope")
	for _, want := range Scopes {
		if !strings.Contains(scope, want) {
			t.Errorf("expected scope %q in %q", want, scope)
		}
	}
}

func TestExchangeCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.Form.Get("code"); got != "auth-code" {
			t.Errorf("expected code=auth-code, got %q", got)
		}
		if got := r.Form.Get("grant_type"); got != "authorization_code" {
			t.Errorf("expected grant_type=authorization_code, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"access_token": "tok1",
			"token_type": "Bearer",
			"expires_in": 86400,
			"refresh_token": "refresh1",
			"scope": "user.info.basic",
			"open_id": "pid1"
		}`))
	})

	client := testClient(t, mux)

	payload, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}

	if payload.AccessToken != "tok1" {
		t.Errorf("expected access token tok1, got %q", payload.AccessToken)
	}
	if payload.OpenID != "pid1" {
		t.Errorf("expected open_id pid1, got %q", payload.OpenID)
	}
	if payload.ExpiresIn != 86400 {
		t.Errorf("expected expires_in 86400, got %d", payload.ExpiresIn)
	}
	if payload.RefreshToken != "refresh1" {
		t.Errorf("expected refresh token, got %q", payload.RefreshToken)
	}
}

func TestExchangeCodeUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	client := testClient(t, mux)

	_, err := client.ExchangeCode(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("expected error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstream.Op != OpExchangeCode {
		t.Errorf("expected op %q, got %q", OpExchangeCode, upstream.Op)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", upstream.Status)
	}
}

func TestFetchProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/info", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok1" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if got := r.URL.Query().Get("fields"); !strings.Contains(got, "open_id") {
			t.Errorf("expected fields query, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user":{"open_id":"pid1","union_id":"uid1","display_name":"Alice","avatar_url":"http://a"}},"error":{"code":"ok"}}`))
	})

	client := testClient(t, mux)

	profile, err := client.FetchProfile(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}

	if profile.OpenID != "pid1" || profile.DisplayName != "Alice" || profile.AvatarURL != "http://a" {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestFetchProfileMissingOpenID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"user":{}}}`))
	})

	client := testClient(t, mux)

	if _, err := client.FetchProfile(context.Background(), "tok1"); err == nil {
		t.Fatal("expected error for profile without open_id")
	}
}

func TestListVideos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/video/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"videos":[
			{"id":"v1","title":"first","video_description":"d1","duration":30,"cover_image_url":"http://c1","create_time":1700000000},
			{"id":"v2","title":"second","video_description":"d2","duration":45,"cover_image_url":"http://c2","create_time":1700000100}
		],"cursor":0,"has_more":false}}`))
	})

	client := testClient(t, mux)

	videos, err := client.ListVideos(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}

	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != "v1" || videos[1].ID != "v2" {
		t.Errorf("expected order to be preserved, got %+v", videos)
	}
	if videos[0].Duration != 30 {
		t.Errorf("expected duration 30, got %d", videos[0].Duration)
	}
}

func TestInitVideoPublish(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/publish/init", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"publish_id":"pub1","upload_url":"http://upload"},"error":{"code":"ok"}}`))
	})

	client := testClient(t, mux)

	result, err := client.InitVideoPublish(context.Background(), "tok1", PublishRequest{
		PostInfo:   PostInfo{Title: "hello", PrivacyLevel: "SELF_ONLY"},
		SourceInfo: SourceInfo{Source: "FILE_UPLOAD"},
	})
	if err != nil {
		t.Fatalf("InitVideoPublish failed: %v", err)
	}

	if result.Data.PublishID != "pub1" {
		t.Errorf("expected publish id pub1, got %q", result.Data.PublishID)
	}
}

func TestInitVideoPublishUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/publish/init", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"internal_error"}}`))
	})

	client := testClient(t, mux)

	_, err := client.InitVideoPublish(context.Background(), "tok1", PublishRequest{})
	if err == nil {
		t.Fatal("expected error")
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstream.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", upstream.Status)
	}
	if upstream.Op != OpPublishInit {
		t.Errorf("expected op %q, got %q", OpPublishInit, upstream.Op)
	}
	if !strings.Contains(upstream.Body, "internal_error") {
		t.Errorf("expected body to carry upstream payload, got %q", upstream.Body)
	}
}
