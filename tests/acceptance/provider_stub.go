package acceptance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// providerStub stands in for the TikTok API in acceptance tests. All
// responses are well-formed happy-path payloads unless a failure is armed.
type providerStub struct {
	server *httptest.Server

	mu            sync.Mutex
	exchangeCalls int
	failExchange  bool
	failVideos    bool
}

func newProviderStub() *providerStub {
	stub := &providerStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token/", stub.handleToken)
	mux.HandleFunc("/user/info/", stub.handleUserInfo)
	mux.HandleFunc("/video/list/", stub.handleVideoList)
	mux.HandleFunc("/post/publish/video/init/", stub.handlePublishInit)

	stub.server = httptest.NewServer(mux)
	return stub
}

func (p *providerStub) URL() string {
	return p.server.URL
}

func (p *providerStub) Close() {
	p.server.Close()
}

func (p *providerStub) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exchangeCalls = 0
	p.failExchange = false
	p.failVideos = false
}

func (p *providerStub) FailExchange() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failExchange = true
}

func (p *providerStub) FailVideos() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failVideos = true
}

func (p *providerStub) ExchangeCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exchangeCalls
}

func (p *providerStub) handleToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.exchangeCalls++
	fail := p.failExchange
	p.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Authorization code is invalid",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  "stub-access-token",
		"refresh_token": "stub-refresh-token",
		"token_type":    "Bearer",
		"expires_in":    86400,
		"scope":         "user.info.basic,video.publish,video.upload",
		"open_id":       "stub-open-id",
	})
}

func (p *providerStub) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"user": map[string]any{
				"open_id":      "stub-open-id",
				"union_id":     "stub-union-id",
				"display_name": "Stub Creator",
				"avatar_url":   "https://cdn.example.com/avatar.png",
			},
		},
		"error": map[string]any{},
	})
}

func (p *providerStub) handleVideoList(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	fail := p.failVideos
	p.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"code": "internal_error", "message": "boom"},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"videos": []map[string]any{
				{"id": "video-1", "title": "First", "duration": 12},
				{"id": "video-2", "title": "Second", "duration": 34},
			},
			"cursor":   0,
			"has_more": false,
		},
		"error": map[string]any{},
	})
}

func (p *providerStub) handlePublishInit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"publish_id": "stub-publish-id",
			"upload_url": "https://upload.example.com/stub",
		},
		"error": map[string]any{},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
