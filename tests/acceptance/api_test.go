package acceptance

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// linkAccount runs the full login flow so the identity ends up with one
// linked account backed by the provider stub.
func (s *Suite) linkAccount(email string) {
	state := s.startLogin(email, "web")
	resp := s.completeCallback(state)
	resp.Body.Close()
	s.Require().Equal(http.StatusFound, resp.StatusCode)
}

func (s *Suite) apiGet(path, email string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+path, nil)
	s.Require().NoError(err)
	req.Header.Set("X-User-Email", email)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) apiPost(path, email, body string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, s.BaseURL+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("X-User-Email", email)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestGetAccountsEmpty() {
	resp := s.apiGet("/api/tiktok/accounts", "nobody@example.com")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.JSONEq("[]", string(body))
}

func (s *Suite) TestGetAccountsAfterLogin() {
	s.linkAccount("user@example.com")

	resp := s.apiGet("/api/tiktok/accounts", "user@example.com")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var accounts []struct {
		Name      string `json:"name"`
		AccountID string `json:"account_id"`
		Avatar    string `json:"avatar"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&accounts))

	s.Require().Len(accounts, 1)
	s.Equal("Stub Creator", accounts[0].Name)
	s.Equal("stub-open-id", accounts[0].AccountID)
	s.Equal("https://cdn.example.com/avatar.png", accounts[0].Avatar)
}

func (s *Suite) TestRepeatLoginKeepsSingleAccount() {
	s.linkAccount("user@example.com")
	s.linkAccount("user@example.com")

	resp := s.apiGet("/api/tiktok/accounts", "user@example.com")
	defer resp.Body.Close()

	var accounts []json.RawMessage
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&accounts))
	s.Len(accounts, 1)
}

func (s *Suite) TestGetVideos() {
	s.linkAccount("user@example.com")

	resp := s.apiGet("/api/tiktok/videos/stub-open-id", "user@example.com")
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "video-1")
	s.Contains(string(body), "video-2")
}

func (s *Suite) TestGetVideosNoLinkedAccount() {
	resp := s.apiGet("/api/tiktok/videos/unknown-id", "user@example.com")
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestGetVideosUpstreamFailure() {
	s.linkAccount("user@example.com")
	s.Provider.FailVideos()

	resp := s.apiGet("/api/tiktok/videos/stub-open-id", "user@example.com")
	defer resp.Body.Close()

	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *Suite) TestCreateVideo() {
	s.linkAccount("user@example.com")

	body := `{"provider_id":"stub-open-id","content":{"video_url":"https://cdn.example.com/v.mp4","description":"caption"}}`
	resp := s.apiPost("/api/tiktok/video/create", "user@example.com", body)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(raw), "stub-publish-id")
}

func (s *Suite) TestCreateVideoInvalidBody() {
	resp := s.apiPost("/api/tiktok/video/create", "user@example.com", `{"provider_id":"stub-open-id"}`)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
