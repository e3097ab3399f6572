package acceptance

import (
	"net/http"
	"net/url"
)

// noRedirectClient returns a client that surfaces redirects instead of
// following them.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// startLogin drives the login endpoint and returns the state parameter the
// service embedded in the provider authorization URL.
func (s *Suite) startLogin(email, platform string) string {
	client := noRedirectClient()

	loginURL := s.BaseURL + "/auth/tiktok/login?email=" + url.QueryEscape(email)
	if platform != "" {
		loginURL += "&platform=" + platform
	}

	resp, err := client.Get(loginURL)
	s.Require().NoError(err, "Failed to call login endpoint")
	defer resp.Body.Close()

	s.Require().Equal(http.StatusFound, resp.StatusCode, "Expected login redirect")

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err, "Failed to parse authorize URL")

	state := location.Query().Get("state")
	s.Require().NotEmpty(state, "Authorize URL missing state")
	return state
}

// completeCallback simulates the provider redirecting back with a code.
func (s *Suite) completeCallback(state string) *http.Response {
	client := noRedirectClient()

	callbackURL := s.BaseURL + "/auth/tiktok/callback?code=test-code&state=" + url.QueryEscape(state)
	resp, err := client.Get(callbackURL)
	s.Require().NoError(err, "Failed to call callback endpoint")
	return resp
}

func (s *Suite) TestLoginRedirectsToProvider() {
	client := noRedirectClient()

	resp, err := client.Get(s.BaseURL + "/auth/tiktok/login?email=user@example.com")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)

	s.Equal("test-client-id", location.Query().Get("client_id"))
	s.Equal("code", location.Query().Get("response_type"))
	s.NotEmpty(location.Query().Get("state"))
}

func (s *Suite) TestLoginUnsupportedProvider() {
	resp, err := http.Get(s.BaseURL + "/auth/instagram/login")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestFullLoginFlow() {
	state := s.startLogin("user@example.com", "web")

	resp := s.completeCallback(state)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("https://web.example.com/done?icon=tiktok", resp.Header.Get("Location"))

	var tokenCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "access_token" {
			tokenCookie = cookie
		}
	}
	s.Require().NotNil(tokenCookie, "Callback did not set the access_token cookie")
	s.True(tokenCookie.HttpOnly)
	s.True(tokenCookie.Secure)

	payload, err := url.QueryUnescape(tokenCookie.Value)
	s.Require().NoError(err)
	s.Contains(payload, "stub-access-token")
}

func (s *Suite) TestAppPlatformSuccessRedirect() {
	state := s.startLogin("user@example.com", "app")

	resp := s.completeCallback(state)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("app://login-success", resp.Header.Get("Location"))
}

func (s *Suite) TestCallbackStateReplay() {
	state := s.startLogin("user@example.com", "web")

	first := s.completeCallback(state)
	first.Body.Close()
	s.Equal(http.StatusFound, first.StatusCode)

	second := s.completeCallback(state)
	defer second.Body.Close()

	s.Equal(http.StatusFound, second.StatusCode)
	location, err := url.Parse(second.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("bad_state", location.Query().Get("error"))

	s.Equal(1, s.Provider.ExchangeCalls(), "Replayed state must not reach the token endpoint")
}

func (s *Suite) TestCallbackGarbageState() {
	resp := s.completeCallback("not-a-real-state-token")
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("bad_state", location.Query().Get("error"))
	s.Equal(0, s.Provider.ExchangeCalls())
}

func (s *Suite) TestCallbackExchangeFailure() {
	s.Provider.FailExchange()
	state := s.startLogin("user@example.com", "web")

	resp := s.completeCallback(state)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("auth_failed", location.Query().Get("error"))
	s.Empty(resp.Cookies())
}
