package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/star3ai/social-auth-service/internal/domain"
)

// UserNotifier tells the internal user service about a freshly linked
// external account.
type UserNotifier interface {
	NotifyLinked(ctx context.Context, identity string, account domain.LinkedAccount) error
}

// noopNotifier is used when no user-service endpoint is configured.
type noopNotifier struct{}

// NewNoopNotifier creates a notifier that does nothing
func NewNoopNotifier() UserNotifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyLinked(ctx context.Context, identity string, account domain.LinkedAccount) error {
	return nil
}

// httpNotifier posts the linked-account payload to the user service's
// create-OAuth-user endpoint.
type httpNotifier struct {
	url  string
	http *http.Client
}

// NewHTTPUserNotifier creates a notifier calling the user service over HTTP
func NewHTTPUserNotifier(url string, timeout time.Duration) UserNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpNotifier{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (n *httpNotifier) NotifyLinked(ctx context.Context, identity string, account domain.LinkedAccount) error {
	payload := map[string]interface{}{
		"user":        map[string]string{"email": identity},
		"name":        account.DisplayName,
		"provider_id": account.ProviderID,
		"provider":    account.Provider,
		"token":       account.AccessToken,
		"avatar":      account.AvatarURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode user notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build user notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("user notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("user notification rejected: status=%d", resp.StatusCode)
	}

	return nil
}
