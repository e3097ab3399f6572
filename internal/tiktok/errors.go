package tiktok

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Operation names attached to upstream errors, used by callers to tell the
// failing step apart.
const (
	OpExchangeCode = "exchange_code"
	OpFetchProfile = "fetch_profile"
	OpListVideos   = "list_videos"
	OpPublishInit  = "publish_init"
)

// ErrUpstreamTimeout marks an upstream call that exceeded its deadline,
// distinct from an upstream rejection.
var ErrUpstreamTimeout = errors.New("upstream call timed out")

// UpstreamError is returned when a TikTok API call does not succeed. It
// carries the HTTP status and response body when the upstream answered, or
// wraps the transport error when it did not.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tiktok %s failed: status=%d body=%s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("tiktok %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamErr wraps a transport-level failure, classifying timeouts.
func upstreamErr(op string, err error) *UpstreamError {
	if isTimeout(err) {
		err = fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return &UpstreamError{Op: op, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
