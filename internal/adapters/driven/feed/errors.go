package feed

import (
	"errors"
	"fmt"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// ResponseError represents a non-success response from the feed.
type ResponseError struct {
	StatusCode int
	URL        string
	RequestID  string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("feed: response %d (URL: %s, request: %s)", e.StatusCode, e.URL, e.RequestID)
}

// Unwrap lets callers match with errors.Is(err, domain.ErrFeedResponse).
func (e *ResponseError) Unwrap() error {
	return domain.ErrFeedResponse
}

// TransportError represents a network-level failure reaching the feed.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("feed: unreachable (URL: %s): %v", e.URL, e.Err)
}

// Unwrap lets callers match with errors.Is(err, domain.ErrFeedUnavailable).
func (e *TransportError) Unwrap() error {
	return domain.ErrFeedUnavailable
}

// IsRetryable reports whether a fetch attempt is worth retrying: network
// failures, server errors and throttling. Client errors are terminal.
func IsRetryable(err error) bool {
	if errors.Is(err, domain.ErrFeedUnavailable) {
		return true
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode >= 500 || respErr.StatusCode == 429
	}
	return false
}
