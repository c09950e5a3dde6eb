package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running. The caller
	// should retry later; no fetch is attempted.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrFeedUnavailable indicates a transient network failure reaching
	// the remote feed. Retryable on a subsequent sync.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrFeedResponse indicates the remote feed answered with a
	// non-success response.
	ErrFeedResponse = errors.New("feed returned an error response")
)
