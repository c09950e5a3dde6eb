package driven

import (
	"context"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// FeedClient fetches raw records from the remote announcement feed.
// Implementations handle pagination and bounded retry/backoff internally;
// a returned error is terminal for this fetch. Errors wrap either
// domain.ErrFeedUnavailable (transient network) or domain.ErrFeedResponse
// (non-success response).
type FeedClient interface {
	// Fetch returns all records with modified strictly greater than
	// modifiedSince. A nil modifiedSince fetches everything. When
	// includeCount is set the client asks the feed for its total count,
	// used only for logging.
	Fetch(ctx context.Context, modifiedSince *time.Time, includeCount bool) ([]domain.RawUpdate, error)
}
