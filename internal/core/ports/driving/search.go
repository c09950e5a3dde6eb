package driving

import (
	"context"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// UpdateQueryService serves ranked, filtered, paginated queries against the
// local replica.
type UpdateQueryService interface {
	// Search executes a query and returns one page with exact totals.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)

	// GetByID retrieves a single update by its external id, ignoring all
	// filters, sorting and pagination. Returns domain.ErrNotFound when
	// absent.
	GetByID(ctx context.Context, id string) (*domain.Update, error)
}
