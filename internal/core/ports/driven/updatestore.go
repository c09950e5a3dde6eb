package driven

import (
	"context"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// UpdateStore persists update records and serves ranked queries.
// Backed by SQLite with an FTS index kept in lockstep with the base table.
type UpdateStore interface {
	// ApplyBatch persists a batch of updates in one atomic transaction:
	// per record, an upsert by id plus full replacement of the tag,
	// category, product and availability sets. When pruneBefore is
	// non-zero, rows whose max(created, modified) precedes it are
	// deleted in the same transaction. Any failure rolls back the
	// entire batch.
	ApplyBatch(ctx context.Context, updates []domain.Update, pruneBefore time.Time) (BatchResult, error)

	// Count returns the total number of stored updates.
	Count(ctx context.Context) (int, error)

	// Search executes a normalised query and returns one page plus the
	// exact total under the same predicate.
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.Update, int, error)

	// GetByID retrieves a single update with its associations.
	// Returns domain.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*domain.Update, error)
}

// BatchResult reports what one ApplyBatch call changed.
type BatchResult struct {
	// Inserted counts records created by this batch.
	Inserted int

	// Updated counts records that existed and were overwritten.
	Updated int

	// Pruned counts pre-existing records removed by retention pruning.
	Pruned int
}
