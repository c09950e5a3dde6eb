package driving

import (
	"context"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// SyncRunner drives replica synchronisation against the remote feed.
type SyncRunner interface {
	// Run executes one sync. It never returns an error: every failure,
	// including a concurrent sync holding the guard, surfaces in the
	// result. A non-zero retentionStart excludes records whose
	// max(created, modified) precedes it, both from the fetch and from
	// the local store.
	Run(ctx context.Context, retentionStart time.Time) domain.SyncResult

	// Status returns the persisted sync checkpoint.
	Status(ctx context.Context) (*domain.SyncCheckpoint, error)
}
