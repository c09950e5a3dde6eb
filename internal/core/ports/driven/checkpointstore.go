package driven

import (
	"context"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// CheckpointStore persists the singleton sync checkpoint. Exactly one row
// exists at all times, seeded with the epoch sentinel before first sync.
type CheckpointStore interface {
	// Get retrieves the checkpoint.
	Get(ctx context.Context) (*domain.SyncCheckpoint, error)

	// Begin atomically transitions the checkpoint to in_progress,
	// failing the compare-and-set when a sync is already running.
	// Returns false (and no error) when the guard was not acquired.
	Begin(ctx context.Context) (bool, error)

	// Complete records a successful sync: new watermark, new total
	// record count, duration, cleared error.
	Complete(ctx context.Context, watermark time.Time, recordCount int, duration time.Duration) error

	// Fail records a failed sync, leaving the watermark unadvanced so a
	// retry resumes from the last good point.
	Fail(ctx context.Context, message string, duration time.Duration) error

	// Touch records a successful empty sync: watermark and record count
	// unchanged, last-checked time refreshed.
	Touch(ctx context.Context, duration time.Duration) error
}
