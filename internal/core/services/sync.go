package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driving"
	"github.com/rostra-labs/rostra-cli/internal/logger"
)

// Ensure SyncEngine implements the interface.
var _ driving.SyncRunner = (*SyncEngine)(nil)

// SyncEngine performs checkpointed differential ingestion from the remote
// feed into the record store. The persisted checkpoint is the sole
// concurrency primitive: only one sync runs at a time, across restarts.
type SyncEngine struct {
	checkpoints driven.CheckpointStore
	store       driven.UpdateStore
	feed        driven.FeedClient
	normaliser  driven.ContentNormaliser
}

// NewSyncEngine creates a new sync engine.
func NewSyncEngine(
	checkpoints driven.CheckpointStore,
	store driven.UpdateStore,
	feed driven.FeedClient,
	normaliser driven.ContentNormaliser,
) *SyncEngine {
	return &SyncEngine{
		checkpoints: checkpoints,
		store:       store,
		feed:        feed,
		normaliser:  normaliser,
	}
}

// Run executes one sync. Failures never propagate as errors; they are
// reported in the result and recorded on the checkpoint with the watermark
// left unadvanced, so a retry resumes from the last good point.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (e *SyncEngine) Run(ctx context.Context, retentionStart time.Time) domain.SyncResult {
	started := time.Now()

	// 1. CONCURRENCY GUARD: compare-and-set the checkpoint to
	// in_progress. If another sync holds it, return without fetching.
	acquired, err := e.checkpoints.Begin(ctx)
	if err != nil {
		return e.failed(ctx, started, fmt.Errorf("acquire sync guard: %w", err), false)
	}
	if !acquired {
		logger.Info("Sync skipped: %v", domain.ErrSyncInProgress)
		return domain.SyncResult{
			Success:  false,
			Duration: time.Since(started),
			Error:    domain.ErrSyncInProgress.Error(),
		}
	}

	checkpoint, err := e.checkpoints.Get(ctx)
	if err != nil {
		return e.failed(ctx, started, fmt.Errorf("read checkpoint: %w", err), true)
	}

	// 2. MODE SELECTION: initial sync fetches everything (optionally
	// floored by retention to shrink transfer); differential sync
	// fetches records modified strictly after the watermark.
	var modifiedSince *time.Time
	if checkpoint.IsInitial() {
		logger.Info("Initial sync: fetching full feed")
		if !retentionStart.IsZero() {
			since := retentionStart
			modifiedSince = &since
		}
	} else {
		since := checkpoint.Watermark
		modifiedSince = &since
		logger.Info("Differential sync: fetching records modified after %s", since.Format(time.RFC3339))
	}

	// 3. FETCH
	raws, err := e.feed.Fetch(ctx, modifiedSince, checkpoint.IsInitial())
	if err != nil {
		return e.failed(ctx, started, fmt.Errorf("fetch feed: %w", err), true)
	}
	logger.Debug("Fetched %d records", len(raws))

	// 4. LOCAL RETENTION FILTER: applied even when the remote fetch used
	// a coarser floor.
	survivors := raws
	if !retentionStart.IsZero() {
		survivors = filterRetention(raws, retentionStart)
		if dropped := len(raws) - len(survivors); dropped > 0 {
			logger.Debug("Retention filter dropped %d records before %s",
				dropped, retentionStart.Format(time.RFC3339))
		}
	}

	// 5. EMPTY-BATCH FAST PATH: refresh the last-checked time without
	// advancing watermark or record count.
	if len(survivors) == 0 {
		duration := time.Since(started)
		if err := e.checkpoints.Touch(ctx, duration); err != nil {
			return e.failed(ctx, started, fmt.Errorf("touch checkpoint: %w", err), true)
		}
		logger.Info("Sync complete: no new records")
		return domain.SyncResult{Success: true, Duration: duration}
	}

	// 6. TRANSACTIONAL PERSISTENCE: normalise and upsert the whole batch
	// in one atomic unit of work. A single poison record aborts
	// everything.
	updates := make([]domain.Update, len(survivors))
	for i := range survivors {
		updates[i] = e.toUpdate(&survivors[i])
	}

	batch, err := e.store.ApplyBatch(ctx, updates, retentionStart)
	if err != nil {
		return e.failed(ctx, started, fmt.Errorf("persist batch: %w", err), true)
	}

	// 7. WATERMARK ADVANCEMENT: max modified across the batch, never
	// backward.
	watermark := checkpoint.Watermark
	for i := range updates {
		if updates[i].ModifiedAt.After(watermark) {
			watermark = updates[i].ModifiedAt
		}
	}

	// 8. OUTCOME
	total, err := e.store.Count(ctx)
	if err != nil {
		return e.failed(ctx, started, fmt.Errorf("count records: %w", err), true)
	}

	duration := time.Since(started)
	if err := e.checkpoints.Complete(ctx, watermark, total, duration); err != nil {
		return e.failed(ctx, started, fmt.Errorf("complete checkpoint: %w", err), true)
	}

	logger.Info("Sync complete: %d records (%d inserted, %d updated, %d pruned) in %s",
		len(updates), batch.Inserted, batch.Updated, batch.Pruned, duration)

	return domain.SyncResult{
		Success:          true,
		RecordsProcessed: len(updates),
		RecordsInserted:  batch.Inserted,
		RecordsUpdated:   batch.Updated,
		Duration:         duration,
	}
}

// Status returns the persisted sync checkpoint.
func (e *SyncEngine) Status(ctx context.Context) (*domain.SyncCheckpoint, error) {
	checkpoint, err := e.checkpoints.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return checkpoint, nil
}

// failed records the failure on the checkpoint (when the guard is held) and
// builds the failure result.
func (e *SyncEngine) failed(ctx context.Context, started time.Time, cause error, guardHeld bool) domain.SyncResult {
	duration := time.Since(started)
	logger.Warn("Sync failed: %v", cause)

	if guardHeld {
		if err := e.checkpoints.Fail(ctx, cause.Error(), duration); err != nil {
			logger.Warn("Failed to record sync failure: %v", err)
		}
	}

	return domain.SyncResult{
		Success:  false,
		Duration: duration,
		Error:    cause.Error(),
	}
}

// toUpdate converts a raw feed record into its canonical stored form:
// normalised body text, month-floored availability dates, and modified
// clamped to be no earlier than created.
func (e *SyncEngine) toUpdate(raw *domain.RawUpdate) domain.Update {
	modified := raw.ModifiedAt
	if modified.Before(raw.CreatedAt) {
		modified = raw.CreatedAt
	}

	availabilities := make([]domain.Availability, len(raw.Availabilities))
	for i, a := range raw.Availabilities {
		availability := domain.Availability{Ring: a.Ring}
		if a.Year != 0 && a.Month != 0 {
			date := domain.MonthFloor(time.Date(a.Year, a.Month, 1, 0, 0, 0, 0, time.UTC))
			availability.Date = &date
		}
		availabilities[i] = availability
	}

	return domain.Update{
		ID:             raw.ID,
		Title:          raw.Title,
		Body:           raw.Body,
		BodyText:       e.normaliser.Normalise(raw.Body),
		Status:         raw.Status,
		Locale:         raw.Locale,
		Tags:           raw.Tags,
		Categories:     raw.Categories,
		Products:       raw.Products,
		Availabilities: availabilities,
		Metadata:       raw.Metadata,
		CreatedAt:      raw.CreatedAt,
		ModifiedAt:     modified,
	}
}

// filterRetention drops records whose max(created, modified) precedes the
// retention floor.
func filterRetention(raws []domain.RawUpdate, floor time.Time) []domain.RawUpdate {
	kept := make([]domain.RawUpdate, 0, len(raws))
	for i := range raws {
		latest := raws[i].ModifiedAt
		if raws[i].CreatedAt.After(latest) {
			latest = raws[i].CreatedAt
		}
		if latest.Before(floor) {
			continue
		}
		kept = append(kept, raws[i])
	}
	return kept
}
