package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
)

// checkpointStore implements driven.CheckpointStore over the singleton
// sync_checkpoint row.
type checkpointStore struct {
	store *Store
}

var _ driven.CheckpointStore = (*checkpointStore)(nil)

// Get reads the current checkpoint.
func (s *checkpointStore) Get(ctx context.Context) (*domain.SyncCheckpoint, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT watermark, status, last_record_count, last_duration_ms,
		       last_error, last_checked_at, updated_at
		FROM sync_checkpoint WHERE id = 1
	`)

	var c domain.SyncCheckpoint
	var watermark, updatedAt string
	var durationMs int64
	var lastError, lastCheckedAt sql.NullString

	err := row.Scan(&watermark, &c.Status, &c.LastRecordCount, &durationMs,
		&lastError, &lastCheckedAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	if c.Watermark, err = time.Parse(time.RFC3339, watermark); err != nil {
		return nil, fmt.Errorf("parsing watermark: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	c.LastDuration = time.Duration(durationMs) * time.Millisecond
	if lastError.Valid {
		c.LastError = lastError.String
	}
	if lastCheckedAt.Valid {
		if c.LastCheckedAt, err = time.Parse(time.RFC3339, lastCheckedAt.String); err != nil {
			return nil, fmt.Errorf("parsing last_checked_at: %w", err)
		}
	}

	return &c, nil
}

// Begin attempts to take the single-writer guard. It flips the persisted
// status to in_progress only when no other run holds it, in one atomic
// compare-and-set statement. Returns false when the guard is already held.
func (s *checkpointStore) Begin(ctx context.Context) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_checkpoint
		SET status = ?, updated_at = ?
		WHERE id = 1 AND status <> ?
	`, domain.SyncStatusInProgress, formatTime(time.Now()), domain.SyncStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("acquiring sync guard: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking sync guard: %w", err)
	}
	return affected == 1, nil
}

// Complete records a successful run: new watermark, record count and
// duration, error cleared, guard released.
func (s *checkpointStore) Complete(ctx context.Context, watermark time.Time, recordCount int, duration time.Duration) error {
	now := formatTime(time.Now())
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_checkpoint
		SET status = ?, watermark = ?, last_record_count = ?, last_duration_ms = ?,
		    last_error = NULL, last_checked_at = ?, updated_at = ?
		WHERE id = 1
	`, domain.SyncStatusSuccess, formatTime(watermark), recordCount,
		duration.Milliseconds(), now, now)
	if err != nil {
		return fmt.Errorf("recording sync success: %w", err)
	}
	return nil
}

// Fail records a failed run and releases the guard. The watermark is left
// untouched so the next run retries the same window.
func (s *checkpointStore) Fail(ctx context.Context, message string, duration time.Duration) error {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_checkpoint
		SET status = ?, last_error = ?, last_duration_ms = ?, updated_at = ?
		WHERE id = 1
	`, domain.SyncStatusFailed, message, duration.Milliseconds(), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("recording sync failure: %w", err)
	}
	return nil
}

// Touch records a run that found nothing new: success with the watermark
// and record count unchanged, guard released.
func (s *checkpointStore) Touch(ctx context.Context, duration time.Duration) error {
	now := formatTime(time.Now())
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_checkpoint
		SET status = ?, last_error = NULL, last_duration_ms = ?,
		    last_checked_at = ?, updated_at = ?
		WHERE id = 1
	`, domain.SyncStatusSuccess, duration.Milliseconds(), now, now)
	if err != nil {
		return fmt.Errorf("recording sync check: %w", err)
	}
	return nil
}
