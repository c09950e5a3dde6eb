package domain

import "time"

// WatermarkEpoch is the sentinel watermark seeded before the first sync.
// A checkpoint at the epoch means no sync has ever completed.
var WatermarkEpoch = time.Unix(0, 0).UTC()

// SyncStatus is the persisted state of the singleton sync checkpoint.
type SyncStatus string

// Checkpoint status values. Transitions: seed -> in_progress ->
// {success, failed} -> in_progress -> ...
const (
	SyncStatusSuccess    SyncStatus = "success"
	SyncStatusFailed     SyncStatus = "failed"
	SyncStatusInProgress SyncStatus = "in_progress"
)

// SyncCheckpoint is the singleton row tracking sync progress. It doubles as
// the concurrency guard: the in_progress status is the only mutual-exclusion
// mechanism, persisted so it survives process restarts.
type SyncCheckpoint struct {
	// Watermark is the max modified timestamp of the last successful
	// sync; floor for the next differential fetch. Never moves backward.
	Watermark time.Time

	// Status is the current checkpoint state.
	Status SyncStatus

	// LastRecordCount is the total store record count after the last
	// successful sync.
	LastRecordCount int

	// LastDuration is how long the last sync attempt took.
	LastDuration time.Duration

	// LastError is the failure message of the last failed sync, empty
	// otherwise.
	LastError string

	// LastCheckedAt is when a sync last completed, including empty-batch
	// runs that advanced nothing else.
	LastCheckedAt time.Time

	// UpdatedAt is when the checkpoint row last changed.
	UpdatedAt time.Time
}

// IsInitial reports whether no sync has ever advanced the watermark, i.e.
// the next sync must fetch everything.
func (c *SyncCheckpoint) IsInitial() bool {
	return !c.Watermark.After(WatermarkEpoch)
}

// SyncResult is the outcome of one sync run. The sync engine never raises
// past its own boundary; failures surface here.
type SyncResult struct {
	// Success reports whether the run committed.
	Success bool

	// RecordsProcessed is the number of records persisted in this run.
	RecordsProcessed int

	// RecordsInserted counts records seen for the first time.
	RecordsInserted int

	// RecordsUpdated counts records that already existed and were
	// overwritten.
	RecordsUpdated int

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// Error is the failure message when Success is false.
	Error string
}
