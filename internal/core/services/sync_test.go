package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockCheckpointStore implements driven.CheckpointStore for testing.
type mockCheckpointStore struct {
	checkpoint  domain.SyncCheckpoint
	guardBusy   bool
	beginErr    error
	getErr      error
	completeErr error

	beginCalls    int
	completeCalls int
	failCalls     int
	touchCalls    int
	failMessage   string
}

func (m *mockCheckpointStore) Get(_ context.Context) (*domain.SyncCheckpoint, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c := m.checkpoint
	return &c, nil
}

func (m *mockCheckpointStore) Begin(_ context.Context) (bool, error) {
	m.beginCalls++
	if m.beginErr != nil {
		return false, m.beginErr
	}
	if m.guardBusy {
		return false, nil
	}
	m.checkpoint.Status = domain.SyncStatusInProgress
	return true, nil
}

func (m *mockCheckpointStore) Complete(_ context.Context, watermark time.Time, recordCount int, _ time.Duration) error {
	m.completeCalls++
	if m.completeErr != nil {
		return m.completeErr
	}
	m.checkpoint.Watermark = watermark
	m.checkpoint.LastRecordCount = recordCount
	m.checkpoint.Status = domain.SyncStatusSuccess
	m.checkpoint.LastCheckedAt = time.Now()
	return nil
}

func (m *mockCheckpointStore) Fail(_ context.Context, message string, _ time.Duration) error {
	m.failCalls++
	m.failMessage = message
	m.checkpoint.Status = domain.SyncStatusFailed
	m.checkpoint.LastError = message
	return nil
}

func (m *mockCheckpointStore) Touch(_ context.Context, _ time.Duration) error {
	m.touchCalls++
	m.checkpoint.Status = domain.SyncStatusSuccess
	m.checkpoint.LastCheckedAt = time.Now()
	return nil
}

// mockUpdateStore implements driven.UpdateStore for testing.
type mockUpdateStore struct {
	applied     [][]domain.Update
	pruneBefore time.Time
	applyErr    error
	count       int
	countErr    error
}

func (m *mockUpdateStore) ApplyBatch(
	_ context.Context, updates []domain.Update, pruneBefore time.Time,
) (driven.BatchResult, error) {
	if m.applyErr != nil {
		return driven.BatchResult{}, m.applyErr
	}
	m.applied = append(m.applied, updates)
	m.pruneBefore = pruneBefore
	m.count += len(updates)
	return driven.BatchResult{Inserted: len(updates)}, nil
}

func (m *mockUpdateStore) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockUpdateStore) Search(_ context.Context, _ domain.SearchQuery) ([]domain.Update, int, error) {
	return nil, 0, nil
}

func (m *mockUpdateStore) GetByID(_ context.Context, _ string) (*domain.Update, error) {
	return nil, domain.ErrNotFound
}

// mockFeedClient implements driven.FeedClient for testing.
type mockFeedClient struct {
	records       []domain.RawUpdate
	fetchErr      error
	fetchCalls    int
	modifiedSince *time.Time
	includeCount  bool
}

func (m *mockFeedClient) Fetch(
	_ context.Context, modifiedSince *time.Time, includeCount bool,
) ([]domain.RawUpdate, error) {
	m.fetchCalls++
	m.modifiedSince = modifiedSince
	m.includeCount = includeCount
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.records, nil
}

// passthroughNormaliser returns the body unchanged.
type passthroughNormaliser struct{}

func (passthroughNormaliser) Normalise(richText string) string { return richText }

// --- Fixtures ---

var (
	t1 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	t3 = time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)
)

func rawRecord(id string, modified time.Time) domain.RawUpdate {
	return domain.RawUpdate{
		ID:         id,
		Title:      "Update " + id,
		Body:       "<p>Body</p>",
		Status:     "Launched",
		CreatedAt:  modified.Add(-time.Hour),
		ModifiedAt: modified,
	}
}

func newTestEngine(
	checkpoints *mockCheckpointStore, store *mockUpdateStore, feed *mockFeedClient,
) *SyncEngine {
	return NewSyncEngine(checkpoints, store, feed, passthroughNormaliser{})
}

func initialCheckpoint() domain.SyncCheckpoint {
	return domain.SyncCheckpoint{
		Watermark: domain.WatermarkEpoch,
		Status:    domain.SyncStatusSuccess,
	}
}

// --- Tests ---

func TestSyncEngine_InitialSyncAdvancesWatermark(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: initialCheckpoint()}
	store := &mockUpdateStore{}
	feed := &mockFeedClient{records: []domain.RawUpdate{
		rawRecord("r1", t1), rawRecord("r2", t2), rawRecord("r3", t3),
	}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.RecordsProcessed)
	assert.Equal(t, 3, result.RecordsInserted)
	assert.Empty(t, result.Error)

	// Watermark lands on the max modified timestamp.
	assert.Equal(t, t3, checkpoints.checkpoint.Watermark)
	assert.Equal(t, 3, checkpoints.checkpoint.LastRecordCount)
	assert.Equal(t, domain.SyncStatusSuccess, checkpoints.checkpoint.Status)

	// Initial sync fetches everything and asks for the total.
	assert.Nil(t, feed.modifiedSince)
	assert.True(t, feed.includeCount)
}

func TestSyncEngine_DifferentialSyncUsesWatermark(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: domain.SyncCheckpoint{
		Watermark: t2,
		Status:    domain.SyncStatusSuccess,
	}}
	store := &mockUpdateStore{}
	feed := &mockFeedClient{records: []domain.RawUpdate{rawRecord("r3", t3)}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.True(t, result.Success)
	require.NotNil(t, feed.modifiedSince)
	assert.Equal(t, t2, *feed.modifiedSince)
	assert.False(t, feed.includeCount)
	assert.Equal(t, t3, checkpoints.checkpoint.Watermark)
}

func TestSyncEngine_GuardBusySkipsFetch(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: initialCheckpoint(), guardBusy: true}
	store := &mockUpdateStore{}
	feed := &mockFeedClient{}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrSyncInProgress.Error(), result.Error)
	// No fetch, no persistence, and crucially no Fail: the other run owns
	// the checkpoint.
	assert.Equal(t, 0, feed.fetchCalls)
	assert.Empty(t, store.applied)
	assert.Equal(t, 0, checkpoints.failCalls)
}

func TestSyncEngine_FetchFailureRecordsFailure(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: domain.SyncCheckpoint{
		Watermark: t1,
		Status:    domain.SyncStatusSuccess,
	}}
	store := &mockUpdateStore{}
	feed := &mockFeedClient{fetchErr: errors.New("connection refused")}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "fetch feed")
	assert.Equal(t, 1, checkpoints.failCalls)
	assert.Contains(t, checkpoints.failMessage, "connection refused")
	// The watermark stays where the last success left it.
	assert.Equal(t, t1, checkpoints.checkpoint.Watermark)
	assert.Empty(t, store.applied)
}

func TestSyncEngine_PersistFailureLeavesWatermark(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: domain.SyncCheckpoint{
		Watermark: t1,
		Status:    domain.SyncStatusSuccess,
	}}
	store := &mockUpdateStore{applyErr: errors.New("disk full")}
	feed := &mockFeedClient{records: []domain.RawUpdate{rawRecord("r2", t2)}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "persist batch")
	assert.Equal(t, 1, checkpoints.failCalls)
	assert.Equal(t, t1, checkpoints.checkpoint.Watermark)
}

func TestSyncEngine_EmptyBatchFastPath(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: domain.SyncCheckpoint{
		Watermark:       t3,
		Status:          domain.SyncStatusSuccess,
		LastRecordCount: 7,
	}}
	store := &mockUpdateStore{}
	feed := &mockFeedClient{} // nothing new
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.RecordsProcessed)
	// Touch, not Complete: watermark and record count stay put, only the
	// last-checked time refreshes.
	assert.Equal(t, 1, checkpoints.touchCalls)
	assert.Equal(t, 0, checkpoints.completeCalls)
	assert.Equal(t, t3, checkpoints.checkpoint.Watermark)
	assert.Equal(t, 7, checkpoints.checkpoint.LastRecordCount)
	assert.Empty(t, store.applied)
}

func TestSyncEngine_RetentionFilterDropsOldRecords(t *testing.T) {
	floor := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	checkpoints := &mockCheckpointStore{checkpoint: initialCheckpoint()}
	store := &mockUpdateStore{}
	feed := &mockFeedClient{records: []domain.RawUpdate{
		rawRecord("old", t1), // max(created, modified) before floor
		rawRecord("new", t3),
	}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), floor)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.RecordsProcessed)
	require.Len(t, store.applied, 1)
	require.Len(t, store.applied[0], 1)
	assert.Equal(t, "new", store.applied[0][0].ID)
	// The same floor is handed to the store for pruning.
	assert.Equal(t, floor, store.pruneBefore)
	// And to the feed, to shrink the initial transfer.
	require.NotNil(t, feed.modifiedSince)
	assert.Equal(t, floor, *feed.modifiedSince)
}

func TestSyncEngine_RetentionKeepsRecentlyCreatedRecords(t *testing.T) {
	floor := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	checkpoints := &mockCheckpointStore{checkpoint: initialCheckpoint()}
	store := &mockUpdateStore{}

	// Modified before the floor but created after it: max(created,
	// modified) is the creation time, so the record survives.
	record := rawRecord("odd", t1)
	record.CreatedAt = t3
	feed := &mockFeedClient{records: []domain.RawUpdate{record}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), floor)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.RecordsProcessed)
}

func TestSyncEngine_NormalisesAndClampsRecords(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: initialCheckpoint()}
	store := &mockUpdateStore{}

	record := rawRecord("r1", t1)
	record.CreatedAt = t2 // created after modified: modified gets clamped
	record.Availabilities = []domain.RawAvailability{
		{Ring: domain.RingRetirement, Year: 2026, Month: time.September},
		{Ring: domain.RingPreview}, // undated
	}
	feed := &mockFeedClient{records: []domain.RawUpdate{record}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})
	require.True(t, result.Success)

	require.Len(t, store.applied, 1)
	stored := store.applied[0][0]
	assert.Equal(t, t2, stored.ModifiedAt)
	assert.Equal(t, stored.Body, stored.BodyText) // passthrough normaliser
	require.Len(t, stored.Availabilities, 2)
	require.NotNil(t, stored.Availabilities[0].Date)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *stored.Availabilities[0].Date)
	assert.Nil(t, stored.Availabilities[1].Date)

	// The clamped timestamp also feeds the watermark.
	assert.Equal(t, t2, checkpoints.checkpoint.Watermark)
}

func TestSyncEngine_WatermarkNeverMovesBackward(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: domain.SyncCheckpoint{
		Watermark: t3,
		Status:    domain.SyncStatusSuccess,
	}}
	store := &mockUpdateStore{}
	// Feed returns a record older than the watermark (clock skew upstream).
	feed := &mockFeedClient{records: []domain.RawUpdate{rawRecord("stale", t1)}}
	engine := newTestEngine(checkpoints, store, feed)

	result := engine.Run(context.Background(), time.Time{})

	assert.True(t, result.Success)
	assert.Equal(t, t3, checkpoints.checkpoint.Watermark)
}

func TestSyncEngine_Status(t *testing.T) {
	checkpoints := &mockCheckpointStore{checkpoint: domain.SyncCheckpoint{
		Watermark:       t2,
		Status:          domain.SyncStatusSuccess,
		LastRecordCount: 12,
	}}
	engine := newTestEngine(checkpoints, &mockUpdateStore{}, &mockFeedClient{})

	checkpoint, err := engine.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t2, checkpoint.Watermark)
	assert.Equal(t, 12, checkpoint.LastRecordCount)
}
