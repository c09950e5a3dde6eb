package cli

import (
	"context"
	"errors"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// mockConfigStore is an in-memory driven.ConfigStore for command tests.
type mockConfigStore struct {
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: map[string]any{}}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if s, ok := m.values[key].(string); ok {
		return s
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if i, ok := m.values[key].(int); ok {
		return i
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if b, ok := m.values[key].(bool); ok {
		return b
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "/tmp/rostra-test/config.toml" }

// mockQueryService is a mock driving.UpdateQueryService.
type mockQueryService struct {
	response *domain.SearchResponse
	update   *domain.Update
	err      error
}

func (m *mockQueryService) Search(
	_ context.Context, _ domain.SearchRequest,
) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.response, nil
}

func (m *mockQueryService) GetByID(_ context.Context, _ string) (*domain.Update, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.update == nil {
		return nil, domain.ErrNotFound
	}
	return m.update, nil
}

// mockSyncRunner is a mock driving.SyncRunner.
type mockSyncRunner struct {
	result         domain.SyncResult
	checkpoint     *domain.SyncCheckpoint
	retentionStart time.Time
	statusErr      error
}

func (m *mockSyncRunner) Run(_ context.Context, retentionStart time.Time) domain.SyncResult {
	m.retentionStart = retentionStart
	return m.result
}

func (m *mockSyncRunner) Status(_ context.Context) (*domain.SyncCheckpoint, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if m.checkpoint == nil {
		return nil, errors.New("no checkpoint")
	}
	return m.checkpoint, nil
}

// testUpdate is a fully-populated announcement fixture.
func testUpdate() *domain.Update {
	retirement := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Update{
		ID:       "u-1",
		Title:    "Calendar sharing changes",
		BodyText: "Shared calendars gain granular permissions.",
		Status:   "Launched",
		Locale:   "en-GB",
		Tags:     []string{"Security", "Compliance"},
		Products: []string{"Teams"},
		Availabilities: []domain.Availability{
			{Ring: domain.RingRetirement, Date: &retirement},
			{Ring: domain.RingPreview},
		},
		CreatedAt:  time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		ModifiedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

// setupTestServices swaps the package-level services for mocks and returns
// a cleanup restoring the originals. The non-nil config store also keeps
// PersistentPreRunE from wiring real adapters.
func setupTestServices() func() {
	oldConfig := configStore
	oldSync := syncService
	oldQuery := queryService

	cfg := newMockConfigStore()
	cfg.values["feed.url"] = "https://feed.example.com/updates"
	configStore = cfg

	syncService = &mockSyncRunner{
		result: domain.SyncResult{
			Success:          true,
			RecordsProcessed: 3,
			RecordsInserted:  2,
			RecordsUpdated:   1,
			Duration:         120 * time.Millisecond,
		},
		checkpoint: &domain.SyncCheckpoint{
			Watermark:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
			Status:          domain.SyncStatusSuccess,
			LastRecordCount: 42,
			LastDuration:    120 * time.Millisecond,
			LastCheckedAt:   time.Date(2026, 5, 1, 9, 5, 0, 0, time.UTC),
		},
	}
	queryService = &mockQueryService{
		response: &domain.SearchResponse{
			Results: []domain.Update{*testUpdate()},
			Metadata: domain.SearchMetadata{
				Total: 1, Limit: domain.DefaultLimit,
			},
		},
		update: testUpdate(),
	}

	return func() {
		configStore = oldConfig
		syncService = oldSync
		queryService = oldQuery
	}
}
