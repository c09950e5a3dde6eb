package mcp

import (
	"context"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.UpdateQueryService.
type mockQueryService struct {
	response *domain.SearchResponse
	update   *domain.Update
	lastReq  domain.SearchRequest
	err      error
}

func (m *mockQueryService) Search(
	_ context.Context,
	req domain.SearchRequest,
) (*domain.SearchResponse, error) {
	m.lastReq = req
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
	return m.update, nil
}

// mockSyncRunner is a mock implementation of driving.SyncRunner.
type mockSyncRunner struct {
	result         domain.SyncResult
	checkpoint     *domain.SyncCheckpoint
	retentionStart time.Time
	runCalls       int
	statusErr      error
}

func (m *mockSyncRunner) Run(_ context.Context, retentionStart time.Time) domain.SyncResult {
	m.runCalls++
	m.retentionStart = retentionStart
	return m.result
}

func (m *mockSyncRunner) Status(_ context.Context) (*domain.SyncCheckpoint, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return m.checkpoint, nil
}
