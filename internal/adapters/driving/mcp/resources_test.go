package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleSyncStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns checkpoint as JSON", func(t *testing.T) {
		sync := &mockSyncRunner{
			checkpoint: &domain.SyncCheckpoint{
				Watermark:       time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC),
				Status:          domain.SyncStatusSuccess,
				LastRecordCount: 87,
			},
		}
		server := newTestServer(t, &mockQueryService{}, sync)

		req := makeReadResourceRequest(uriScheme + "sync/status")
		result, err := server.handleSyncStatusResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"success"`)
		assert.Contains(t, result.Contents[0].Text, "2026-05-03T10:00:00Z")
		assert.Contains(t, result.Contents[0].Text, `"record_count": 87`)
	})

	t.Run("returns error on status failure", func(t *testing.T) {
		sync := &mockSyncRunner{statusErr: errors.New("database error")}
		server := newTestServer(t, &mockQueryService{}, sync)

		req := makeReadResourceRequest(uriScheme + "sync/status")
		_, err := server.handleSyncStatusResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading sync status")
	})
}
