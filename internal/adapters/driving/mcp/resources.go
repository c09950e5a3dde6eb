package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for Rostra resources.
const uriScheme = "rostra://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sync/status",
		Name:        "sync-status",
		Description: "Current sync checkpoint of the local announcement replica",
		MIMEType:    "application/json",
	}, s.handleSyncStatusResource)
}

// handleSyncStatusResource returns the sync checkpoint as a JSON resource.
func (s *Server) handleSyncStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	checkpoint, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading sync status: %w", err)
	}

	data, err := json.MarshalIndent(toStatusOutput(checkpoint), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sync status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
