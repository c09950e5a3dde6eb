// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Rostra. It enables AI assistants like Claude to query the local
// announcement replica and trigger synchronisation.
package mcp

import "errors"

// Port validation errors.
var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrMissingSyncService is returned when the sync service is not provided.
	ErrMissingSyncService = errors.New("mcp: sync service is required")
)
