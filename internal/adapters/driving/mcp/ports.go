package mcp

import (
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query serves searches and lookups against the local replica.
	Query driving.UpdateQueryService

	// Sync triggers and reports replica synchronisation.
	Sync driving.SyncRunner
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	return nil
}
