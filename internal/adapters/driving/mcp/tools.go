package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// SearchInput is the input schema for the search_updates tool. Filter
// dimensions combine with AND; every value listed in a multi-valued filter
// must be present on a record for it to match.
type SearchInput struct {
	Query          string   `json:"query,omitempty" jsonschema:"free-text query matching title and body"`
	Status         string   `json:"status,omitempty" jsonschema:"exact lifecycle status filter"`
	Rings          []string `json:"rings,omitempty" jsonschema:"required availability rings (all must be present)"`
	Tags           []string `json:"tags,omitempty" jsonschema:"required tags (all must be present)"`
	Categories     []string `json:"categories,omitempty" jsonschema:"required categories (all must be present)"`
	Products       []string `json:"products,omitempty" jsonschema:"required products (all must be present)"`
	ModifiedFrom   string   `json:"modified_from,omitempty" jsonschema:"modified on or after this date (YYYY-MM-DD)"`
	ModifiedTo     string   `json:"modified_to,omitempty" jsonschema:"modified on or before this date (YYYY-MM-DD)"`
	RetirementFrom string   `json:"retirement_from,omitempty" jsonschema:"retirement month on or after (YYYY-MM)"`
	RetirementTo   string   `json:"retirement_to,omitempty" jsonschema:"retirement month on or before (YYYY-MM)"`
	Sort           string   `json:"sort,omitempty" jsonschema:"sort key: relevance, modified, created or retirement"`
	Order          string   `json:"order,omitempty" jsonschema:"sort order: asc or desc"`
	Limit          int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 20, max 100)"`
	Offset         int      `json:"offset,omitempty" jsonschema:"number of results to skip"`
}

// SearchOutput is the output schema for the search_updates tool.
type SearchOutput struct {
	Results []UpdateOutput `json:"results"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
}

// UpdateOutput represents one announcement in tool output.
type UpdateOutput struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Status         string         `json:"status,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Categories     []string       `json:"categories,omitempty"`
	Products       []string       `json:"products,omitempty"`
	Availabilities []RingOutput   `json:"availabilities,omitempty"`
	RetirementDate string         `json:"retirement_date,omitempty"`
	Created        string         `json:"created"`
	Modified       string         `json:"modified"`
	BodyText       string         `json:"body_text,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// RingOutput is one availability milestone in tool output.
type RingOutput struct {
	Ring string `json:"ring"`
	Date string `json:"date,omitempty"`
}

// GetInput is the input schema for the get_update tool.
type GetInput struct {
	ID string `json:"id" jsonschema:"the announcement id to retrieve"`
}

// SyncInput is the input schema for the sync_updates tool.
type SyncInput struct {
	RetentionMonths int `json:"retention_months,omitempty" jsonschema:"drop records older than this many months (0 = keep everything)"`
}

// SyncOutput is the output schema for the sync_updates tool.
type SyncOutput struct {
	Success          bool   `json:"success"`
	RecordsProcessed int    `json:"records_processed"`
	RecordsInserted  int    `json:"records_inserted"`
	RecordsUpdated   int    `json:"records_updated"`
	DurationMs       int64  `json:"duration_ms"`
	Error            string `json:"error,omitempty"`
}

// StatusInput is the input schema for the sync_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the sync_status tool.
type StatusOutput struct {
	State       string `json:"state"`
	Watermark   string `json:"watermark,omitempty"`
	RecordCount int    `json:"record_count"`
	LastChecked string `json:"last_checked,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_updates",
		Description: "Search service-update announcements in the local replica",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_update",
		Description: "Retrieve a single announcement by id",
	}, s.handleGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_updates",
		Description: "Synchronise the local replica with the remote announcement feed",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report the current sync checkpoint",
	}, s.handleStatus)
}

// handleSearch handles the search_updates tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	req := domain.SearchRequest{
		Query:          input.Query,
		Status:         input.Status,
		Rings:          input.Rings,
		Tags:           input.Tags,
		Categories:     input.Categories,
		Products:       input.Products,
		RetirementFrom: input.RetirementFrom,
		RetirementTo:   input.RetirementTo,
		Sort:           domain.SortKey(input.Sort),
		Order:          domain.SortOrder(input.Order),
		Limit:          input.Limit,
		Offset:         input.Offset,
	}

	var err error
	if req.ModifiedFrom, err = parseDay(input.ModifiedFrom); err != nil {
		return nil, SearchOutput{}, err
	}
	if req.ModifiedTo, err = parseDay(input.ModifiedTo); err != nil {
		return nil, SearchOutput{}, err
	}

	resp, err := s.ports.Query.Search(ctx, req)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]UpdateOutput, len(resp.Results)),
		Total:   resp.Metadata.Total,
		HasMore: resp.Metadata.HasMore,
	}
	for i := range resp.Results {
		output.Results[i] = toUpdateOutput(&resp.Results[i], false)
	}

	return nil, output, nil
}

// handleGet handles the get_update tool invocation.
func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, UpdateOutput, error) {
	update, err := s.ports.Query.GetByID(ctx, input.ID)
	if err != nil {
		return nil, UpdateOutput{}, err
	}
	return nil, toUpdateOutput(update, true), nil
}

// handleSync handles the sync_updates tool invocation.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	var retentionStart time.Time
	if input.RetentionMonths > 0 {
		retentionStart = domain.MonthFloor(time.Now().UTC().AddDate(0, -input.RetentionMonths, 0))
	}

	result := s.ports.Sync.Run(ctx, retentionStart)

	return nil, SyncOutput{
		Success:          result.Success,
		RecordsProcessed: result.RecordsProcessed,
		RecordsInserted:  result.RecordsInserted,
		RecordsUpdated:   result.RecordsUpdated,
		DurationMs:       result.Duration.Milliseconds(),
		Error:            result.Error,
	}, nil
}

// handleStatus handles the sync_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	checkpoint, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, toStatusOutput(checkpoint), nil
}

// toUpdateOutput maps a domain update onto the tool output shape. The body
// is included only for single-record lookups to keep search output compact.
func toUpdateOutput(u *domain.Update, includeBody bool) UpdateOutput {
	out := UpdateOutput{
		ID:         u.ID,
		Title:      u.Title,
		Status:     u.Status,
		Tags:       u.Tags,
		Categories: u.Categories,
		Products:   u.Products,
		Created:    u.CreatedAt.Format(time.RFC3339),
		Modified:   u.ModifiedAt.Format(time.RFC3339),
	}

	for _, a := range u.Availabilities {
		ring := RingOutput{Ring: a.Ring}
		if a.Date != nil {
			ring.Date = a.Date.Format("2006-01")
		}
		out.Availabilities = append(out.Availabilities, ring)
	}
	if retirement := u.RetirementDate(); retirement != nil {
		out.RetirementDate = retirement.Format("2006-01")
	}

	if includeBody {
		out.BodyText = u.BodyText
		out.Metadata = u.Metadata
	}
	return out
}

// toStatusOutput maps the checkpoint onto the tool output shape.
func toStatusOutput(c *domain.SyncCheckpoint) StatusOutput {
	out := StatusOutput{
		State:       string(c.Status),
		RecordCount: c.LastRecordCount,
		LastError:   c.LastError,
	}
	if !c.IsInitial() {
		out.Watermark = c.Watermark.Format(time.RFC3339)
	}
	if !c.LastCheckedAt.IsZero() {
		out.LastChecked = c.LastCheckedAt.Format(time.RFC3339)
	}
	return out
}

// parseDay parses an optional day-granularity date string.
func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // Absent field means no bound
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
