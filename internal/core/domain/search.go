package domain

import (
	"fmt"
	"time"
)

// SortKey selects the primary ordering of search results.
type SortKey string

// Sort keys. SortRelevance is meaningful only with a free-text query.
const (
	SortRelevance  SortKey = "relevance"
	SortModified   SortKey = "modified"
	SortCreated    SortKey = "created"
	SortRetirement SortKey = "retirement"
)

// SortOrder is the direction of an explicit sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination bounds applied when the request leaves them unset.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchRequest is the query-engine request shape. Field and filter names
// are a stable contract the boundary layer maps 1:1 onto its external
// schema.
//
// Multi-valued dimensions (Rings, Tags, Categories, Products) use
// all-values-required semantics: every listed value must be present on a
// record for it to match. This holds uniformly across all dimensions.
type SearchRequest struct {
	// Query is optional free text. Blank means no text match.
	Query string

	// Status filters on exact lifecycle status.
	Status string

	// Rings requires every listed ring to appear in the availability
	// window.
	Rings []string

	// Tags, Categories and Products each require every listed value.
	Tags       []string
	Categories []string
	Products   []string

	// ModifiedFrom and ModifiedTo bound the modified timestamp,
	// inclusive.
	ModifiedFrom *time.Time
	ModifiedTo   *time.Time

	// RetirementFrom and RetirementTo bound the Retirement-ring date,
	// inclusive, at month granularity. Both "YYYY-MM" and "YYYY-MM-DD"
	// are accepted and normalised to the first of the month.
	RetirementFrom string
	RetirementTo   string

	// Sort is the primary sort key; empty means relevance when Query is
	// set, modified otherwise.
	Sort SortKey

	// Order is the sort direction; empty means descending. Ignored for
	// relevance, which always ranks best match first.
	Order SortOrder

	// Limit is the page size; 0 means DefaultLimit, capped at MaxLimit.
	Limit int

	// Offset is the number of results to skip.
	Offset int
}

// SearchQuery is the normalised form the record store executes: dates
// parsed, sort resolved, pagination defaulted. Produced by the query
// service from a SearchRequest.
type SearchQuery struct {
	Text           string
	Status         string
	Rings          []string
	Tags           []string
	Categories     []string
	Products       []string
	ModifiedFrom   *time.Time
	ModifiedTo     *time.Time
	RetirementFrom *time.Time
	RetirementTo   *time.Time
	Sort           SortKey
	Order          SortOrder
	Limit          int
	Offset         int
}

// SearchMetadata describes the page returned by a search.
type SearchMetadata struct {
	// Total is the exact match count under the same predicate as the
	// page.
	Total int

	// Limit and Offset echo the effective pagination.
	Limit  int
	Offset int

	// HasMore reports whether rows exist beyond this page.
	HasMore bool

	// QueryTimeMs is the wall-clock query time in milliseconds.
	QueryTimeMs int64
}

// SearchResponse is a ranked, paginated result set with exact totals.
type SearchResponse struct {
	Results  []Update
	Metadata SearchMetadata
}

// ParseMonth parses a month-granularity date in "YYYY-MM" or "YYYY-MM-DD"
// form, normalised to the first day of the month in UTC.
func ParseMonth(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthFloor(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid month date %q", ErrInvalidInput, s)
}
