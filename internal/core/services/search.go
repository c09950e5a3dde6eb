package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driving"
	"github.com/rostra-labs/rostra-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.UpdateQueryService = (*QueryService)(nil)

// QueryService is the query engine: it normalises requests and executes
// ranked, filtered, paginated reads against the record store. Reads are
// read-only and may run concurrently with each other and with a sync.
type QueryService struct {
	store driven.UpdateStore
}

// NewQueryService creates a new query service.
func NewQueryService(store driven.UpdateStore) *QueryService {
	return &QueryService{store: store}
}

// Search executes a query and returns one page with an exact total.
func (s *QueryService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	started := time.Now()

	query, err := s.normalise(req)
	if err != nil {
		return nil, err
	}
	logger.Debug("Query: text=%q sort=%s/%s limit=%d offset=%d",
		query.Text, query.Sort, query.Order, query.Limit, query.Offset)

	results, total, err := s.store.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Debug("Results: %d of %d total", len(results), total)

	return &domain.SearchResponse{
		Results: results,
		Metadata: domain.SearchMetadata{
			Total:       total,
			Limit:       query.Limit,
			Offset:      query.Offset,
			HasMore:     total > query.Offset+len(results),
			QueryTimeMs: time.Since(started).Milliseconds(),
		},
	}, nil
}

// GetByID retrieves a single update, ignoring all filters, sorting and
// pagination.
func (s *QueryService) GetByID(ctx context.Context, id string) (*domain.Update, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: empty update id", domain.ErrInvalidInput)
	}

	update, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get update %s: %w", id, err)
	}
	return update, nil
}

// normalise turns an external request into the executable query form:
// pagination defaulted, month dates parsed, sort resolved.
func (s *QueryService) normalise(req domain.SearchRequest) (domain.SearchQuery, error) {
	query := domain.SearchQuery{
		Text:         strings.TrimSpace(req.Query),
		Status:       req.Status,
		Rings:        req.Rings,
		Tags:         req.Tags,
		Categories:   req.Categories,
		Products:     req.Products,
		ModifiedFrom: req.ModifiedFrom,
		ModifiedTo:   req.ModifiedTo,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}

	if query.Limit <= 0 {
		query.Limit = domain.DefaultLimit
	}
	if query.Limit > domain.MaxLimit {
		query.Limit = domain.MaxLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	if req.RetirementFrom != "" {
		from, err := domain.ParseMonth(req.RetirementFrom)
		if err != nil {
			return domain.SearchQuery{}, err
		}
		query.RetirementFrom = &from
	}
	if req.RetirementTo != "" {
		to, err := domain.ParseMonth(req.RetirementTo)
		if err != nil {
			return domain.SearchQuery{}, err
		}
		query.RetirementTo = &to
	}

	sort, order, err := resolveSort(req.Sort, req.Order, query.Text != "")
	if err != nil {
		return domain.SearchQuery{}, err
	}
	query.Sort = sort
	query.Order = order

	return query, nil
}

// resolveSort picks the effective sort key and direction. The text match
// score is the default key when a query is present; modified descending
// otherwise. Relevance without a text query falls back to modified, since
// there is no score to rank by.
func resolveSort(sort domain.SortKey, order domain.SortOrder, hasText bool) (domain.SortKey, domain.SortOrder, error) {
	switch sort {
	case "":
		if hasText {
			sort = domain.SortRelevance
		} else {
			sort = domain.SortModified
		}
	case domain.SortRelevance:
		if !hasText {
			sort = domain.SortModified
		}
	case domain.SortModified, domain.SortCreated, domain.SortRetirement:
	default:
		return "", "", fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidInput, sort)
	}

	switch order {
	case "":
		order = domain.SortDesc
	case domain.SortAsc, domain.SortDesc:
	default:
		return "", "", fmt.Errorf("%w: unknown sort order %q", domain.ErrInvalidInput, order)
	}

	return sort, order, nil
}
