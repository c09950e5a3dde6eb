package sqlite

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

// retirementExpr resolves a record's retirement date: the earliest dated
// Retirement milestone in its availability window, NULL when it has none.
const retirementExpr = `(SELECT MIN(a.available_on)
		FROM update_availabilities a
		WHERE a.update_id = u.id AND a.ring = 'Retirement' AND a.available_on IS NOT NULL)`

// Search executes one filtered, sorted page plus an exact total built from
// the same predicate, so the count can never drift from the page.
func (s *updateStore) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Update, int, error) {
	from, where, args := buildPredicate(query)

	countSQL := "SELECT COUNT(*) " + from + where
	var total int
	if err := s.store.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting results: %w", err)
	}

	pageSQL := "SELECT " + updateColumns + " " + from + where +
		" ORDER BY " + orderClause(query) + " LIMIT ? OFFSET ?"
	pageArgs := append(append([]interface{}{}, args...), query.Limit, query.Offset)

	rows, err := s.store.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []domain.Update //nolint:prealloc // size unknown from query
	for rows.Next() {
		u, err := scanUpdateRows(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating results: %w", err)
	}

	for i := range results {
		if err := s.enrich(ctx, &results[i]); err != nil {
			return nil, 0, err
		}
	}

	return results, total, nil
}

// buildPredicate assembles the FROM clause and the AND-combined WHERE
// conditions shared by the page and count queries.
func buildPredicate(query domain.SearchQuery) (from, where string, args []interface{}) {
	from = "FROM updates u"
	var conditions []string

	// Text that is all punctuation yields no terms; treat it as no match
	// expression rather than handing FTS5 an empty query.
	if match := ftsMatchExpression(query.Text); match != "" {
		from += " JOIN updates_fts ON updates_fts.rowid = u.rowid"
		conditions = append(conditions, "updates_fts MATCH ?")
		args = append(args, match)
	}

	if query.Status != "" {
		conditions = append(conditions, "u.status = ?")
		args = append(args, query.Status)
	}

	// Every value in a multi-valued dimension must be present on the
	// record, so each gets its own EXISTS.
	for _, ring := range query.Rings {
		conditions = append(conditions,
			"EXISTS(SELECT 1 FROM update_availabilities a WHERE a.update_id = u.id AND a.ring = ?)")
		args = append(args, ring)
	}
	for _, tag := range query.Tags {
		conditions = append(conditions,
			"EXISTS(SELECT 1 FROM update_tags t WHERE t.update_id = u.id AND t.tag = ?)")
		args = append(args, tag)
	}
	for _, category := range query.Categories {
		conditions = append(conditions,
			"EXISTS(SELECT 1 FROM update_categories c WHERE c.update_id = u.id AND c.category = ?)")
		args = append(args, category)
	}
	for _, product := range query.Products {
		conditions = append(conditions,
			"EXISTS(SELECT 1 FROM update_products p WHERE p.update_id = u.id AND p.product = ?)")
		args = append(args, product)
	}

	if query.ModifiedFrom != nil {
		conditions = append(conditions, "u.modified_at >= ?")
		args = append(args, formatTime(*query.ModifiedFrom))
	}
	if query.ModifiedTo != nil {
		conditions = append(conditions, "u.modified_at <= ?")
		args = append(args, formatTime(*query.ModifiedTo))
	}

	// Retirement bounds compare the resolved date, not any milestone in
	// range. A NULL resolved date fails the comparison, so undated
	// records never match a retirement filter.
	if query.RetirementFrom != nil {
		conditions = append(conditions, retirementExpr+" >= ?")
		args = append(args, formatTime(*query.RetirementFrom))
	}
	if query.RetirementTo != nil {
		conditions = append(conditions, retirementExpr+" <= ?")
		args = append(args, formatTime(*query.RetirementTo))
	}

	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	return from, where, args
}

// orderClause maps the resolved sort key and direction to SQL. Records
// without a retirement date always sort after dated ones, and ties break
// on recency.
func orderClause(query domain.SearchQuery) string {
	direction := "DESC"
	if query.Order == domain.SortAsc {
		direction = "ASC"
	}

	switch query.Sort {
	case domain.SortRelevance:
		// bm25 is only addressable when the FTS table is joined.
		if ftsMatchExpression(query.Text) == "" {
			return "u.modified_at DESC"
		}
		// bm25 returns lower scores for better matches.
		return "bm25(updates_fts) ASC, u.modified_at DESC"
	case domain.SortCreated:
		return "u.created_at " + direction + ", u.modified_at DESC"
	case domain.SortRetirement:
		return retirementExpr + " IS NULL, " + retirementExpr + " " + direction + ", u.modified_at DESC"
	default:
		return "u.modified_at " + direction
	}
}

// ftsMatchExpression turns free text into an FTS5 match expression: terms
// are quoted to neutralise query syntax, suffixed with * for prefix
// matching and OR-joined so any term can satisfy the match.
func ftsMatchExpression(text string) string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		parts = append(parts, `"`+term+`"*`)
	}
	return strings.Join(parts, " OR ")
}
