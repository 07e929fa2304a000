// internal/store/search.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pitchmatch-workers/internal/models"
)

// filterClauses renders the structured filters into WHERE fragments,
// appending bind values to args.
func filterClauses(filters models.SearchFilters, args *[]interface{}) []string {
	clauses := []string{"p.status = 'published'"}
	if filters.Genre != "" {
		*args = append(*args, filters.Genre)
		clauses = append(clauses, fmt.Sprintf("LOWER(p.genre) = LOWER($%d)", len(*args)))
	}
	if filters.Format != "" {
		*args = append(*args, filters.Format)
		clauses = append(clauses, fmt.Sprintf("LOWER(p.format) = LOWER($%d)", len(*args)))
	}
	if filters.BudgetMin != nil {
		*args = append(*args, *filters.BudgetMin)
		clauses = append(clauses, fmt.Sprintf("p.estimated_budget >= $%d", len(*args)))
	}
	if filters.BudgetMax != nil {
		*args = append(*args, *filters.BudgetMax)
		clauses = append(clauses, fmt.Sprintf("p.estimated_budget <= $%d", len(*args)))
	}
	if filters.DateFrom != "" {
		*args = append(*args, filters.DateFrom)
		clauses = append(clauses, fmt.Sprintf("p.published_at >= $%d", len(*args)))
	}
	if filters.DateTo != "" {
		*args = append(*args, filters.DateTo)
		clauses = append(clauses, fmt.Sprintf("p.published_at <= $%d", len(*args)))
	}
	return clauses
}

// SearchSemantic retrieves published pitches matching the structured filters
// plus at least one extracted theme or keyword, ordered by a coarse text
// relevance key (title hits over logline over synopsis) boosted by
// engagement. Candidates are re-scored client-side after retrieval.
func (s *Store) SearchSemantic(ctx context.Context, filters models.SearchFilters, keywords, themes []string, limit, offset int) ([]*models.Pitch, error) {
	var args []interface{}
	clauses := filterClauses(filters, &args)

	var hits []string
	var orderTerms []string
	for _, kw := range keywords {
		args = append(args, "%"+kw+"%")
		n := len(args)
		hits = append(hits,
			fmt.Sprintf("p.title ILIKE $%d", n),
			fmt.Sprintf("p.logline ILIKE $%d", n),
			fmt.Sprintf("p.short_synopsis ILIKE $%d", n),
			fmt.Sprintf("p.long_synopsis ILIKE $%d", n))
		orderTerms = append(orderTerms,
			fmt.Sprintf("(CASE WHEN p.title ILIKE $%d THEN 10 WHEN p.logline ILIKE $%d THEN 8 WHEN p.short_synopsis ILIKE $%d OR p.long_synopsis ILIKE $%d THEN 5 ELSE 0 END)", n, n, n, n))
	}
	for _, theme := range themes {
		encoded, err := json.Marshal([]string{theme})
		if err != nil {
			return nil, err
		}
		args = append(args, string(encoded))
		hits = append(hits, fmt.Sprintf("p.themes @> $%d::jsonb", len(args)))
	}
	if len(hits) > 0 {
		clauses = append(clauses, "("+strings.Join(hits, " OR ")+")")
	}

	orderTerms = append(orderTerms, "p.view_count/1000.0", "p.nda_count*2")

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT`+pitchColumns+`
		FROM pitches p
		WHERE %s
		ORDER BY %s DESC, p.id
		LIMIT $%d OFFSET $%d`,
		strings.Join(clauses, " AND "),
		strings.Join(orderTerms, " + "),
		limitPos, offsetPos)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return s.collectPitches(rows)
}

// SearchKeyword retrieves published pitches whose title, logline, or synopsis
// contains at least one keyword. Scoring happens client-side; retrieval only
// needs a stable engagement order to bound the candidate set.
func (s *Store) SearchKeyword(ctx context.Context, filters models.SearchFilters, keywords []string, limit, offset int) ([]*models.Pitch, error) {
	var args []interface{}
	clauses := filterClauses(filters, &args)

	var hits []string
	for _, kw := range keywords {
		args = append(args, "%"+kw+"%")
		n := len(args)
		hits = append(hits,
			fmt.Sprintf("p.title ILIKE $%d", n),
			fmt.Sprintf("p.logline ILIKE $%d", n),
			fmt.Sprintf("p.short_synopsis ILIKE $%d", n),
			fmt.Sprintf("p.long_synopsis ILIKE $%d", n))
	}
	if len(hits) > 0 {
		clauses = append(clauses, "("+strings.Join(hits, " OR ")+")")
	}

	args = append(args, limit)
	limitPos := len(args)
	args = append(args, offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT`+pitchColumns+`
		FROM pitches p
		WHERE %s
		ORDER BY p.view_count + 2*p.like_count + 3*p.nda_count DESC, p.id
		LIMIT $%d OFFSET $%d`,
		strings.Join(clauses, " AND "), limitPos, offsetPos)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return s.collectPitches(rows)
}

// GenreDistribution counts published pitches per genre, used for refinement
// suggestions.
func (s *Store) GenreDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT LOWER(p.genre), COUNT(*)
		FROM pitches p
		WHERE p.status = 'published'
		GROUP BY LOWER(p.genre)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var genre string
		var count int
		if err := rows.Scan(&genre, &count); err != nil {
			return nil, err
		}
		dist[genre] = count
	}
	return dist, rows.Err()
}
