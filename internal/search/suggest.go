// internal/search/suggest.go
package search

import (
	"context"
	"fmt"

	"pitchmatch-workers/internal/models"
)

const maxSuggestions = 5

// genreSuggestions are canned related-search phrases appended when the query
// mentions the genre.
var genreSuggestions = map[string][]string{
	"thriller":    {"psychological thrillers", "crime thrillers under $10M"},
	"drama":       {"family dramas", "character-driven dramas"},
	"scifi":       {"low budget scifi", "scifi tv series"},
	"horror":      {"supernatural horror", "found footage horror"},
	"comedy":      {"romantic comedies", "dark comedies"},
	"documentary": {"true crime documentaries", "nature documentaries"},
	"fantasy":     {"epic fantasy features", "urban fantasy series"},
	"action":      {"big budget action", "action thrillers"},
}

// trendingSuggestions pad out sparse result sets.
var trendingSuggestions = []string{
	"trending this month",
	"most viewed pitches",
	"new releases this week",
}

// suggestions derives follow-ups from three sources in priority order: the
// genre distribution of the results themselves, canned phrases for genres
// named in the query, and generic trending fallbacks when results are thin.
func (f *Fusion) suggestions(ctx context.Context, parsed *models.ParsedQuery, results []models.SearchResult) ([]string, error) {
	out := []string{}
	seen := map[string]bool{}
	add := func(s string) {
		if len(out) < maxSuggestions && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	genres := models.NewFreqTable()
	for _, r := range results {
		if r.Genre != "" {
			genres.Add(r.Genre)
		}
	}
	for _, genre := range genres.Top(2) {
		add(fmt.Sprintf("more %s pitches", genre))
	}

	for _, genre := range parsed.Entities.Genres {
		for _, canned := range genreSuggestions[genre] {
			add(canned)
		}
	}

	if len(results) < 5 {
		dist, err := f.store.GenreDistribution(ctx)
		if err != nil {
			return out, err
		}
		if top := dominantGenre(dist); top != "" {
			add(fmt.Sprintf("browse %s pitches", top))
		}
		for _, s := range trendingSuggestions {
			add(s)
		}
	}
	return out, nil
}

// dominantGenre picks the most common genre in the catalog, breaking count
// ties by name for determinism.
func dominantGenre(dist map[string]int) string {
	best := ""
	bestCount := 0
	for genre, count := range dist {
		if count > bestCount || (count == bestCount && (best == "" || genre < best)) {
			best = genre
			bestCount = count
		}
	}
	return best
}
