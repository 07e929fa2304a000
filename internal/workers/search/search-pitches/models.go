// internal/workers/search/search-pitches/models.go
package searchpitches

import "pitchmatch-workers/internal/models"

type Input struct {
	Query         string               `json:"query"`
	ParsedQuery   *models.ParsedQuery  `json:"parsedQuery,omitempty"`
	Filters       models.SearchFilters `json:"filters"`
	Mode          string               `json:"mode,omitempty"`
	Limit         int                  `json:"limit,omitempty"`
	Offset        int                  `json:"offset,omitempty"`
	Authenticated bool                 `json:"authenticated"`
}

type Output struct {
	Results     []models.SearchResult `json:"results"`
	Suggestions []string              `json:"suggestions"`
	Count       int                   `json:"count"`
	Intent      models.SearchIntent   `json:"intent"`
}
