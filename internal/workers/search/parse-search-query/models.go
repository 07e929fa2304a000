// internal/workers/search/parse-search-query/models.go
package parsesearchquery

import "pitchmatch-workers/internal/models"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	ParsedQuery *models.ParsedQuery `json:"parsedQuery"`
}
