// internal/models/search.go
package models

type SearchIntent string

const (
	IntentFind     SearchIntent = "find"
	IntentSimilar  SearchIntent = "similar"
	IntentTrending SearchIntent = "trending"
	IntentRecent   SearchIntent = "recent"
	IntentSpecific SearchIntent = "specific"
	IntentGeneral  SearchIntent = "general"
)

type TimeWindow string

const (
	WindowWeek    TimeWindow = "week"
	WindowMonth   TimeWindow = "month"
	WindowQuarter TimeWindow = "quarter"
	WindowYear    TimeWindow = "year"
)

// BudgetRange distinguishes "no budget language" (nil range) from a bounded
// range where either side may be open.
type BudgetRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// QueryEntities are the structured values extracted from free text.
type QueryEntities struct {
	Genres   []string     `json:"genres"`
	Formats  []string     `json:"formats"`
	Themes   []string     `json:"themes"`
	Budget   *BudgetRange `json:"budget,omitempty"`
	Window   *TimeWindow  `json:"timeframe,omitempty"`
	Keywords []string     `json:"keywords"`
}

// ParsedQuery is the structured interpretation of a free-text search query.
type ParsedQuery struct {
	Original string        `json:"original"`
	Intent   SearchIntent  `json:"intent"`
	Entities QueryEntities `json:"entities"`
	Concepts []string      `json:"concepts"`
}

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	ModeSemantic SearchMode = "semantic"
	ModeKeyword  SearchMode = "keyword"
	ModeHybrid   SearchMode = "hybrid"
)

// SearchFilters are the structured filters intersected with the parsed
// query during retrieval.
type SearchFilters struct {
	Genre     string   `json:"genre,omitempty"`
	Format    string   `json:"format,omitempty"`
	BudgetMin *float64 `json:"budgetMin,omitempty"`
	BudgetMax *float64 `json:"budgetMax,omitempty"`
	DateFrom  string   `json:"dateFrom,omitempty"` // RFC 3339
	DateTo    string   `json:"dateTo,omitempty"`
}

// SearchResult is one ranked hit with its provenance.
type SearchResult struct {
	PitchID        string   `json:"pitchId"`
	Title          string   `json:"title"`
	Logline        string   `json:"logline"`
	Genre          string   `json:"genre"`
	Format         string   `json:"format"`
	CreatorID      string   `json:"creatorId"`
	RelevanceScore int      `json:"relevanceScore"`
	MatchedFields  []string `json:"matchedFields"`
	Snippet        string   `json:"snippet"`
}
