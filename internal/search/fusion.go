// internal/search/fusion.go
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/store"
)

const (
	// DefaultLimit applies when the caller does not request one.
	DefaultLimit = 20

	// UnauthenticatedLimit caps result sets for anonymous callers. The cap
	// sits at this boundary, not inside the ranking logic.
	UnauthenticatedLimit = 10

	// hybridOversample widens both retrievals before merging so the merge
	// has enough overlap to work with.
	hybridOversample = 2

	// semanticBoost favors semantic hits during the hybrid merge.
	semanticBoost = 1.2
)

// Options carries the caller-controlled knobs for one search.
type Options struct {
	Filters       models.SearchFilters
	Mode          models.SearchMode
	Limit         int
	Offset        int
	Authenticated bool
}

// Response is the fused result set plus follow-up suggestions.
type Response struct {
	Results     []models.SearchResult `json:"results"`
	Suggestions []string              `json:"suggestions"`
}

// Fusion runs semantic and keyword retrieval over a parsed query and merges
// the two ranked lists deterministically.
type Fusion struct {
	store  *store.Store
	logger logger.Logger
	now    func() time.Time
}

func NewFusion(st *store.Store, log logger.Logger) *Fusion {
	return &Fusion{
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "search"}),
		now:    time.Now,
	}
}

func (f *Fusion) Search(ctx context.Context, parsed *models.ParsedQuery, opts Options) (*Response, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if !opts.Authenticated && limit > UnauthenticatedLimit {
		limit = UnauthenticatedLimit
	}
	mode := opts.Mode
	if mode == "" {
		mode = models.ModeHybrid
	}
	filters := f.effectiveFilters(parsed, opts.Filters)

	var results []models.SearchResult
	var err error
	switch mode {
	case models.ModeSemantic:
		results, err = f.semantic(ctx, parsed, filters, limit, opts.Offset)
	case models.ModeKeyword:
		results, err = f.keyword(ctx, parsed, filters, limit, opts.Offset)
	default:
		results, err = f.hybrid(ctx, parsed, filters, limit, opts.Offset)
	}
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].MatchedFields = sortedFields(results[i].MatchedFields)
	}

	suggestions, err := f.suggestions(ctx, parsed, results)
	if err != nil {
		// Suggestions are decorative; a failed read must not sink the
		// result set.
		f.logger.Warn("suggestion generation failed", map[string]interface{}{"error": err})
		suggestions = []string{}
	}

	f.logger.Info("search completed", map[string]interface{}{
		"mode":    string(mode),
		"results": len(results),
	})
	return &Response{Results: results, Suggestions: suggestions}, nil
}

// effectiveFilters overlays parsed entities onto caller filters; explicit
// caller filters win.
func (f *Fusion) effectiveFilters(parsed *models.ParsedQuery, filters models.SearchFilters) models.SearchFilters {
	out := filters
	if out.Genre == "" && len(parsed.Entities.Genres) == 1 {
		out.Genre = parsed.Entities.Genres[0]
	}
	if out.Format == "" && len(parsed.Entities.Formats) == 1 {
		out.Format = parsed.Entities.Formats[0]
	}
	if budget := parsed.Entities.Budget; budget != nil {
		if out.BudgetMin == nil {
			out.BudgetMin = budget.Min
		}
		if out.BudgetMax == nil {
			out.BudgetMax = budget.Max
		}
	}
	if out.DateFrom == "" && parsed.Entities.Window != nil {
		out.DateFrom = f.windowStart(*parsed.Entities.Window)
	}
	return out
}

func (f *Fusion) windowStart(w models.TimeWindow) string {
	days := map[models.TimeWindow]int{
		models.WindowWeek:    7,
		models.WindowMonth:   30,
		models.WindowQuarter: 90,
		models.WindowYear:    365,
	}[w]
	if days == 0 {
		return ""
	}
	return f.now().AddDate(0, 0, -days).Format(time.RFC3339)
}

func (f *Fusion) semantic(ctx context.Context, parsed *models.ParsedQuery, filters models.SearchFilters, limit, offset int) ([]models.SearchResult, error) {
	pitches, err := f.store.SearchSemantic(ctx, filters, parsed.Entities.Keywords, parsed.Entities.Themes, limit, offset)
	if err != nil {
		return nil, err
	}
	results := make([]models.SearchResult, 0, len(pitches))
	for _, p := range pitches {
		results = append(results, f.scoreSemantic(p, parsed))
	}
	sortResults(results)
	return results, nil
}

func (f *Fusion) keyword(ctx context.Context, parsed *models.ParsedQuery, filters models.SearchFilters, limit, offset int) ([]models.SearchResult, error) {
	pitches, err := f.store.SearchKeyword(ctx, filters, parsed.Entities.Keywords, limit, offset)
	if err != nil {
		return nil, err
	}
	results := make([]models.SearchResult, 0, len(pitches))
	for _, p := range pitches {
		results = append(results, f.scoreKeyword(p, parsed))
	}
	sortResults(results)
	return results, nil
}

// hybrid oversamples both strategies, boosts semantic scores, merges by
// pitch id, then applies offset and limit to the merged order.
func (f *Fusion) hybrid(ctx context.Context, parsed *models.ParsedQuery, filters models.SearchFilters, limit, offset int) ([]models.SearchResult, error) {
	oversampled := hybridOversample * (limit + offset)

	semantic, err := f.semantic(ctx, parsed, filters, oversampled, 0)
	if err != nil {
		return nil, err
	}
	keyword, err := f.keyword(ctx, parsed, filters, oversampled, 0)
	if err != nil {
		return nil, err
	}

	merged := MergeHybrid(semantic, keyword)
	if offset >= len(merged) {
		return []models.SearchResult{}, nil
	}
	merged = merged[offset:]
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// MergeHybrid fuses the two ranked sets: semantic scores are boosted by 1.2,
// a pitch present in both sets gets the average of its boosted semantic and
// keyword scores and the union of matched fields.
func MergeHybrid(semantic, keyword []models.SearchResult) []models.SearchResult {
	merged := make(map[string]models.SearchResult, len(semantic)+len(keyword))
	boostedScores := make(map[string]float64, len(semantic))
	order := make([]string, 0, len(semantic)+len(keyword))

	// The boosted semantic score stays unclamped and unrounded until after
	// the average so overlap with a strong keyword hit is not flattened
	// early and no precision is lost before the final rounding.
	for _, r := range semantic {
		boosted := r
		score := float64(r.RelevanceScore) * semanticBoost
		boostedScores[r.PitchID] = score
		boosted.RelevanceScore = int(score + 0.5)
		merged[r.PitchID] = boosted
		order = append(order, r.PitchID)
	}
	for _, r := range keyword {
		if prev, ok := merged[r.PitchID]; ok {
			avg := (boostedScores[r.PitchID] + float64(r.RelevanceScore)) / 2
			prev.RelevanceScore = int(avg + 0.5)
			prev.MatchedFields = unionFields(prev.MatchedFields, r.MatchedFields)
			merged[r.PitchID] = prev
			continue
		}
		merged[r.PitchID] = r
		order = append(order, r.PitchID)
	}

	out := make([]models.SearchResult, 0, len(order))
	for _, id := range order {
		r := merged[id]
		r.RelevanceScore = clampScore(r.RelevanceScore)
		out = append(out, r)
	}
	sortResults(out)
	return out
}

func (f *Fusion) scoreSemantic(p *models.Pitch, parsed *models.ParsedQuery) models.SearchResult {
	score := 50
	fields := []string{}

	title := strings.ToLower(p.Title)
	body := strings.ToLower(p.Logline + " " + p.BestSynopsis())

	if containsAny(title, parsed.Entities.Keywords) {
		score += 30
		fields = append(fields, "title")
	}
	if matchesTag(p.Genre, parsed.Entities.Genres) {
		score += 15
		fields = append(fields, "genre")
	}
	if matchesTag(p.Format, parsed.Entities.Formats) {
		score += 10
		fields = append(fields, "format")
	}
	if overlap := countOverlap(p.Themes, parsed.Entities.Themes); overlap > 0 {
		score += 5 * overlap
		fields = append(fields, "themes")
	}
	for _, concept := range parsed.Concepts {
		if strings.Contains(body, concept) {
			score += 8
			fields = appendField(fields, "synopsis")
		}
	}

	return f.newResult(p, parsed, clampScore(score), fields)
}

func (f *Fusion) scoreKeyword(p *models.Pitch, parsed *models.ParsedQuery) models.SearchResult {
	score := 0
	fields := []string{}

	title := strings.ToLower(p.Title)
	logline := strings.ToLower(p.Logline)
	synopsis := strings.ToLower(p.ShortSynopsis + " " + p.LongSynopsis)

	for _, kw := range parsed.Entities.Keywords {
		if strings.Contains(title, kw) {
			score += 30
			fields = appendField(fields, "title")
		}
		if strings.Contains(logline, kw) {
			score += 20
			fields = appendField(fields, "logline")
		}
		if strings.Contains(synopsis, kw) {
			score += 10
			fields = appendField(fields, "synopsis")
		}
	}

	return f.newResult(p, parsed, clampScore(score), fields)
}

func (f *Fusion) newResult(p *models.Pitch, parsed *models.ParsedQuery, score int, fields []string) models.SearchResult {
	text := p.BestSynopsis()
	if text == "" {
		text = p.Logline
	}
	return models.SearchResult{
		PitchID:        p.ID,
		Title:          p.Title,
		Logline:        p.Logline,
		Genre:          p.Genre,
		Format:         p.Format,
		CreatorID:      p.CreatorID,
		RelevanceScore: score,
		MatchedFields:  fields,
		Snippet:        buildSnippet(text, parsed.Entities.Keywords),
	}
}

func sortResults(results []models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].PitchID < results[j].PitchID
	})
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func matchesTag(value string, tags []string) bool {
	for _, tag := range tags {
		if strings.EqualFold(value, tag) {
			return true
		}
	}
	return false
}

func countOverlap(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[strings.ToLower(v)] = true
	}
	count := 0
	for _, v := range a {
		if set[strings.ToLower(v)] {
			count++
		}
	}
	return count
}

func appendField(fields []string, field string) []string {
	for _, f := range fields {
		if f == field {
			return fields
		}
	}
	return append(fields, field)
}

func unionFields(a, b []string) []string {
	out := append([]string{}, a...)
	for _, f := range b {
		out = appendField(out, f)
	}
	return out
}

func sortedFields(fields []string) []string {
	if fields == nil {
		return []string{}
	}
	sort.Strings(fields)
	return fields
}
