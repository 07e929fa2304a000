// internal/search/parser.go
package search

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"pitchmatch-workers/internal/models"
)

var ErrQueryTooShort = errors.New("query must be at least 2 characters")

var (
	reBetween = regexp.MustCompile(`between\s+\$?([\d.,]+)\s*(million|m|k)?\s+and\s+\$?([\d.,]+)\s*(million|m|k)?`)
	reUnder   = regexp.MustCompile(`(?:under|less than|below|at most|up to|no more than)\s+\$?([\d.,]+)\s*(million|m|k)?`)
	reOver    = regexp.MustCompile(`(?:over|more than|above|at least)\s+\$?([\d.,]+)\s*(million|m|k)?`)
	reBig     = regexp.MustCompile(`big budget|blockbuster`)
	reLow     = regexp.MustCompile(`low budget|micro budget|shoestring`)

	reToken = regexp.MustCompile(`[a-z0-9]+(?:-[a-z0-9]+)*`)
)

const (
	lowBudgetMax = 5_000_000
	bigBudgetMin = 50_000_000
)

// Parse turns free-text search input into structured intent and entities.
// Pure function of its input; queries shorter than two characters are a
// validation error rather than an empty parse.
func Parse(text string) (*models.ParsedQuery, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < 2 {
		return nil, ErrQueryTooShort
	}
	lowered := strings.ToLower(trimmed)

	entities := models.QueryEntities{
		Genres:   extractTagged(lowered, canonicalGenres, genreSynonyms),
		Formats:  extractTagged(lowered, canonicalFormats, formatSynonyms),
		Themes:   extractTagged(lowered, canonicalThemes, nil),
		Budget:   extractBudget(lowered),
		Window:   extractWindow(lowered),
		Keywords: extractKeywords(lowered),
	}

	return &models.ParsedQuery{
		Original: trimmed,
		Intent:   detectIntent(lowered, entities),
		Entities: entities,
		Concepts: extractConcepts(lowered),
	}, nil
}

// detectIntent scans the ordered phrase rules; the first hit wins. Queries
// with no intent phrase but concrete entities are treated as a find, so
// "thriller under $5m" searches instead of parsing to nothing.
func detectIntent(lowered string, entities models.QueryEntities) models.SearchIntent {
	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if containsTerm(lowered, phrase) {
				return models.SearchIntent(rule.intent)
			}
		}
	}
	if len(entities.Genres) > 0 || len(entities.Formats) > 0 ||
		len(entities.Themes) > 0 || entities.Budget != nil || entities.Window != nil {
		return models.IntentFind
	}
	return models.IntentGeneral
}

// extractTagged matches synonyms first (longer phrases normalize onto their
// canonical tag), then the canonical terms themselves. Duplicates collapse.
func extractTagged(lowered string, canonical []string, synonyms map[string]string) []string {
	found := []string{}
	seen := map[string]bool{}
	add := func(tag string) {
		if !seen[tag] {
			seen[tag] = true
			found = append(found, tag)
		}
	}
	phrases := make([]string, 0, len(synonyms))
	for phrase := range synonyms {
		phrases = append(phrases, phrase)
	}
	sort.Strings(phrases)
	for _, phrase := range phrases {
		if containsTerm(lowered, phrase) {
			add(synonyms[phrase])
		}
	}
	for _, tag := range canonical {
		if containsTerm(lowered, tag) {
			add(tag)
		}
	}
	return found
}

// extractBudget returns nil when no budget language is present; a nil range
// is distinct from a zero one. The first matching pattern family wins.
func extractBudget(lowered string) *models.BudgetRange {
	if m := reBetween.FindStringSubmatch(lowered); m != nil {
		min := parseAmount(m[1], m[2])
		max := parseAmount(m[3], m[4])
		if min != nil && max != nil {
			return &models.BudgetRange{Min: min, Max: max}
		}
	}
	if m := reUnder.FindStringSubmatch(lowered); m != nil {
		if max := parseAmount(m[1], m[2]); max != nil {
			return &models.BudgetRange{Max: max}
		}
	}
	if m := reOver.FindStringSubmatch(lowered); m != nil {
		if min := parseAmount(m[1], m[2]); min != nil {
			return &models.BudgetRange{Min: min}
		}
	}
	if reLow.MatchString(lowered) {
		max := float64(lowBudgetMax)
		return &models.BudgetRange{Max: &max}
	}
	if reBig.MatchString(lowered) {
		min := float64(bigBudgetMin)
		return &models.BudgetRange{Min: &min}
	}
	return nil
}

func parseAmount(num, suffix string) *float64 {
	cleaned := strings.ReplaceAll(num, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	switch suffix {
	case "k":
		value *= 1_000
	case "m", "million":
		value *= 1_000_000
	}
	return &value
}

func extractWindow(lowered string) *models.TimeWindow {
	for _, tp := range temporalPhrases {
		if containsTerm(lowered, tp.phrase) {
			w := models.TimeWindow(tp.window)
			return &w
		}
	}
	return nil
}

func extractKeywords(lowered string) []string {
	tokens := reToken.FindAllString(lowered, -1)
	keywords := []string{}
	seen := map[string]bool{}
	for _, tok := range tokens {
		if len(tok) <= 2 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}

func extractConcepts(lowered string) []string {
	concepts := []string{}
	for _, concept := range conceptOrder {
		for _, trigger := range conceptKeywords[concept] {
			if containsTerm(lowered, trigger) {
				concepts = append(concepts, concept)
				break
			}
		}
	}
	return concepts
}

var (
	termRegexMu sync.Mutex
	termRegexes = map[string]*regexp.Regexp{}
)

// containsTerm reports whether term occurs in text on word boundaries, so
// "western" does not light up inside "northwestern". Compiled patterns are
// cached since the vocabularies are fixed.
func containsTerm(text, term string) bool {
	termRegexMu.Lock()
	re, ok := termRegexes[term]
	if !ok {
		re = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		termRegexes[term] = re
	}
	termRegexMu.Unlock()
	return re.MatchString(text)
}
