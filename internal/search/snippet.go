// internal/search/snippet.go
package search

import (
	"regexp"
	"strings"
)

const (
	snippetWindow = 150
	snippetStep   = 50
	ellipsis      = "..."
)

// buildSnippet slides a fixed window over the text in fixed steps, keeps
// the window containing the most keyword occurrences, and wraps each keyword
// hit in emphasis markers. Ties keep the earliest window.
func buildSnippet(text string, keywords []string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= snippetWindow {
		return emphasize(trimmed, keywords)
	}

	lowered := strings.ToLower(trimmed)
	bestStart, bestCount := 0, -1
	for start := 0; start < len(trimmed); start += snippetStep {
		end := start + snippetWindow
		if end > len(trimmed) {
			end = len(trimmed)
		}
		count := 0
		window := lowered[start:end]
		for _, kw := range keywords {
			count += strings.Count(window, strings.ToLower(kw))
		}
		if count > bestCount {
			bestStart, bestCount = start, count
		}
		if end == len(trimmed) {
			break
		}
	}

	end := bestStart + snippetWindow
	if end > len(trimmed) {
		end = len(trimmed)
	}
	snippet := emphasize(trimmed[bestStart:end], keywords)
	if bestStart > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(trimmed) {
		snippet += ellipsis
	}
	return snippet
}

// emphasize wraps each case-insensitive keyword occurrence with ** markers,
// preserving the original casing of the matched text.
func emphasize(text string, keywords []string) string {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(kw))
		if err != nil {
			continue
		}
		text = re.ReplaceAllString(text, "**$0**")
	}
	return text
}
