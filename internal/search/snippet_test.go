package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSnippetShortTextKeptWhole(t *testing.T) {
	got := buildSnippet("A heist goes sideways.", []string{"heist"})
	assert.Equal(t, "A **heist** goes sideways.", got)
}

func TestBuildSnippetEmptyText(t *testing.T) {
	assert.Equal(t, "", buildSnippet("", []string{"heist"}))
	assert.Equal(t, "", buildSnippet("   ", []string{"heist"}))
}

func TestBuildSnippetPicksDensestWindow(t *testing.T) {
	padding := strings.Repeat("filler text without matches. ", 10)
	text := padding + "The heist crew plans the heist of the century while the heist clock ticks." + padding

	got := buildSnippet(text, []string{"heist"})

	assert.Contains(t, got, "**heist**")
	assert.True(t, strings.HasPrefix(got, "..."), "interior window needs a leading ellipsis")
	assert.True(t, strings.HasSuffix(got, "..."), "interior window needs a trailing ellipsis")
	// The chosen window should hold more than one hit.
	assert.GreaterOrEqual(t, strings.Count(got, "**heist**"), 2)
}

func TestBuildSnippetPreservesOriginalCase(t *testing.T) {
	got := buildSnippet("Heist movies about a HEIST.", []string{"heist"})
	assert.Equal(t, "**Heist** movies about a **HEIST**.", got)
}

func TestBuildSnippetNoKeywords(t *testing.T) {
	text := strings.Repeat("a", 200)
	got := buildSnippet(text, nil)
	// First window wins when nothing scores; only the tail is elided.
	assert.Equal(t, strings.Repeat("a", 150)+"...", got)
}
