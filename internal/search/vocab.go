// internal/search/vocab.go
package search

// Fixed vocabularies for rule-based query understanding. All matching is
// case-insensitive against the lowered query text; there is no external NLP
// dependency.

// intentRule ties an intent to its trigger phrases. Rules are scanned in
// slice order and the first phrase hit wins.
type intentRule struct {
	intent  string
	phrases []string
}

var intentRules = []intentRule{
	{"find", []string{"find", "show me", "looking for", "search for", "i want", "get me"}},
	{"similar", []string{"similar to", "like this", "more like", "comparable to"}},
	{"trending", []string{"trending", "popular", "hot right now", "buzzing", "most viewed"}},
	{"recent", []string{"recent", "new release", "latest", "just published", "fresh"}},
	{"specific", []string{"titled", "called", "named", "by creator"}},
}

// canonicalGenres is the closed genre tag set.
var canonicalGenres = []string{
	"drama", "comedy", "thriller", "horror", "scifi", "fantasy",
	"documentary", "animation", "action", "romance", "mystery",
	"western", "crime", "adventure", "musical", "biography",
}

// genreSynonyms normalize spelling variants onto canonical tags.
var genreSynonyms = map[string]string{
	"sci-fi":          "scifi",
	"sci fi":          "scifi",
	"science fiction": "scifi",
	"rom-com":         "romance",
	"romantic comedy": "romance",
	"biopic":          "biography",
	"doc":             "documentary",
	"whodunit":        "mystery",
}

var canonicalFormats = []string{"feature", "tv", "short", "webseries"}

var formatSynonyms = map[string]string{
	"feature film": "feature",
	"film":         "feature",
	"movie":        "feature",
	"tv series":    "tv",
	"tv show":      "tv",
	"television":   "tv",
	"series":       "tv",
	"miniseries":   "tv",
	"short film":   "short",
	"web series":   "webseries",
}

var canonicalThemes = []string{
	"revenge", "redemption", "family", "love", "survival", "betrayal",
	"justice", "identity", "power", "friendship", "coming of age",
	"technology", "faith", "freedom", "sacrifice", "corruption", "conspiracy",
}

// conceptKeywords maps a higher-level concept tag to trigger keywords. A
// concept is emitted when any trigger appears in the lowered query.
var conceptKeywords = map[string][]string{
	"psychological": {"psychological", "mind", "psyche", "obsession", "madness", "paranoia"},
	"romantic":      {"romance", "romantic", "love story", "relationship", "wedding"},
	"futuristic":    {"future", "futuristic", "cyberpunk", "dystopian", "space", "robot"},
	"historical":    {"historical", "history", "period piece", "medieval", "victorian", "ancient"},
	"supernatural":  {"supernatural", "ghost", "haunted", "demon", "paranormal", "occult"},
	"technological": {"technology", "tech", "hacker", "artificial intelligence", "startup", "cyber"},
	"environmental": {"climate", "environment", "nature", "wildlife", "ocean", "pollution"},
	"political":     {"political", "politics", "election", "government", "corruption", "regime"},
	"medical":       {"medical", "hospital", "doctor", "pandemic", "disease", "surgeon"},
	"legal":         {"legal", "courtroom", "lawyer", "trial", "verdict", "lawsuit"},
}

// conceptOrder fixes emission order so parses are deterministic.
var conceptOrder = []string{
	"psychological", "romantic", "futuristic", "historical", "supernatural",
	"technological", "environmental", "political", "medical", "legal",
}

// stopWords are dropped during keyword extraction, alongside any token of
// two characters or fewer.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "about": true,
	"that": true, "this": true, "from": true, "are": true, "was": true,
	"what": true, "which": true, "who": true, "how": true, "all": true,
	"any": true, "can": true, "has": true, "have": true, "had": true,
	"not": true, "but": true, "his": true, "her": true, "its": true,
	"they": true, "them": true, "will": true, "would": true, "there": true,
	"their": true, "under": true, "over": true, "between": true,
	"less": true, "more": true, "than": true, "budget": true,
	"find": true, "show": true, "looking": true, "search": true,
	"want": true, "get": true, "some": true, "like": true, "new": true,
	"recent": true, "latest": true, "trending": true, "popular": true,
}

var temporalPhrases = []struct {
	phrase string
	window string
}{
	{"this week", "week"},
	{"past week", "week"},
	{"last week", "week"},
	{"this month", "month"},
	{"past month", "month"},
	{"last month", "month"},
	{"this quarter", "quarter"},
	{"past quarter", "quarter"},
	{"last quarter", "quarter"},
	{"past 3 months", "quarter"},
	{"this year", "year"},
	{"past year", "year"},
	{"last year", "year"},
	// Generic recency language falls back to a month window.
	{"recent", "month"},
	{"new", "month"},
	{"latest", "month"},
}
