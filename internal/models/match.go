// internal/models/match.go
package models

// PairType identifies which two kinds of entities are being matched. It
// selects the weight vector and tier thresholds used by the scoring worker.
type PairType string

const (
	PairPitchInvestor     PairType = "pitch-investor"
	PairCreatorInvestor   PairType = "creator-investor"
	PairCreatorProduction PairType = "creator-production"
	PairPitchProduction   PairType = "pitch-production"
)

type RecommendationTier string

const (
	TierHighlyRecommended RecommendationTier = "highly_recommended"
	TierRecommended       RecommendationTier = "recommended"
	TierPossible          RecommendationTier = "possible"
	TierUnlikely          RecommendationTier = "unlikely"
)

// MatchBreakdown holds the five named sub-scores, each in [0,100].
type MatchBreakdown struct {
	ContentAlignment    int `json:"contentAlignment"`
	BudgetCompatibility int `json:"budgetCompatibility"`
	AudienceOverlap     int `json:"audienceOverlap"`
	TrackRecordScore    int `json:"trackRecordScore"`
	TimingScore         int `json:"timingScore"`
}

// MatchResult is an ephemeral computation output, never persisted here.
type MatchResult struct {
	Score          int                `json:"score"`
	Breakdown      MatchBreakdown     `json:"breakdown"`
	Strengths      []string           `json:"strengths"`
	Considerations []string           `json:"considerations"`
	Recommendation RecommendationTier `json:"recommendation"`
	Explanation    string             `json:"explanation"`
}

// InferredProfile is the ephemeral per-request preference profile derived
// from behavioral history. It is computed, not stored.
type InferredProfile struct {
	PreferredGenres       []string `json:"preferredGenres"`
	SecondaryGenres       []string `json:"secondaryGenres"`
	PreferredFormats      []string `json:"preferredFormats"`
	InterestedThemes      []string `json:"interestedThemes"`
	BudgetMin             float64  `json:"budgetMin"`
	BudgetMax             float64  `json:"budgetMax"`
	SuccessfulProjects    int      `json:"successfulProjects"`
	DaysSinceLastActivity int      `json:"daysSinceLastActivity"`
}

// DefaultInvestorProfile is the documented cold-start profile returned
// verbatim for investors with no NDA history.
func DefaultInvestorProfile() *InferredProfile {
	return &InferredProfile{
		PreferredGenres:       []string{"drama", "thriller", "scifi"},
		SecondaryGenres:       []string{},
		PreferredFormats:      []string{"feature", "tv"},
		InterestedThemes:      []string{},
		BudgetMin:             5_000_000,
		BudgetMax:             50_000_000,
		SuccessfulProjects:    0,
		DaysSinceLastActivity: 30,
	}
}

// HasGenre reports whether g is one of the profile's preferred genres.
func (p *InferredProfile) HasGenre(g string) bool {
	for _, pg := range p.PreferredGenres {
		if pg == g {
			return true
		}
	}
	return false
}

// HasSecondaryGenre reports whether g is one of the secondary genres.
func (p *InferredProfile) HasSecondaryGenre(g string) bool {
	for _, sg := range p.SecondaryGenres {
		if sg == g {
			return true
		}
	}
	return false
}

// HasFormat reports whether f is one of the preferred formats.
func (p *InferredProfile) HasFormat(f string) bool {
	for _, pf := range p.PreferredFormats {
		if pf == f {
			return true
		}
	}
	return false
}

// ViewerPreferences is the creator-side behavioral profile used for
// creator-to-creator recommendations. An empty profile is valid and means
// "no signal"; callers fall back to trending content. Genre and format
// slices are ranked by view frequency, first-seen order on ties.
type ViewerPreferences struct {
	Genres      []string `json:"genres"`
	Formats     []string `json:"formats"`
	Themes      []string `json:"themes"`
	ViewedPitch []string `json:"viewedPitchIds"`
	NDACount    int      `json:"ndaCount"`
}

// HasHistory reports whether the viewer produced any usable signal.
func (v *ViewerPreferences) HasHistory() bool {
	return v != nil && len(v.ViewedPitch) > 0
}
