// internal/matching/pairs.go
package matching

import "pitchmatch-workers/internal/models"

// Weights is the per-pair-type weight vector over the five sub-scores.
// Each vector sums to 1.0; the values are heuristic and tunable but they are
// the observable contract of the scorer, so change them deliberately.
type Weights struct {
	ContentAlignment    float64
	BudgetCompatibility float64
	AudienceOverlap     float64
	TrackRecordScore    float64
	TimingScore         float64
}

// TierCutoffs maps a final score onto a recommendation tier. Thresholds are
// checked top down; scores below Possible fall to unlikely.
type TierCutoffs struct {
	HighlyRecommended int
	Recommended       int
	Possible          int
}

type PairConfig struct {
	Weights Weights
	Tiers   TierCutoffs
}

// pairConfigs holds the scoring contract per pair type.
var pairConfigs = map[models.PairType]PairConfig{
	models.PairPitchInvestor: {
		Weights: Weights{0.35, 0.25, 0.15, 0.15, 0.10},
		Tiers:   TierCutoffs{HighlyRecommended: 80, Recommended: 65, Possible: 50},
	},
	models.PairCreatorInvestor: {
		Weights: Weights{0.40, 0.25, 0.10, 0.15, 0.10},
		Tiers:   TierCutoffs{HighlyRecommended: 75, Recommended: 60, Possible: 45},
	},
	// Production pairs use a flattened vector; their breakdowns are mostly
	// fixed bands so no single factor should dominate.
	models.PairCreatorProduction: {
		Weights: Weights{0.20, 0.20, 0.20, 0.20, 0.20},
		Tiers:   TierCutoffs{HighlyRecommended: 101, Recommended: 70, Possible: 0},
	},
	models.PairPitchProduction: {
		Weights: Weights{0.20, 0.20, 0.20, 0.20, 0.20},
		Tiers:   TierCutoffs{HighlyRecommended: 101, Recommended: 65, Possible: 0},
	},
}

const (
	// Bonus constants for content alignment.
	genrePreferredBonus  = 40
	genreSecondaryBonus  = 25
	genreMissBonus       = 10
	formatPreferredBonus = 30
	formatMissBonus      = 15
	themeOverlapBonus    = 30

	// Budget compatibility bands.
	budgetInRangeScore  = 100
	budgetNearScore     = 60
	budgetFarScore      = 30
	budgetUnknownScore  = 50
	budgetFarLowFactor  = 0.7
	budgetFarHighFactor = 1.5

	// Fixed neutral sub-scores for pair types that do not model a factor.
	neutralAudienceScore = 60
	neutralTimingScore   = 70
	neutralScore         = 50

	// Production-company content/budget bands.
	heatGenreScore       = 85
	offHeatGenreScore    = 55
	productionBudgetCap  = 20_000_000
	productionBudgetFit  = 90
	productionBudgetMiss = 45

	// Track record scaling.
	projectsPerPoint   = 5
	engagementDivisor  = 20
	trackRecordCeiling = 100
)

// heatGenres are the genres production companies chase hardest.
var heatGenres = map[string]bool{
	"thriller": true,
	"drama":    true,
	"scifi":    true,
}

func tierFor(score int, tiers TierCutoffs) models.RecommendationTier {
	switch {
	case score >= tiers.HighlyRecommended:
		return models.TierHighlyRecommended
	case score >= tiers.Recommended:
		return models.TierRecommended
	case score >= tiers.Possible:
		return models.TierPossible
	default:
		return models.TierUnlikely
	}
}

func combine(b models.MatchBreakdown, w Weights) int {
	score := float64(b.ContentAlignment)*w.ContentAlignment +
		float64(b.BudgetCompatibility)*w.BudgetCompatibility +
		float64(b.AudienceOverlap)*w.AudienceOverlap +
		float64(b.TrackRecordScore)*w.TrackRecordScore +
		float64(b.TimingScore)*w.TimingScore
	return clamp(int(score + 0.5))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
