// internal/matching/scorer.go
package matching

import (
	"context"
	"strings"
	"time"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/profile"
	"pitchmatch-workers/internal/store"
)

// MaxAggregatedPitches bounds how many of a creator's published pitches feed
// the aggregated pseudo-profile for creator-side pair types.
const MaxAggregatedPitches = 10

// Scorer computes explainable compatibility scores between entity pairs.
// All reads go through the storage collaborator; the scorer itself holds no
// state between calls.
type Scorer struct {
	store    *store.Store
	profiles *profile.Service
	logger   logger.Logger
	now      func() time.Time
}

func NewScorer(st *store.Store, profiles *profile.Service, log logger.Logger) *Scorer {
	return &Scorer{
		store:    st,
		profiles: profiles,
		logger:   log.WithFields(map[string]interface{}{"component": "matching"}),
		now:      time.Now,
	}
}

// Score resolves the two entities and dispatches on the pair type. Reversed
// orderings (investor first, pitch second) normalize to the canonical pair.
// A syntactically valid but unrecognized pairing returns a neutral result
// instead of an error.
func (s *Scorer) Score(ctx context.Context, entity1, type1, entity2, type2 string) (*models.MatchResult, error) {
	id1, t1, id2, t2 := normalizePair(entity1, type1, entity2, type2)

	switch models.PairType(t1 + "-" + t2) {
	case models.PairPitchInvestor:
		return s.scorePitchInvestor(ctx, id1, id2)
	case models.PairCreatorInvestor:
		return s.scoreCreatorInvestor(ctx, id1, id2)
	case models.PairCreatorProduction:
		return s.scoreCreatorProduction(ctx, id1, id2)
	case models.PairPitchProduction:
		return s.scorePitchProduction(ctx, id1, id2)
	default:
		return genericResult(), nil
	}
}

// normalizePair flips reversed orderings so each supported pairing has one
// canonical form.
func normalizePair(id1, t1, id2, t2 string) (string, string, string, string) {
	t1 = strings.ToLower(strings.TrimSpace(t1))
	t2 = strings.ToLower(strings.TrimSpace(t2))
	rank := map[string]int{"pitch": 0, "creator": 1, "investor": 2, "production": 3}
	r1, ok1 := rank[t1]
	r2, ok2 := rank[t2]
	if ok1 && ok2 && r1 > r2 {
		return id2, t2, id1, t1
	}
	return id1, t1, id2, t2
}

func (s *Scorer) scorePitchInvestor(ctx context.Context, pitchID, investorID string) (*models.MatchResult, error) {
	pitch, err := s.store.GetPitch(ctx, pitchID)
	if err != nil {
		return nil, err
	}
	investor, err := s.store.GetParticipant(ctx, investorID)
	if err != nil {
		return nil, err
	}
	inv, err := s.profiles.InvestorProfile(ctx, investorID)
	if err != nil {
		return nil, err
	}

	var e explain
	breakdown := models.MatchBreakdown{
		ContentAlignment:    contentAlignmentPitch(pitch, inv, &e),
		BudgetCompatibility: budgetCompatibility(pitch.EstimatedBudget, inv, &e),
		AudienceOverlap:     audienceOverlap(pitch.TargetAudience, inv, &e),
		TrackRecordScore:    trackRecordFromProjects(inv.SuccessfulProjects, &e),
		TimingScore:         timingScore(pitch.PublishedAt, investor.LastActiveAt, s.now(), &e),
	}
	return s.finish(models.PairPitchInvestor, breakdown, &e), nil
}

func (s *Scorer) scoreCreatorInvestor(ctx context.Context, creatorID, investorID string) (*models.MatchResult, error) {
	if _, err := s.store.GetParticipant(ctx, creatorID); err != nil {
		return nil, err
	}
	agg, err := s.aggregateCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	inv, err := s.profiles.InvestorProfile(ctx, investorID)
	if err != nil {
		return nil, err
	}

	var e explain
	breakdown := models.MatchBreakdown{
		ContentAlignment:    contentAlignmentSets(agg.Genres, agg.Formats, agg.Themes, inv, &e),
		BudgetCompatibility: budgetCompatibility(agg.AvgBudget, inv, &e),
		AudienceOverlap:     neutralAudienceScore,
		TrackRecordScore:    trackRecordFromEngagement(agg.AvgEngagement, &e),
		TimingScore:         neutralTimingScore,
	}
	return s.finish(models.PairCreatorInvestor, breakdown, &e), nil
}

func (s *Scorer) scoreCreatorProduction(ctx context.Context, creatorID, productionID string) (*models.MatchResult, error) {
	if _, err := s.store.GetParticipant(ctx, creatorID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetParticipant(ctx, productionID); err != nil {
		return nil, err
	}
	agg, err := s.aggregateCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	var e explain
	breakdown := models.MatchBreakdown{
		ContentAlignment:    productionContent(agg.Genres, &e),
		BudgetCompatibility: productionBudget(agg.AvgBudget, &e),
		AudienceOverlap:     neutralAudienceScore,
		TrackRecordScore:    trackRecordFromEngagement(agg.AvgEngagement, &e),
		TimingScore:         neutralTimingScore,
	}
	return s.finish(models.PairCreatorProduction, breakdown, &e), nil
}

func (s *Scorer) scorePitchProduction(ctx context.Context, pitchID, productionID string) (*models.MatchResult, error) {
	pitch, err := s.store.GetPitch(ctx, pitchID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetParticipant(ctx, productionID); err != nil {
		return nil, err
	}

	var e explain
	engagement := float64(pitch.ViewCount + 10*pitch.NDACount)
	breakdown := models.MatchBreakdown{
		ContentAlignment:    productionContent([]string{pitch.Genre}, &e),
		BudgetCompatibility: productionBudget(pitch.EstimatedBudget, &e),
		AudienceOverlap:     neutralAudienceScore,
		TrackRecordScore:    trackRecordFromEngagement(engagement, &e),
		TimingScore:         neutralTimingScore,
	}
	return s.finish(models.PairPitchProduction, breakdown, &e), nil
}

func (s *Scorer) finish(pair models.PairType, breakdown models.MatchBreakdown, e *explain) *models.MatchResult {
	cfg := pairConfigs[pair]
	score := combine(breakdown, cfg.Weights)
	tier := tierFor(score, cfg.Tiers)

	result := &models.MatchResult{
		Score:          score,
		Breakdown:      breakdown,
		Strengths:      e.strengths,
		Considerations: e.considerations,
		Recommendation: tier,
		Explanation:    explanationFor(tier),
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Considerations == nil {
		result.Considerations = []string{}
	}

	s.logger.Debug("match scored", map[string]interface{}{
		"pairType": string(pair),
		"score":    score,
		"tier":     string(tier),
	})
	return result
}

func explanationFor(tier models.RecommendationTier) string {
	switch tier {
	case models.TierHighlyRecommended:
		return "Excellent fit across content, budget, and engagement signals."
	case models.TierRecommended:
		return "Good overall fit with a few gaps."
	case models.TierPossible:
		return "Partial fit; worth a closer look."
	default:
		return "Weak alignment on the signals that matter."
	}
}

func genericResult() *models.MatchResult {
	return &models.MatchResult{
		Score: neutralScore,
		Breakdown: models.MatchBreakdown{
			ContentAlignment:    neutralScore,
			BudgetCompatibility: neutralScore,
			AudienceOverlap:     neutralScore,
			TrackRecordScore:    neutralScore,
			TimingScore:         neutralScore,
		},
		Strengths:      []string{},
		Considerations: []string{},
		Recommendation: models.TierPossible,
		Explanation:    "More data needed to assess this match.",
	}
}

// creatorAggregate is the pseudo-pitch profile built from a creator's recent
// published pitches.
type creatorAggregate struct {
	Genres        []string
	Formats       []string
	Themes        []string
	AvgBudget     *float64
	AvgEngagement float64
	PitchCount    int
}

func (s *Scorer) aggregateCreator(ctx context.Context, creatorID string) (*creatorAggregate, error) {
	pitches, err := s.store.PublishedPitchesByCreator(ctx, creatorID, MaxAggregatedPitches)
	if err != nil {
		return nil, err
	}
	return aggregatePitches(pitches), nil
}

func aggregatePitches(pitches []*models.Pitch) *creatorAggregate {
	agg := &creatorAggregate{PitchCount: len(pitches)}
	if len(pitches) == 0 {
		return agg
	}

	genres := models.NewFreqTable()
	formats := models.NewFreqTable()
	themes := models.NewFreqTable()
	var budgetSum float64
	budgetCount := 0
	var engagementSum float64

	for _, p := range pitches {
		genres.Add(p.Genre)
		formats.Add(p.Format)
		for _, theme := range p.Themes {
			themes.Add(theme)
		}
		if p.EstimatedBudget != nil {
			budgetSum += *p.EstimatedBudget
			budgetCount++
		}
		engagementSum += float64(p.ViewCount + 10*p.NDACount)
	}

	agg.Genres = genres.Ranked()
	agg.Formats = formats.Ranked()
	agg.Themes = themes.Ranked()
	if budgetCount > 0 {
		avg := budgetSum / float64(budgetCount)
		agg.AvgBudget = &avg
	}
	agg.AvgEngagement = engagementSum / float64(len(pitches))
	return agg
}
