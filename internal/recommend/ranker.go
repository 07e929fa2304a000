// internal/recommend/ranker.go
package recommend

import (
	"context"
	"fmt"
	"sort"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/profile"
	"pitchmatch-workers/internal/store"
)

const (
	// DefaultCreatorLimit and DefaultInvestorLimit apply when the caller
	// does not request one.
	DefaultCreatorLimit  = 12
	DefaultInvestorLimit = 10

	// candidatePoolMultiplier oversizes the candidate pool relative to the
	// requested limit so exclusions and low scorers leave enough survivors.
	candidatePoolMultiplier = 3

	// activeWindowDays qualifies a counterpart as recently active.
	activeWindowDays = 90

	creatorBaseScore  = 50
	investorBaseScore = 65

	genreBonusPer  = 10
	genreBonusCap  = 30
	formatBonusPer = 8
	formatBonusCap = 16
	themeBonusPer  = 3
	themeBonusCap  = 15

	highViewsBonus     = 10
	highViewsFloor     = 1000
	ndaConversionBonus = 10
	ndaConversionFloor = 0.05
	prolificBonus      = 8
	prolificFloor      = 3

	// Collaborative filtering: sample up to coViewerSample viewers of the
	// candidate's content; a sampled viewer is "similar" when they share at
	// least similarSharedFloor viewed pitches with the requester, and the
	// bonus fires when the similar share of the sample exceeds
	// similarRatioFloor. The ratio threshold is fixed regardless of sample
	// size.
	coViewerSample     = 20
	similarSharedFloor = 3
	similarRatioFloor  = 0.3
	coViewerBonus      = 12

	recentPitchesPerCandidate = 5
)

// Recommendation is one ranked candidate with its explanation.
type Recommendation struct {
	ParticipantID string   `json:"participantId"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
}

// Ranker produces ranked candidate lists by combining content overlap with
// the requester's inferred profile, quality signals, and a collaborative
// filtering bonus.
type Ranker struct {
	store    *store.Store
	profiles *profile.Service
	logger   logger.Logger
}

func NewRanker(st *store.Store, profiles *profile.Service, log logger.Logger) *Ranker {
	return &Ranker{
		store:    st,
		profiles: profiles,
		logger:   log.WithFields(map[string]interface{}{"component": "recommend"}),
	}
}

// RecommendCreators ranks creators for a viewer. Viewers with no view
// history get the trending fallback instead of personalized scores.
func (r *Ranker) RecommendCreators(ctx context.Context, viewerID string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = DefaultCreatorLimit
	}

	prefs, err := r.profiles.ViewerPreferences(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if !prefs.HasHistory() {
		return r.trendingCreators(ctx, viewerID, limit)
	}

	followed, err := r.store.FollowedCreatorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	excluded := map[string]bool{viewerID: true}
	for _, id := range followed {
		excluded[id] = true
	}

	candidates, err := r.store.ActiveParticipantsByRole(ctx, models.RoleCreator, activeWindowDays, limit*candidatePoolMultiplier)
	if err != nil {
		return nil, err
	}

	pool := make([]*models.Participant, 0, len(candidates))
	poolIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if excluded[c.ID] {
			continue
		}
		pool = append(pool, c)
		poolIDs = append(poolIDs, c.ID)
	}

	pitchesByCreator, err := r.store.RecentPitchesByCreators(ctx, poolIDs, recentPitchesPerCandidate)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(pool))
	for _, candidate := range pool {
		rec, err := r.scoreCreator(ctx, viewerID, candidate, pitchesByCreator[candidate.ID], prefs)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	sortRecommendations(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	r.logger.Info("creators recommended", map[string]interface{}{
		"viewerId": viewerID,
		"count":    len(recs),
	})
	return recs, nil
}

func (r *Ranker) scoreCreator(ctx context.Context, viewerID string, candidate *models.Participant, pitches []*models.Pitch, prefs *models.ViewerPreferences) (Recommendation, error) {
	score := creatorBaseScore
	reasons := []string{}

	genres := map[string]bool{}
	formats := map[string]bool{}
	themes := map[string]bool{}
	totalViews, totalNDAs := 0, 0
	for _, p := range pitches {
		genres[p.Genre] = true
		formats[p.Format] = true
		for _, theme := range p.Themes {
			themes[theme] = true
		}
		totalViews += p.ViewCount
		totalNDAs += p.NDACount
	}

	if bonus, first := cappedOverlap(prefs.Genres, genres, genreBonusPer, genreBonusCap); bonus > 0 {
		score += bonus
		reasons = append(reasons, fmt.Sprintf("creates %s content you watch", first))
	}
	if bonus, _ := cappedOverlap(prefs.Formats, formats, formatBonusPer, formatBonusCap); bonus > 0 {
		score += bonus
		reasons = append(reasons, "works in your preferred formats")
	}
	if bonus, _ := cappedOverlap(prefs.Themes, themes, themeBonusPer, themeBonusCap); bonus > 0 {
		score += bonus
		reasons = append(reasons, "explores themes you follow")
	}

	if len(pitches) > 0 {
		avgViews := float64(totalViews) / float64(len(pitches))
		if avgViews > highViewsFloor {
			score += highViewsBonus
			reasons = append(reasons, "consistently high viewership")
		}
		if totalViews > 0 && float64(totalNDAs)/float64(totalViews) > ndaConversionFloor {
			score += ndaConversionBonus
			reasons = append(reasons, "strong NDA conversion")
		}
		if len(pitches) >= prolificFloor {
			score += prolificBonus
			reasons = append(reasons, "actively publishing")
		}
	}

	similar, err := r.coViewerBonusFor(ctx, candidate.ID, viewerID)
	if err != nil {
		return Recommendation{}, err
	}
	if similar {
		score += coViewerBonus
		reasons = append(reasons, "popular with users who share your taste")
	}

	if len(reasons) == 0 {
		if totalViews >= 100 {
			reasons = append(reasons, "trending creator")
		} else {
			reasons = append(reasons, "emerging talent")
		}
	}

	return Recommendation{
		ParticipantID: candidate.ID,
		Name:          candidate.Name,
		Role:          string(candidate.Role),
		Score:         score,
		Reasons:       reasons,
	}, nil
}

func (r *Ranker) coViewerBonusFor(ctx context.Context, creatorID, viewerID string) (bool, error) {
	shared, err := r.store.CoViewersOfCreator(ctx, creatorID, viewerID, coViewerSample)
	if err != nil {
		return false, err
	}
	if len(shared) == 0 {
		return false, nil
	}
	similar := 0
	for _, count := range shared {
		if count >= similarSharedFloor {
			similar++
		}
	}
	return float64(similar)/float64(len(shared)) > similarRatioFloor, nil
}

func (r *Ranker) trendingCreators(ctx context.Context, viewerID string, limit int) ([]Recommendation, error) {
	ids, err := r.store.TrendingCreators(ctx, limit+1)
	if err != nil {
		return nil, err
	}
	recs := make([]Recommendation, 0, limit)
	for _, id := range ids {
		if id == viewerID {
			continue
		}
		p, err := r.store.GetParticipant(ctx, id)
		if err != nil {
			if err == store.ErrParticipantNotFound {
				continue
			}
			return nil, err
		}
		recs = append(recs, Recommendation{
			ParticipantID: p.ID,
			Name:          p.Name,
			Role:          string(p.Role),
			Score:         creatorBaseScore,
			Reasons:       []string{"trending creator"},
		})
		if len(recs) == limit {
			break
		}
	}
	return recs, nil
}

// RecommendInvestors ranks investors for a creator, or for one pitch when a
// pitch id is given. The subject's own id never appears as a candidate.
func (r *Ranker) RecommendInvestors(ctx context.Context, creatorID, pitchID string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = DefaultInvestorLimit
	}

	var genres, formats, themes []string
	if pitchID != "" {
		pitch, err := r.store.GetPitch(ctx, pitchID)
		if err != nil {
			return nil, err
		}
		creatorID = pitch.CreatorID
		genres = []string{pitch.Genre}
		formats = []string{pitch.Format}
		themes = pitch.Themes
	} else {
		pitches, err := r.store.PublishedPitchesByCreator(ctx, creatorID, recentPitchesPerCandidate)
		if err != nil {
			return nil, err
		}
		g := models.NewFreqTable()
		f := models.NewFreqTable()
		th := models.NewFreqTable()
		for _, p := range pitches {
			g.Add(p.Genre)
			f.Add(p.Format)
			for _, theme := range p.Themes {
				th.Add(theme)
			}
		}
		genres, formats, themes = g.Ranked(), f.Ranked(), th.Ranked()
	}

	candidates, err := r.store.ActiveParticipantsByRole(ctx, models.RoleInvestor, activeWindowDays, limit*candidatePoolMultiplier)
	if err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == creatorID {
			continue
		}
		inv, err := r.profiles.InvestorProfile(ctx, candidate.ID)
		if err != nil {
			return nil, err
		}
		recs = append(recs, scoreInvestor(candidate, inv, genres, formats, themes))
	}

	sortRecommendations(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}
	r.logger.Info("investors recommended", map[string]interface{}{
		"creatorId": creatorID,
		"pitchId":   pitchID,
		"count":     len(recs),
	})
	return recs, nil
}

func scoreInvestor(candidate *models.Participant, inv *models.InferredProfile, genres, formats, themes []string) Recommendation {
	score := investorBaseScore
	reasons := []string{}

	prefGenres := toSet(append(append([]string{}, inv.PreferredGenres...), inv.SecondaryGenres...))
	if bonus, first := cappedOverlap(genres, prefGenres, genreBonusPer, genreBonusCap); bonus > 0 {
		score += bonus
		reasons = append(reasons, fmt.Sprintf("invests in %s projects", first))
	}
	if bonus, _ := cappedOverlap(formats, toSet(inv.PreferredFormats), formatBonusPer, formatBonusCap); bonus > 0 {
		score += bonus
		reasons = append(reasons, "backs your formats")
	}
	if bonus, _ := cappedOverlap(themes, toSet(inv.InterestedThemes), themeBonusPer, themeBonusCap); bonus > 0 {
		score += bonus
		reasons = append(reasons, "drawn to similar themes")
	}

	if inv.SuccessfulProjects >= prolificFloor {
		score += prolificBonus
		reasons = append(reasons, "track record of funded projects")
	}
	if inv.DaysSinceLastActivity < 7 {
		score += highViewsBonus
		reasons = append(reasons, "recently active")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "potential investor match")
	}

	return Recommendation{
		ParticipantID: candidate.ID,
		Name:          candidate.Name,
		Role:          string(candidate.Role),
		Score:         score,
		Reasons:       reasons,
	}
}

// cappedOverlap counts how many of wanted appear in have, applies the
// per-hit bonus up to the cap, and returns the first overlapping value for
// explanation text.
func cappedOverlap(wanted []string, have map[string]bool, per, ceiling int) (int, string) {
	bonus := 0
	first := ""
	for _, w := range wanted {
		if have[w] {
			if first == "" {
				first = w
			}
			bonus += per
		}
	}
	if bonus > ceiling {
		bonus = ceiling
	}
	return bonus, first
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ParticipantID < recs[j].ParticipantID
	})
}
