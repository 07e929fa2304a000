// internal/profile/service.go
package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/store"
)

const (
	// HistoryLimit bounds how much behavioral history feeds inference.
	HistoryLimit = 100

	// MaxThemes caps the distinct themes kept on an investor profile.
	MaxThemes = 10

	investorCachePrefix = "profile:investor:"
	viewerCachePrefix   = "profile:viewer:"
)

// Service derives ephemeral preference profiles from behavioral history.
// Output is re-derivable from the same storage state; redis only memoizes
// the derivation, it is never the source of truth.
type Service struct {
	store    *store.Store
	redis    *redis.Client
	logger   logger.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

func NewService(st *store.Store, rdb *redis.Client, log logger.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		store:    st,
		redis:    rdb,
		logger:   log.WithFields(map[string]interface{}{"component": "profile"}),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// InvestorProfile infers what an investor looks for from their granted NDA
// history. Investors with no history get the documented default profile
// verbatim.
func (s *Service) InvestorProfile(ctx context.Context, investorID string) (*models.InferredProfile, error) {
	cacheKey := investorCachePrefix + investorID
	if cached := s.getCached(ctx, cacheKey); cached != nil {
		var profile models.InferredProfile
		if err := json.Unmarshal(cached, &profile); err == nil {
			return &profile, nil
		}
	}

	grants, err := s.store.GrantedNDAsBySigner(ctx, investorID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return models.DefaultInvestorProfile(), nil
	}

	pitchIDs := make([]string, 0, len(grants))
	for _, g := range grants {
		pitchIDs = append(pitchIDs, g.PitchID)
	}
	pitches, err := s.store.PitchesByIDs(ctx, pitchIDs)
	if err != nil {
		return nil, err
	}

	genres := models.NewFreqTable()
	formats := models.NewFreqTable()
	themes := []string{}
	seenThemes := map[string]bool{}
	var budgetMin, budgetMax float64
	budgetSeen := false

	for _, p := range pitches {
		genres.Add(p.Genre)
		formats.Add(p.Format)
		for _, theme := range p.Themes {
			if len(themes) >= MaxThemes {
				break
			}
			if !seenThemes[theme] {
				seenThemes[theme] = true
				themes = append(themes, theme)
			}
		}
		if p.EstimatedBudget != nil {
			if !budgetSeen || *p.EstimatedBudget < budgetMin {
				budgetMin = *p.EstimatedBudget
			}
			if !budgetSeen || *p.EstimatedBudget > budgetMax {
				budgetMax = *p.EstimatedBudget
			}
			budgetSeen = true
		}
	}
	if !budgetSeen {
		budgetMin, budgetMax = 5_000_000, 50_000_000
	}

	ranked := genres.Ranked()
	profile := &models.InferredProfile{
		PreferredGenres:       sliceRange(ranked, 0, 3),
		SecondaryGenres:       sliceRange(ranked, 3, 5),
		PreferredFormats:      formats.Top(2),
		InterestedThemes:      themes,
		BudgetMin:             budgetMin,
		BudgetMax:             budgetMax,
		SuccessfulProjects:    len(pitches),
		DaysSinceLastActivity: s.daysSince(grants[0].SignedAt),
	}

	s.setCached(ctx, cacheKey, profile)
	return profile, nil
}

// ViewerPreferences infers a viewer's taste from their view history. There
// is no cold-start default; an empty profile means "no signal" and callers
// fall back to trending content.
func (s *Service) ViewerPreferences(ctx context.Context, viewerID string) (*models.ViewerPreferences, error) {
	cacheKey := viewerCachePrefix + viewerID
	if cached := s.getCached(ctx, cacheKey); cached != nil {
		var prefs models.ViewerPreferences
		if err := json.Unmarshal(cached, &prefs); err == nil {
			return &prefs, nil
		}
	}

	views, err := s.store.ViewEventsByViewer(ctx, viewerID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return &models.ViewerPreferences{
			Genres:      []string{},
			Formats:     []string{},
			Themes:      []string{},
			ViewedPitch: []string{},
		}, nil
	}

	pitchIDs := make([]string, 0, len(views))
	seen := map[string]bool{}
	for _, v := range views {
		if !seen[v.PitchID] {
			seen[v.PitchID] = true
			pitchIDs = append(pitchIDs, v.PitchID)
		}
	}
	pitches, err := s.store.PitchesByIDs(ctx, pitchIDs)
	if err != nil {
		return nil, err
	}

	genres := models.NewFreqTable()
	formats := models.NewFreqTable()
	themes := models.NewFreqTable()
	for _, p := range pitches {
		genres.Add(p.Genre)
		formats.Add(p.Format)
		for _, theme := range p.Themes {
			themes.Add(theme)
		}
	}

	ndaCount, err := s.store.NDACountBySigner(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	prefs := &models.ViewerPreferences{
		Genres:      genres.Ranked(),
		Formats:     formats.Ranked(),
		Themes:      themes.Ranked(),
		ViewedPitch: pitchIDs,
		NDACount:    ndaCount,
	}

	s.setCached(ctx, cacheKey, prefs)
	return prefs, nil
}

func (s *Service) daysSince(t *time.Time) int {
	if t == nil {
		return 30
	}
	days := int(s.now().Sub(*t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func (s *Service) getCached(ctx context.Context, key string) []byte {
	if s.redis == nil {
		return nil
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	return []byte(val)
}

func (s *Service) setCached(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("profile cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

func sliceRange(items []string, from, to int) []string {
	if from > len(items) {
		from = len(items)
	}
	if to > len(items) {
		to = len(items)
	}
	out := make([]string, to-from)
	copy(out, items[from:to])
	return out
}
