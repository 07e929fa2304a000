// internal/matching/subscores.go
package matching

import (
	"strings"
	"time"

	"pitchmatch-workers/internal/models"
)

// explain collects the human-readable strings emitted when a sub-score
// crosses a documented threshold. Order of appends is the order of
// computation, so explanations are reproducible from the same inputs.
type explain struct {
	strengths      []string
	considerations []string
}

func (e *explain) strength(msg string) {
	e.strengths = append(e.strengths, msg)
}

func (e *explain) consideration(msg string) {
	e.considerations = append(e.considerations, msg)
}

func contentAlignmentPitch(p *models.Pitch, inv *models.InferredProfile, e *explain) int {
	score := 0
	switch {
	case inv.HasGenre(p.Genre):
		score += genrePreferredBonus
		e.strength("Strong genre match")
	case inv.HasSecondaryGenre(p.Genre):
		score += genreSecondaryBonus
	default:
		score += genreMissBonus
		e.consideration("Genre outside typical interests")
	}

	if inv.HasFormat(p.Format) {
		score += formatPreferredBonus
	} else {
		score += formatMissBonus
	}

	if anyOverlap(p.Themes, inv.InterestedThemes) {
		score += themeOverlapBonus
		e.strength("Shared thematic interests")
	}
	return clamp(score)
}

// contentAlignmentSets scores a creator's aggregated genre/format/theme sets
// against an investor profile. Any overlap counts the same as a direct hit.
func contentAlignmentSets(genres, formats, themes []string, inv *models.InferredProfile, e *explain) int {
	score := 0
	switch {
	case anyOverlap(genres, inv.PreferredGenres):
		score += genrePreferredBonus
		e.strength("Strong genre match")
	case anyOverlap(genres, inv.SecondaryGenres):
		score += genreSecondaryBonus
	default:
		score += genreMissBonus
		e.consideration("Genre outside typical interests")
	}

	if anyOverlap(formats, inv.PreferredFormats) {
		score += formatPreferredBonus
	} else {
		score += formatMissBonus
	}

	if anyOverlap(themes, inv.InterestedThemes) {
		score += themeOverlapBonus
		e.strength("Shared thematic interests")
	}
	return clamp(score)
}

func budgetCompatibility(budget *float64, inv *models.InferredProfile, e *explain) int {
	if budget == nil {
		e.consideration("Budget not specified")
		return budgetUnknownScore
	}
	b := *budget
	switch {
	case b >= inv.BudgetMin && b <= inv.BudgetMax:
		e.strength("Budget within typical investment range")
		return budgetInRangeScore
	case b < inv.BudgetMin*budgetFarLowFactor || b > inv.BudgetMax*budgetFarHighFactor:
		e.consideration("Budget outside typical investment range")
		return budgetFarScore
	default:
		return budgetNearScore
	}
}

// ageRangeTokens are the standard demographic brackets recognized in
// target-audience text.
var ageRangeTokens = []string{"18-24", "25-34", "35-44", "45-54", "55+"}

// audienceOverlap is a coarse text heuristic: the pitch's free-text audience
// description is tokenized and checked against the investor's genre and
// theme tags, with a bonus per recognized age bracket.
func audienceOverlap(audience string, inv *models.InferredProfile, e *explain) int {
	if strings.TrimSpace(audience) == "" {
		return neutralScore
	}
	lowered := strings.ToLower(audience)

	score := 40
	tags := append(append([]string{}, inv.PreferredGenres...), inv.InterestedThemes...)
	for _, tag := range tags {
		if tag != "" && strings.Contains(lowered, strings.ToLower(tag)) {
			score += 15
		}
	}
	for _, bracket := range ageRangeTokens {
		if strings.Contains(lowered, bracket) {
			score += 10
		}
	}
	score = clamp(score)
	if score >= 70 {
		e.strength("Strong audience overlap")
	}
	return score
}

func trackRecordFromProjects(projects int, e *explain) int {
	score := projects * projectsPerPoint
	if score > trackRecordCeiling {
		score = trackRecordCeiling
	}
	if score >= 75 {
		e.strength("Proven track record")
	} else if score <= 25 {
		e.consideration("Limited track record")
	}
	return score
}

// trackRecordFromEngagement converts average per-pitch engagement
// (views + 10 per NDA grant) into a track-record band.
func trackRecordFromEngagement(avgEngagement float64, e *explain) int {
	score := clamp(int(avgEngagement / engagementDivisor))
	if score >= 75 {
		e.strength("Strong audience engagement")
	} else if score <= 25 {
		e.consideration("Limited engagement so far")
	}
	return score
}

func timingScore(publishedAt, lastActive *time.Time, now time.Time, e *explain) int {
	pitchAge := ageDays(publishedAt, now)
	activityAge := ageDays(lastActive, now)
	switch {
	case pitchAge < 30 && activityAge < 7:
		e.strength("Both parties recently active")
		return 100
	case pitchAge < 90 && activityAge < 30:
		return 70
	default:
		e.consideration("Activity timing misaligned")
		return 40
	}
}

// ageDays treats a missing timestamp as stale rather than fresh.
func ageDays(t *time.Time, now time.Time) int {
	if t == nil {
		return 1 << 20
	}
	days := int(now.Sub(*t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func productionContent(genres []string, e *explain) int {
	for _, g := range genres {
		if heatGenres[strings.ToLower(g)] {
			e.strength("In-demand genre for production slates")
			return heatGenreScore
		}
	}
	return offHeatGenreScore
}

func productionBudget(budget *float64, e *explain) int {
	if budget == nil {
		return budgetNearScore
	}
	if *budget < productionBudgetCap {
		e.strength("Budget within production sweet spot")
		return productionBudgetFit
	}
	e.consideration("Budget above typical production appetite")
	return productionBudgetMiss
}

func anyOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[strings.ToLower(v)] = true
	}
	for _, v := range a {
		if set[strings.ToLower(v)] {
			return true
		}
	}
	return false
}
