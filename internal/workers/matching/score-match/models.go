// internal/workers/matching/score-match/models.go
package scorematch

import "pitchmatch-workers/internal/models"

type Input struct {
	Entity1ID   string `json:"entity1Id"`
	Entity1Type string `json:"entity1Type"`
	Entity2ID   string `json:"entity2Id"`
	Entity2Type string `json:"entity2Type"`
}

type Output struct {
	Score          int                       `json:"score"`
	Breakdown      models.MatchBreakdown     `json:"breakdown"`
	Strengths      []string                  `json:"strengths"`
	Considerations []string                  `json:"considerations"`
	Recommendation models.RecommendationTier `json:"recommendation"`
	Explanation    string                    `json:"explanation"`
}
