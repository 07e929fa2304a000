// internal/workers/matching/recommend-creators/models.go
package recommendcreators

import "pitchmatch-workers/internal/recommend"

type Input struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit,omitempty"`
}

type Output struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}
