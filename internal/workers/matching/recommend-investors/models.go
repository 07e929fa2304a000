// internal/workers/matching/recommend-investors/models.go
package recommendinvestors

import "pitchmatch-workers/internal/recommend"

type Input struct {
	CreatorID string `json:"creatorId,omitempty"`
	PitchID   string `json:"pitchId,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type Output struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}
