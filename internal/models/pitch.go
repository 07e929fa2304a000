// internal/models/pitch.go
package models

import "time"

type PitchStatus string

const (
	PitchStatusDraft     PitchStatus = "draft"
	PitchStatusPublished PitchStatus = "published"
	PitchStatusArchived  PitchStatus = "archived"
)

// Pitch is the read-only marketplace listing this subsystem scores and
// searches. Only published pitches are eligible for matching or search.
type Pitch struct {
	ID              string      `json:"id"`
	CreatorID       string      `json:"creatorId"`
	Title           string      `json:"title"`
	Logline         string      `json:"logline"`
	ShortSynopsis   string      `json:"shortSynopsis"`
	LongSynopsis    string      `json:"longSynopsis"`
	Genre           string      `json:"genre"`
	Format          string      `json:"format"`
	Themes          []string    `json:"themes"`
	EstimatedBudget *float64    `json:"estimatedBudget,omitempty"`
	TargetAudience  string      `json:"targetAudience,omitempty"`
	PublishedAt     *time.Time  `json:"publishedAt,omitempty"`
	ViewCount       int         `json:"viewCount"`
	LikeCount       int         `json:"likeCount"`
	NDACount        int         `json:"ndaCount"`
	Status          PitchStatus `json:"status"`
}

// BestSynopsis returns the richest available text field for snippeting.
func (p *Pitch) BestSynopsis() string {
	if p.LongSynopsis != "" {
		return p.LongSynopsis
	}
	if p.ShortSynopsis != "" {
		return p.ShortSynopsis
	}
	return p.Logline
}

// EngagementScore is the trending order key: views + 2*likes + 3*NDAs.
func (p *Pitch) EngagementScore() int {
	return p.ViewCount + 2*p.LikeCount + 3*p.NDACount
}
