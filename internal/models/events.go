// internal/models/events.go
package models

import "time"

// NDAGrant links a signer to a pitch. A granted NDA is the strongest
// behavioral signal of genuine interest, stronger than a view.
type NDAGrant struct {
	SignerID string     `json:"signerId"`
	PitchID  string     `json:"pitchId"`
	Granted  bool       `json:"granted"`
	SignedAt *time.Time `json:"signedAt,omitempty"`
}

// ViewEvent links a viewer to a pitch. Weak behavioral signal.
type ViewEvent struct {
	ViewerID string    `json:"viewerId"`
	PitchID  string    `json:"pitchId"`
	ViewedAt time.Time `json:"viewedAt"`
}

// FollowEdge carries no score semantics; it is used only to exclude
// already-followed creators from recommendation candidate pools.
type FollowEdge struct {
	FollowerID string `json:"followerId"`
	CreatorID  string `json:"creatorId"`
}
