// internal/store/events.go
package store

import (
	"context"
	"database/sql"

	"pitchmatch-workers/internal/models"
)

// GrantedNDAsBySigner returns the signer's granted NDA history, newest first.
func (s *Store) GrantedNDAsBySigner(ctx context.Context, signerID string, limit int) ([]*models.NDAGrant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.signer_id, n.pitch_id, n.granted, n.signed_at
		FROM nda_grants n
		WHERE n.signer_id = $1 AND n.granted = TRUE
		ORDER BY n.signed_at DESC, n.pitch_id
		LIMIT $2`, signerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*models.NDAGrant
	for rows.Next() {
		var g models.NDAGrant
		var signedAt sql.NullTime
		if err := rows.Scan(&g.SignerID, &g.PitchID, &g.Granted, &signedAt); err != nil {
			return nil, err
		}
		if signedAt.Valid {
			t := signedAt.Time
			g.SignedAt = &t
		}
		grants = append(grants, &g)
	}
	return grants, rows.Err()
}

func (s *Store) NDACountBySigner(ctx context.Context, signerID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM nda_grants n
		WHERE n.signer_id = $1 AND n.granted = TRUE`, signerID).Scan(&count)
	return count, err
}

// ViewEventsByViewer returns the viewer's recent view history, newest first.
func (s *Store) ViewEventsByViewer(ctx context.Context, viewerID string, limit int) ([]*models.ViewEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.viewer_id, v.pitch_id, v.viewed_at
		FROM pitch_views v
		WHERE v.viewer_id = $1
		ORDER BY v.viewed_at DESC, v.pitch_id
		LIMIT $2`, viewerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.ViewEvent
	for rows.Next() {
		var v models.ViewEvent
		if err := rows.Scan(&v.ViewerID, &v.PitchID, &v.ViewedAt); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}

func (s *Store) FollowedCreatorIDs(ctx context.Context, followerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.creator_id
		FROM follows f
		WHERE f.follower_id = $1`, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CoViewersOfCreator samples up to sampleSize viewers of the creator's
// pitches and reports, per sampled viewer, how many of the requester's
// viewed pitches they also viewed. Sampled viewers with no overlap still
// appear with a zero count so callers can compute a ratio over the whole
// sample.
func (s *Store) CoViewersOfCreator(ctx context.Context, creatorID, viewerID string, sampleSize int) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH mine AS (
			SELECT DISTINCT pitch_id FROM pitch_views WHERE viewer_id = $1
		),
		sampled AS (
			SELECT DISTINCT v.viewer_id
			FROM pitch_views v
			JOIN pitches p ON p.id = v.pitch_id
			WHERE p.creator_id = $2 AND v.viewer_id <> $1
			LIMIT $3
		)
		SELECT s.viewer_id, COUNT(DISTINCT v.pitch_id)
		FROM sampled s
		LEFT JOIN pitch_views v
			ON v.viewer_id = s.viewer_id
			AND v.pitch_id IN (SELECT pitch_id FROM mine)
		GROUP BY s.viewer_id`, viewerID, creatorID, sampleSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shared := make(map[string]int)
	for rows.Next() {
		var coViewer string
		var count int
		if err := rows.Scan(&coViewer, &count); err != nil {
			return nil, err
		}
		shared[coViewer] = count
	}
	return shared, rows.Err()
}
