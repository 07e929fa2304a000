// internal/store/participants.go
package store

import (
	"context"
	"database/sql"

	"pitchmatch-workers/internal/models"
)

func (s *Store) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	var p models.Participant
	var company sql.NullString
	var lastActive sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, name, company_name, last_active_at, created_at
		FROM participants
		WHERE id = $1`, participantID).Scan(
		&p.ID, &p.Role, &p.Name, &company, &lastActive, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CompanyName = company.String
	if lastActive.Valid {
		t := lastActive.Time
		p.LastActiveAt = &t
	}
	return &p, nil
}

// ActiveParticipantsByRole lists participants of one role active within the
// last activeDays days, most recently active first. Participants with no
// recorded activity are excluded.
func (s *Store) ActiveParticipantsByRole(ctx context.Context, role models.Role, activeDays, limit int) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, name, company_name, last_active_at, created_at
		FROM participants
		WHERE role = $1
		  AND last_active_at >= NOW() - ($2 || ' days')::interval
		ORDER BY last_active_at DESC, id
		LIMIT $3`, string(role), activeDays, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		var p models.Participant
		var company sql.NullString
		var lastActive sql.NullTime
		if err := rows.Scan(&p.ID, &p.Role, &p.Name, &company, &lastActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CompanyName = company.String
		if lastActive.Valid {
			t := lastActive.Time
			p.LastActiveAt = &t
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// TrendingCreators aggregates engagement over each creator's published
// pitches and returns the busiest creators first.
func (s *Store) TrendingCreators(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.creator_id
		FROM pitches p
		WHERE p.status = 'published'
		GROUP BY p.creator_id
		ORDER BY SUM(p.view_count + 2*p.like_count + 3*p.nda_count) DESC, p.creator_id
		LIMIT $1`, limit)
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
