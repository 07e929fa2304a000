// internal/store/pitches.go
package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"pitchmatch-workers/internal/models"
)

const pitchColumns = `
	p.id, p.creator_id, p.title, p.logline, p.short_synopsis, p.long_synopsis,
	p.genre, p.format, p.themes, p.estimated_budget, p.target_audience,
	p.published_at, p.view_count, p.like_count, p.nda_count, p.status`

func scanPitch(row interface{ Scan(...interface{}) error }) (*models.Pitch, error) {
	var p models.Pitch
	var themes []byte
	var budget sql.NullFloat64
	var publishedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.CreatorID, &p.Title, &p.Logline, &p.ShortSynopsis, &p.LongSynopsis,
		&p.Genre, &p.Format, &themes, &budget, &p.TargetAudience,
		&publishedAt, &p.ViewCount, &p.LikeCount, &p.NDACount, &p.Status,
	)
	if err != nil {
		return nil, err
	}
	p.Themes = decodeStrings(themes)
	p.EstimatedBudget = nullableFloat(budget)
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func (s *Store) GetPitch(ctx context.Context, pitchID string) (*models.Pitch, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+pitchColumns+`
		FROM pitches p
		WHERE p.id = $1`, pitchID)
	p, err := scanPitch(row)
	if err == sql.ErrNoRows {
		return nil, ErrPitchNotFound
	}
	if err != nil {
		return nil, err
	}
	// Only published pitches are eligible for matching and search; drafts
	// and archived pitches resolve the same as a missing pitch.
	if p.Status != models.PitchStatusPublished {
		return nil, ErrPitchNotFound
	}
	return p, nil
}

func (s *Store) collectPitches(rows *sql.Rows) ([]*models.Pitch, error) {
	defer rows.Close()
	var pitches []*models.Pitch
	for rows.Next() {
		p, err := scanPitch(rows)
		if err != nil {
			return nil, err
		}
		pitches = append(pitches, p)
	}
	return pitches, rows.Err()
}

func (s *Store) PitchesByIDs(ctx context.Context, ids []string) ([]*models.Pitch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+pitchColumns+`
		FROM pitches p
		WHERE p.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return s.collectPitches(rows)
}

// PublishedPitchesByCreator returns the creator's published pitches,
// newest first.
func (s *Store) PublishedPitchesByCreator(ctx context.Context, creatorID string, limit int) ([]*models.Pitch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+pitchColumns+`
		FROM pitches p
		WHERE p.creator_id = $1 AND p.status = 'published'
		ORDER BY p.published_at DESC NULLS LAST, p.id
		LIMIT $2`, creatorID, limit)
	if err != nil {
		return nil, err
	}
	return s.collectPitches(rows)
}

// RecentPitchesByCreators returns up to perCreator published pitches for each
// creator in one round trip, newest first within each creator.
func (s *Store) RecentPitchesByCreators(ctx context.Context, creatorIDs []string, perCreator int) (map[string][]*models.Pitch, error) {
	if len(creatorIDs) == 0 {
		return map[string][]*models.Pitch{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, creator_id, title, logline, short_synopsis, long_synopsis,
		       genre, format, themes, estimated_budget, target_audience,
		       published_at, view_count, like_count, nda_count, status
		FROM (
			SELECT p.*, ROW_NUMBER() OVER (
				PARTITION BY p.creator_id
				ORDER BY p.published_at DESC NULLS LAST, p.id
			) AS rn
			FROM pitches p
			WHERE p.creator_id = ANY($1) AND p.status = 'published'
		) ranked
		WHERE rn <= $2`, pq.Array(creatorIDs), perCreator)
	if err != nil {
		return nil, err
	}
	pitches, err := s.collectPitches(rows)
	if err != nil {
		return nil, err
	}
	byCreator := make(map[string][]*models.Pitch, len(creatorIDs))
	for _, p := range pitches {
		byCreator[p.CreatorID] = append(byCreator[p.CreatorID], p)
	}
	return byCreator, nil
}

// TrendingPitches orders published pitches by engagement
// (views + 2*likes + 3*NDAs).
func (s *Store) TrendingPitches(ctx context.Context, limit int) ([]*models.Pitch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+pitchColumns+`
		FROM pitches p
		WHERE p.status = 'published'
		ORDER BY p.view_count + 2*p.like_count + 3*p.nda_count DESC, p.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return s.collectPitches(rows)
}
