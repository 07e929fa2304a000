package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/profile"
	"pitchmatch-workers/internal/store"
)

var testNow = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func newTestRanker(t *testing.T) (*Ranker, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	log := logger.NewTestLogger(t)
	return NewRanker(st, profile.NewService(st, nil, log, time.Minute), log), mock
}

func pitchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creator_id", "title", "logline", "short_synopsis", "long_synopsis",
		"genre", "format", "themes", "estimated_budget", "target_audience",
		"published_at", "view_count", "like_count", "nda_count", "status",
	})
}

func participantRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "role", "name", "company_name", "last_active_at", "created_at"})
}

func viewRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"viewer_id", "pitch_id", "viewed_at"})
}

func TestRecommendCreatorsColdStartFallsBackToTrending(t *testing.T) {
	r, mock := newTestRanker(t)

	mock.ExpectQuery("FROM pitch_views v").
		WithArgs("viewer-1", 100).
		WillReturnRows(viewRows())
	mock.ExpectQuery("GROUP BY p.creator_id").
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).
			AddRow("viewer-1").
			AddRow("creator-2"))
	mock.ExpectQuery("FROM participants").
		WithArgs("creator-2").
		WillReturnRows(participantRows().AddRow("creator-2", "creator", "Bea", nil, testNow, testNow))

	recs, err := r.RecommendCreators(context.Background(), "viewer-1", 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "creator-2", recs[0].ParticipantID)
	assert.Equal(t, []string{"trending creator"}, recs[0].Reasons)

	// The requester never recommends themselves even when they trend.
	for _, rec := range recs {
		assert.NotEqual(t, "viewer-1", rec.ParticipantID)
	}
}

func TestRecommendCreatorsPersonalized(t *testing.T) {
	r, mock := newTestRanker(t)
	viewed := testNow.Add(-24 * time.Hour)

	// Viewer preferences: two scifi features viewed.
	mock.ExpectQuery("FROM pitch_views v").
		WithArgs("viewer-1", 100).
		WillReturnRows(viewRows().
			AddRow("viewer-1", "vp1", viewed).
			AddRow("viewer-1", "vp2", viewed))
	mock.ExpectQuery("FROM pitches p").
		WillReturnRows(pitchRows().
			AddRow("vp1", "cX", "A", "l", "", "", "scifi", "feature", []byte(`["space"]`), nil, "", nil, 0, 0, 0, "published").
			AddRow("vp2", "cY", "B", "l", "", "", "scifi", "feature", []byte(`["ai"]`), nil, "", nil, 0, 0, 0, "published"))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("viewer-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// Already-followed creators are excluded from the pool.
	mock.ExpectQuery("FROM follows f").
		WithArgs("viewer-1").
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow("creator-followed"))

	mock.ExpectQuery("FROM participants").
		WillReturnRows(participantRows().
			AddRow("creator-followed", "creator", "Followed", nil, testNow, testNow).
			AddRow("creator-hit", "creator", "Hit", nil, testNow, testNow).
			AddRow("creator-miss", "creator", "Miss", nil, testNow, testNow))

	mock.ExpectQuery("ROW_NUMBER").
		WillReturnRows(pitchRows().
			AddRow("h1", "creator-hit", "S1", "l", "", "", "scifi", "feature", []byte(`["space"]`), nil, "", nil, 3000, 0, 200, "published").
			AddRow("h2", "creator-hit", "S2", "l", "", "", "scifi", "feature", []byte(`[]`), nil, "", nil, 3000, 0, 200, "published").
			AddRow("h3", "creator-hit", "S3", "l", "", "", "scifi", "feature", []byte(`[]`), nil, "", nil, 3000, 0, 200, "published").
			AddRow("m1", "creator-miss", "W1", "l", "", "", "western", "short", []byte(`[]`), nil, "", nil, 10, 0, 0, "published"))

	// Collaborative filtering, one query per pooled candidate: creator-hit
	// has 2 of 4 sampled viewers sharing 3+ pitches, creator-miss none.
	mock.ExpectQuery("FROM sampled s").
		WithArgs("viewer-1", "creator-hit", 20).
		WillReturnRows(sqlmock.NewRows([]string{"viewer_id", "count"}).
			AddRow("v2", 4).AddRow("v3", 3).AddRow("v4", 0).AddRow("v5", 1))
	mock.ExpectQuery("FROM sampled s").
		WithArgs("viewer-1", "creator-miss", 20).
		WillReturnRows(sqlmock.NewRows([]string{"viewer_id", "count"}).AddRow("v2", 0))

	recs, err := r.RecommendCreators(context.Background(), "viewer-1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	hit := recs[0]
	assert.Equal(t, "creator-hit", hit.ParticipantID)
	// 50 base + 10 genre + 8 format + 3 theme + 10 views + 10 NDA ratio
	// + 8 pitch count + 12 co-viewer bonus.
	assert.Equal(t, 111, hit.Score)
	assert.Contains(t, hit.Reasons, "popular with users who share your taste")
	assert.Contains(t, hit.Reasons, "creates scifi content you watch")

	miss := recs[1]
	assert.Equal(t, "creator-miss", miss.ParticipantID)
	assert.Equal(t, 50, miss.Score)
	assert.Equal(t, []string{"emerging talent"}, miss.Reasons)

	for _, rec := range recs {
		assert.NotEqual(t, "creator-followed", rec.ParticipantID)
		assert.NotEqual(t, "viewer-1", rec.ParticipantID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendInvestorsForPitch(t *testing.T) {
	r, mock := newTestRanker(t)
	published := testNow.Add(-10 * 24 * time.Hour)

	mock.ExpectQuery("FROM pitches p").
		WithArgs("pitch-1").
		WillReturnRows(pitchRows().AddRow(
			"pitch-1", "creator-1", "Drift", "l", "", "",
			"drama", "feature", []byte(`["family"]`), 6000000.0, "",
			published, 100, 0, 5, "published"))

	mock.ExpectQuery("FROM participants").
		WillReturnRows(participantRows().
			AddRow("creator-1", "investor", "Self", nil, testNow, testNow).
			AddRow("investor-1", "investor", "Ida", nil, testNow, testNow))

	// investor-1 has no NDA history, so the cold-start profile applies:
	// drama is preferred and feature is a preferred format.
	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}))

	recs, err := r.RecommendInvestors(context.Background(), "", "pitch-1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "investor-1", rec.ParticipantID)
	// 65 base + 10 genre + 8 format; default profile has 30 idle days and
	// no funded projects, so no activity or track-record bonus.
	assert.Equal(t, 83, rec.Score)
	assert.Contains(t, rec.Reasons, "invests in drama projects")

	// The pitch owner never appears as an investor candidate.
	for _, rec := range recs {
		assert.NotEqual(t, "creator-1", rec.ParticipantID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendInvestorsDefaultReason(t *testing.T) {
	r, mock := newTestRanker(t)

	mock.ExpectQuery("FROM pitches p").
		WithArgs("creator-1", 5).
		WillReturnRows(pitchRows().
			AddRow("p1", "creator-1", "W", "l", "", "", "western", "short", []byte(`[]`), nil, "", nil, 0, 0, 0, "published"))

	mock.ExpectQuery("FROM participants").
		WillReturnRows(participantRows().
			AddRow("investor-2", "investor", "Cold", nil, testNow.Add(-40*24*time.Hour), testNow))

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-2", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}))

	recs, err := r.RecommendInvestors(context.Background(), "creator-1", "", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, investorBaseScore, recs[0].Score)
	assert.Equal(t, []string{"potential investor match"}, recs[0].Reasons)
}
