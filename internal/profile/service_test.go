package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/store"
)

func newTestService(t *testing.T, withRedis bool) (*Service, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var rdb *redis.Client
	var mr *miniredis.Miniredis
	if withRedis {
		mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}

	svc := NewService(store.New(db), rdb, logger.NewTestLogger(t), 5*time.Minute)
	svc.now = func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }
	return svc, mock, mr
}

func pitchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creator_id", "title", "logline", "short_synopsis", "long_synopsis",
		"genre", "format", "themes", "estimated_budget", "target_audience",
		"published_at", "view_count", "like_count", "nda_count", "status",
	})
}

func TestInvestorProfileColdStart(t *testing.T) {
	svc, mock, _ := newTestService(t, false)

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}))

	profile, err := svc.InvestorProfile(context.Background(), "investor-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultInvestorProfile(), profile)
}

func TestInvestorProfileFromHistory(t *testing.T) {
	svc, mock, _ := newTestService(t, false)
	signed := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}).
			AddRow("investor-1", "p1", true, signed).
			AddRow("investor-1", "p2", true, signed.Add(-24*time.Hour)).
			AddRow("investor-1", "p3", true, signed.Add(-48*time.Hour)))

	mock.ExpectQuery("FROM pitches p").
		WillReturnRows(pitchRows().
			AddRow("p1", "c1", "A", "l", "", "", "thriller", "feature", []byte(`["conspiracy"]`), 3000000.0, "", nil, 0, 0, 0, "published").
			AddRow("p2", "c2", "B", "l", "", "", "thriller", "tv", []byte(`["revenge"]`), 8000000.0, "", nil, 0, 0, 0, "published").
			AddRow("p3", "c3", "C", "l", "", "", "drama", "feature", []byte(`["family"]`), nil, "", nil, 0, 0, 0, "published"))

	profile, err := svc.InvestorProfile(context.Background(), "investor-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"thriller", "drama"}, profile.PreferredGenres)
	assert.Empty(t, profile.SecondaryGenres)
	assert.Equal(t, []string{"feature", "tv"}, profile.PreferredFormats)
	assert.Equal(t, []string{"conspiracy", "revenge", "family"}, profile.InterestedThemes)
	assert.Equal(t, 3000000.0, profile.BudgetMin)
	assert.Equal(t, 8000000.0, profile.BudgetMax)
	assert.Equal(t, 3, profile.SuccessfulProjects)
	assert.Equal(t, 10, profile.DaysSinceLastActivity)
}

func TestInvestorProfileDefaultBudgetWhenUnobserved(t *testing.T) {
	svc, mock, _ := newTestService(t, false)
	signed := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-2", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}).
			AddRow("investor-2", "p1", true, signed))

	mock.ExpectQuery("FROM pitches p").
		WillReturnRows(pitchRows().
			AddRow("p1", "c1", "A", "l", "", "", "comedy", "short", []byte(`[]`), nil, "", nil, 0, 0, 0, "published"))

	profile, err := svc.InvestorProfile(context.Background(), "investor-2")
	require.NoError(t, err)
	assert.Equal(t, 5_000_000.0, profile.BudgetMin)
	assert.Equal(t, 50_000_000.0, profile.BudgetMax)
}

func TestInvestorProfileMemoized(t *testing.T) {
	svc, mock, mr := newTestService(t, true)
	signed := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}).
			AddRow("investor-1", "p1", true, signed))
	mock.ExpectQuery("FROM pitches p").
		WillReturnRows(pitchRows().
			AddRow("p1", "c1", "A", "l", "", "", "horror", "feature", []byte(`[]`), nil, "", nil, 0, 0, 0, "published"))

	first, err := svc.InvestorProfile(context.Background(), "investor-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("profile:investor:investor-1"))

	// Second call must come from the cache; no further queries are expected.
	second, err := svc.InvestorProfile(context.Background(), "investor-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestorProfileIgnoresCorruptCache(t *testing.T) {
	svc, mock, mr := newTestService(t, true)
	require.NoError(t, mr.Set("profile:investor:investor-1", "{not json"))

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}))

	profile, err := svc.InvestorProfile(context.Background(), "investor-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultInvestorProfile(), profile)
}

func TestInvestorProfileSurvivesCacheOutage(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("profile:investor:investor-1").SetErr(errors.New("connection refused"))

	svc := NewService(store.New(db), rdb, logger.NewTestLogger(t), 5*time.Minute)

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}))

	// A dead cache degrades to a store round trip, never to an error.
	profile, err := svc.InvestorProfile(context.Background(), "investor-1")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultInvestorProfile(), profile)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestViewerPreferencesNoHistory(t *testing.T) {
	svc, mock, _ := newTestService(t, false)

	mock.ExpectQuery("FROM pitch_views v").
		WithArgs("viewer-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"viewer_id", "pitch_id", "viewed_at"}))

	prefs, err := svc.ViewerPreferences(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.False(t, prefs.HasHistory())
	assert.Empty(t, prefs.Genres)
}

func TestViewerPreferencesRankedByFrequency(t *testing.T) {
	svc, mock, _ := newTestService(t, false)
	viewed := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM pitch_views v").
		WithArgs("viewer-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"viewer_id", "pitch_id", "viewed_at"}).
			AddRow("viewer-1", "p1", viewed).
			AddRow("viewer-1", "p2", viewed).
			AddRow("viewer-1", "p1", viewed).
			AddRow("viewer-1", "p3", viewed))

	mock.ExpectQuery("FROM pitches p").
		WillReturnRows(pitchRows().
			AddRow("p1", "c1", "A", "l", "", "", "scifi", "feature", []byte(`["space"]`), nil, "", nil, 0, 0, 0, "published").
			AddRow("p2", "c2", "B", "l", "", "", "scifi", "tv", []byte(`["space","ai"]`), nil, "", nil, 0, 0, 0, "published").
			AddRow("p3", "c3", "C", "l", "", "", "drama", "feature", []byte(`[]`), nil, "", nil, 0, 0, 0, "published"))

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("viewer-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	prefs, err := svc.ViewerPreferences(context.Background(), "viewer-1")
	require.NoError(t, err)
	assert.True(t, prefs.HasHistory())
	assert.Equal(t, []string{"scifi", "drama"}, prefs.Genres)
	assert.Equal(t, []string{"feature", "tv"}, prefs.Formats)
	assert.Equal(t, []string{"space", "ai"}, prefs.Themes)
	assert.Equal(t, []string{"p1", "p2", "p3"}, prefs.ViewedPitch)
	assert.Equal(t, 2, prefs.NDACount)
}

func TestViewerPreferencesCacheRoundTrip(t *testing.T) {
	svc, _, mr := newTestService(t, true)

	want := &models.ViewerPreferences{
		Genres:      []string{"drama"},
		Formats:     []string{"tv"},
		Themes:      []string{"family"},
		ViewedPitch: []string{"p9"},
		NDACount:    1,
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, mr.Set("profile:viewer:viewer-9", string(data)))

	prefs, err := svc.ViewerPreferences(context.Background(), "viewer-9")
	require.NoError(t, err)
	assert.Equal(t, want, prefs)
}
