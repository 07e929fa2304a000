// internal/workers/matching/recommend-investors/handler_test.go
package recommendinvestors

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &Config{CacheTTL: time.Minute, Timeout: 5 * time.Second}
	return NewHandler(cfg, db, rdb, logger.NewTestLogger(t)), mock
}

func TestExecuteRequiresCreatorOrPitch(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Limit: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTarget)
	assert.Equal(t, "VALIDATION_ERROR", errorCodeFor(err))
}

func TestExecuteRecommendsInvestorsForPitch(t *testing.T) {
	h, mock := newTestHandler(t)
	now := time.Now()
	published := now.Add(-10 * 24 * time.Hour)

	mock.ExpectQuery("FROM pitches p").
		WithArgs("pitch-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "creator_id", "title", "logline", "short_synopsis", "long_synopsis",
			"genre", "format", "themes", "estimated_budget", "target_audience",
			"published_at", "view_count", "like_count", "nda_count", "status",
		}).AddRow(
			"pitch-1", "creator-1", "Drift", "l", "", "",
			"drama", "feature", []byte(`["family"]`), 6000000.0, "",
			published, 100, 0, 5, "published"))

	mock.ExpectQuery("FROM participants").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "name", "company_name", "last_active_at", "created_at"}).
			AddRow("investor-1", "investor", "Ida", nil, now, now))

	mock.ExpectQuery("FROM nda_grants n").
		WithArgs("investor-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"signer_id", "pitch_id", "granted", "signed_at"}))

	output, err := h.Execute(context.Background(), &Input{PitchID: "pitch-1", Limit: 10})
	require.NoError(t, err)

	require.Equal(t, 1, output.Count)
	rec := output.Recommendations[0]
	assert.Equal(t, "investor-1", rec.ParticipantID)
	assert.Equal(t, 83, rec.Score)
	assert.Contains(t, rec.Reasons, "invests in drama projects")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorCodeForPitchNotFound(t *testing.T) {
	assert.Equal(t, "PITCH_NOT_FOUND", errorCodeFor(store.ErrPitchNotFound))
	assert.Equal(t, "RECOMMENDATION_FAILED", errorCodeFor(assert.AnError))
}
