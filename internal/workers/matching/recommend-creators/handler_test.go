// internal/workers/matching/recommend-creators/handler_test.go
package recommendcreators

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

func TestExecuteRequiresUserID(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestExecuteColdStartReturnsTrending(t *testing.T) {
	h, mock := newTestHandler(t)
	now := time.Now()

	mock.ExpectQuery("FROM pitch_views v").
		WithArgs("viewer-1", 100).
		WillReturnRows(sqlmock.NewRows([]string{"viewer_id", "pitch_id", "viewed_at"}))
	mock.ExpectQuery("GROUP BY p.creator_id").
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).
			AddRow("creator-2"))
	mock.ExpectQuery("FROM participants").
		WithArgs("creator-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "name", "company_name", "last_active_at", "created_at"}).
			AddRow("creator-2", "creator", "Bea", nil, now, now))

	output, err := h.Execute(context.Background(), &Input{UserID: "viewer-1", Limit: 5})
	require.NoError(t, err)

	require.Equal(t, 1, output.Count)
	assert.Equal(t, "creator-2", output.Recommendations[0].ParticipantID)
	assert.Equal(t, []string{"trending creator"}, output.Recommendations[0].Reasons)
	assert.NoError(t, mock.ExpectationsWereMet())
}
