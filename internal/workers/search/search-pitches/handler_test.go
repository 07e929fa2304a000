// internal/workers/search/search-pitches/handler_test.go
package searchpitches

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitchmatch-workers/internal/common/logger"
	"pitchmatch-workers/internal/models"
	"pitchmatch-workers/internal/search"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &Config{Timeout: 5 * time.Second}
	return NewHandler(cfg, db, logger.NewTestLogger(t)), mock
}

func pitchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creator_id", "title", "logline", "short_synopsis", "long_synopsis",
		"genre", "format", "themes", "estimated_budget", "target_audience",
		"published_at", "view_count", "like_count", "nda_count", "status",
	})
}

func TestExecuteParsesAndSearches(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("FROM pitches p").
		WithArgs("thriller", 5_000_000.0, "%thriller%", 20, 0).
		WillReturnRows(pitchRows().AddRow(
			"p1", "c1", "Tense", "A thriller logline", "", "",
			"thriller", "feature", []byte(`[]`), 4_000_000.0, "",
			nil, 100, 0, 0, "published"))
	mock.ExpectQuery("SELECT LOWER").
		WillReturnRows(sqlmock.NewRows([]string{"genre", "count"}).AddRow("thriller", 5))

	output, err := h.Execute(context.Background(), &Input{
		Query:         "thriller under $5M",
		Mode:          "semantic",
		Authenticated: true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntentFind, output.Intent)
	require.Equal(t, 1, output.Count)
	assert.Equal(t, "p1", output.Results[0].PitchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteUsesProvidedParsedQuery(t *testing.T) {
	h, mock := newTestHandler(t)

	parsed, err := search.Parse("drama features")
	require.NoError(t, err)

	mock.ExpectQuery("FROM pitches p").
		WillReturnRows(pitchRows())
	mock.ExpectQuery("SELECT LOWER").
		WillReturnRows(sqlmock.NewRows([]string{"genre", "count"}).AddRow("drama", 3))

	output, err := h.Execute(context.Background(), &Input{
		ParsedQuery:   parsed,
		Mode:          "semantic",
		Authenticated: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, output.Count)
	assert.NotEmpty(t, output.Suggestions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteRejectsShortQuery(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Query: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, search.ErrQueryTooShort)
}
