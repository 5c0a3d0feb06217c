package sql

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sterbis/sqldatabase/dialect"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestStatsDriverCounters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.Postgres, db), WithLogger(discardLogger()))

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM words", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, drv.Exec(context.Background(), "INSERT INTO words (word) VALUES ('jump')", []any{}, nil))

	mock.ExpectExec("DELETE").WillReturnError(errors.New("boom"))
	require.Error(t, drv.Exec(context.Background(), "DELETE FROM words", []any{}, nil))

	snap := drv.QueryStats().Snapshot()
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.Equal(t, int64(2), snap.TotalExecs)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(0), snap.SlowStatements)
	assert.Greater(t, snap.TotalDuration, time.Duration(0))
	require.NoError(t, mock.ExpectationsWereMet())

	drv.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, drv.QueryStats().Snapshot())
}

func TestStatsDriverSlowStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Text handler defaults to Info, so only the Warn record shows up.
	var buf bytes.Buffer
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithSlowThreshold(-time.Nanosecond),
	)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM words", []any{}, rows))
	require.NoError(t, rows.Close())

	assert.Equal(t, int64(1), drv.QueryStats().Snapshot().SlowStatements)
	assert.Contains(t, buf.String(), "slow statement")
	assert.Contains(t, buf.String(), "SELECT id FROM words")
	assert.NotContains(t, buf.String(), "level=DEBUG")
}

func TestStatsTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.Postgres, db), WithLogger(discardLogger()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE words").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "UPDATE words SET word = $1 WHERE id = $2", []any{"run", 1}, nil))
	rows := &Rows{}
	require.NoError(t, tx.Query(context.Background(), "SELECT id FROM words", []any{}, rows))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	snap := drv.QueryStats().Snapshot()
	assert.Equal(t, int64(1), snap.TotalExecs)
	assert.Equal(t, int64(1), snap.TotalQueries)
}

func TestStatsSnapshotAvgDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), StatsSnapshot{}.AvgDuration())

	snap := StatsSnapshot{
		TotalQueries:  3,
		TotalExecs:    1,
		TotalDuration: 4 * time.Second,
	}
	assert.Equal(t, time.Second, snap.AvgDuration())
}

func TestOpenWithStatsUnsupportedDialect(t *testing.T) {
	drv, err := OpenWithStats("oracle", "oracle://localhost")
	require.Error(t, err)
	assert.Nil(t, drv)
}
