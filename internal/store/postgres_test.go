package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadcrm/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS leads`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertWithoutID(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := lead("", "Ana", model.StatusMeeting, 10, 100)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs("", "Ana", "Ana Inc", "Meeting", "notes", 10.0, 100.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertReplacesUnderLock(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := lead("42", "Ana", model.StatusClosed, 90, 1000)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs("42").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`DELETE FROM leads WHERE id = \$1`).
		WithArgs("42").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs("42", "Ana", "Ana Inc", "Closed", "notes", 90.0, 1000.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.Upsert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertRollsBackOnInsertError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	rec := lead("42", "Ana", model.StatusClosed, 90, 1000)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs("42").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`DELETE FROM leads`).
		WithArgs("42").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs("42", "Ana", "Ana Inc", "Closed", "notes", 90.0, 1000.0).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Upsert(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert lead 42")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_All(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"id", "name", "company", "status", "summary", "score", "value"}).
		AddRow("1", "Ana", "Acme", "Meeting", "call", 10.0, 100.0).
		AddRow("2", "Bob", "Beta", "Closed", "won", 90.0, 900.0)
	mock.ExpectQuery(`SELECT id, name, company, status, summary, score, value FROM leads ORDER BY seq`).
		WillReturnRows(rows)

	recs, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Ana", recs[0].Name)
	assert.Equal(t, model.StatusClosed, recs[1].Status)
	assert.Equal(t, 900.0, recs[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Aggregate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(value\), 0\), COALESCE\(AVG\(score\), 0\) FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum", "avg"}).AddRow(int64(3), 300.0, 30.0))
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM leads GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("Meeting", int64(2)).
			AddRow("Lost", int64(1)))

	sum, err := s.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 300.0, sum.TotalValue)
	assert.Equal(t, 30.0, sum.MeanScore)
	assert.Equal(t, map[string]int{"Meeting": 2, "Lost": 1}, sum.StatusHistogram)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, company, status, summary, score, value FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "company", "status", "summary", "score", "value"}))

	_, err := Find(context.Background(), s, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceAll(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM leads`).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCopyFrom(pgx.Identifier{"leads"}, leadColumns).WillReturnResult(2)
	mock.ExpectCommit()

	err := s.ReplaceAll(context.Background(), []model.LeadRecord{
		lead("1", "Ana", model.StatusMeeting, 10, 100),
		lead("2", "Bob", model.StatusClosed, 90, 900),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
