package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadcrm/internal/db"
	"github.com/sells-group/leadcrm/internal/model"
)

// PostgresStore implements RecordStore using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	seq     BIGSERIAL PRIMARY KEY,
	id      TEXT NOT NULL DEFAULT '',
	name    TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	status  TEXT NOT NULL DEFAULT 'Prospecting',
	summary TEXT NOT NULL DEFAULT '',
	score   DOUBLE PRECISION NOT NULL DEFAULT 0,
	value   DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_leads_id ON leads (id);
`

const postgresInsert = `INSERT INTO leads (id, name, company, status, summary, score, value) VALUES ($1, $2, $3, $4, $5, $6, $7)`

// leadColumns are the COPY columns, in insertArgs order.
var leadColumns = []string{"id", "name", "company", "status", "summary", "score", "value"}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Upsert serializes writers per id with a transaction-scoped advisory lock so
// concurrent sessions cannot both miss the existing row and append twice.
func (s *PostgresStore) Upsert(ctx context.Context, rec model.LeadRecord) error {
	if !rec.HasID() {
		_, err := s.pool.Exec(ctx, postgresInsert, insertArgs(rec)...)
		return eris.Wrap(err, "postgres: insert lead")
	}

	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := db.LockKey(ctx, tx, rec.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, rec.ID); err != nil {
			return eris.Wrapf(err, "delete lead %s", rec.ID)
		}
		if _, err := tx.Exec(ctx, postgresInsert, insertArgs(rec)...); err != nil {
			return eris.Wrap(err, "insert lead")
		}
		return nil
	})
	return eris.Wrapf(err, "postgres: upsert lead %s", rec.ID)
}

func (s *PostgresStore) All(ctx context.Context) ([]model.LeadRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, company, status, summary, score, value FROM leads ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var out []model.LeadRecord
	for rows.Next() {
		rec, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) Aggregate(ctx context.Context) (model.Summary, error) {
	sum := model.Summary{StatusHistogram: map[string]int{}}
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(value), 0), COALESCE(AVG(score), 0) FROM leads`,
	).Scan(&count, &sum.TotalValue, &sum.MeanScore)
	if err != nil {
		return model.Summary{}, eris.Wrap(err, "postgres: aggregate leads")
	}
	sum.Count = int(count)

	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return model.Summary{}, eris.Wrap(err, "postgres: status histogram")
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return model.Summary{}, eris.Wrap(err, "postgres: scan histogram")
		}
		sum.StatusHistogram[status] = int(n)
	}
	return sum, eris.Wrap(rows.Err(), "postgres: iterate histogram")
}

// ReplaceAll truncates the table and bulk-loads recs with COPY.
func (s *PostgresStore) ReplaceAll(ctx context.Context, recs []model.LeadRecord) error {
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		rows[i] = insertArgs(rec)
	}

	err := db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM leads`); err != nil {
			return eris.Wrap(err, "clear leads")
		}
		_, err := db.CopyFrom(ctx, tx, "leads", leadColumns, rows)
		return err
	})
	return eris.Wrap(err, "postgres: replace leads")
}
