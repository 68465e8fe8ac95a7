package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadcrm/internal/model"
)

// SQLiteStore implements RecordStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// seq keeps insertion order; a replaced record gets a fresh seq.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	id      TEXT NOT NULL DEFAULT '',
	name    TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	status  TEXT NOT NULL DEFAULT 'Prospecting',
	summary TEXT NOT NULL DEFAULT '',
	score   REAL NOT NULL DEFAULT 0,
	value   REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_leads_id ON leads(id);
`

const sqliteInsert = `INSERT INTO leads (id, name, company, status, summary, score, value) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec model.LeadRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	if rec.HasID() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE id = ?`, rec.ID); err != nil {
			return eris.Wrapf(err, "sqlite: delete lead %s", rec.ID)
		}
	}
	if _, err := tx.ExecContext(ctx, sqliteInsert, insertArgs(rec)...); err != nil {
		return eris.Wrap(err, "sqlite: insert lead")
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit upsert")
}

func (s *SQLiteStore) All(ctx context.Context) ([]model.LeadRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, company, status, summary, score, value FROM leads ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.LeadRecord
	for rows.Next() {
		rec, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) Aggregate(ctx context.Context) (model.Summary, error) {
	sum := model.Summary{StatusHistogram: map[string]int{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(value), 0), COALESCE(AVG(score), 0) FROM leads`,
	).Scan(&sum.Count, &sum.TotalValue, &sum.MeanScore)
	if err != nil {
		return model.Summary{}, eris.Wrap(err, "sqlite: aggregate leads")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return model.Summary{}, eris.Wrap(err, "sqlite: status histogram")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return model.Summary{}, eris.Wrap(err, "sqlite: scan histogram")
		}
		sum.StatusHistogram[status] = n
	}
	return sum, eris.Wrap(rows.Err(), "sqlite: iterate histogram")
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, recs []model.LeadRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads`); err != nil {
		return eris.Wrap(err, "sqlite: clear leads")
	}
	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, insertArgs(rec)...); err != nil {
			return eris.Wrap(err, "sqlite: insert lead")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit replace")
}

func insertArgs(rec model.LeadRecord) []any {
	return []any{rec.ID, rec.Name, rec.Company, string(rec.Status), rec.Summary, rec.Score, rec.Value}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (model.LeadRecord, error) {
	var rec model.LeadRecord
	var status string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Company, &status, &rec.Summary, &rec.Score, &rec.Value); err != nil {
		return model.LeadRecord{}, err
	}
	rec.Status = model.LeadStatus(status)
	return rec, nil
}
