package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/inhuren/agency-scraper/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "agency-scraper.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	agency_key    TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'queued',
	pages_visited INTEGER NOT NULL DEFAULT 0,
	fields_found  INTEGER NOT NULL DEFAULT 0,
	error         TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
	agency_key TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	profile    TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS evidence (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	url      TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_agency_key ON runs(agency_key);
CREATE INDEX IF NOT EXISTS idx_evidence_run_id ON evidence(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, agencyKey string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, agency_key, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, agencyKey, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run for %s", agencyKey)
	}

	return &model.Run{
		ID:        id,
		AgencyKey: agencyKey,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, pagesVisited, fieldsFound int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, pages_visited = ?, fields_found = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusComplete), pagesVisited, fieldsFound, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, agency_key, status, pages_visited, fields_found, error, created_at, updated_at
		 FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, agency_key, status, pages_visited, fields_found, error, created_at, updated_at
		FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.AgencyKey != "" {
		query += ` AND agency_key = ?`
		args = append(args, filter.AgencyKey)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, agencyKey string, profile *model.AgencyProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal profile")
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save profile")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (agency_key, run_id, profile, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (agency_key) DO UPDATE SET run_id = excluded.run_id,
		   profile = excluded.profile, updated_at = excluded.updated_at`,
		agencyKey, profile.RunID, string(profileJSON), now,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save profile %s", agencyKey)
	}

	if profile.RunID != "" {
		for i, u := range profile.EvidenceURLs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO evidence (run_id, position, url) VALUES (?, ?, ?)`,
				profile.RunID, i, u,
			); err != nil {
				return eris.Wrapf(err, "sqlite: save evidence %s", agencyKey)
			}
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save profile")
}

func (s *SQLiteStore) GetProfile(ctx context.Context, agencyKey string) (*model.AgencyProfile, error) {
	var profileJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM profiles WHERE agency_key = ?`, agencyKey,
	).Scan(&profileJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", agencyKey)
	}

	var p model.AgencyProfile
	if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	return &p, nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.AgencyProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile FROM profiles ORDER BY agency_key`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []model.AgencyProfile
	for rows.Next() {
		var profileJSON string
		if err := rows.Scan(&profileJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		var p model.AgencyProfile
		if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var errMsg sql.NullString

	err := row.Scan(&r.ID, &r.AgencyKey, &r.Status, &r.PagesVisited, &r.FieldsFound,
		&errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	return &r, nil
}
