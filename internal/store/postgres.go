package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/inhuren/agency-scraper/internal/db"
	"github.com/inhuren/agency-scraper/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, agency_key, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"get_run":           `SELECT id, agency_key, status, pages_visited, fields_found, error, created_at, updated_at FROM runs WHERE id = $1`,
	"get_profile":       `SELECT profile FROM profiles WHERE agency_key = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	agency_key    TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'queued',
	pages_visited INTEGER NOT NULL DEFAULT 0,
	fields_found  INTEGER NOT NULL DEFAULT 0,
	error         TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	agency_key TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	profile    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, agencyKey string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, agency_key, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, agencyKey, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run for %s", agencyKey)
	}

	return &model.Run{
		ID:        id,
		AgencyKey: agencyKey,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, pagesVisited, fieldsFound int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, pages_visited = $2, fields_found = $3, updated_at = $4 WHERE id = $5`,
		string(model.RunStatusComplete), pagesVisited, fieldsFound, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, agency_key, status, pages_visited, fields_found, error, created_at, updated_at
		 FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.AgencyKey, &r.Status, &r.PagesVisited, &r.FieldsFound, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, agency_key, status, pages_visited, fields_found, error, created_at, updated_at
		FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.AgencyKey != "" {
		query += fmt.Sprintf(` AND agency_key = $%d`, argIdx)
		args = append(args, filter.AgencyKey)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var errMsg *string
		if err := rows.Scan(&r.ID, &r.AgencyKey, &r.Status, &r.PagesVisited, &r.FieldsFound,
			&errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveProfile(ctx context.Context, agencyKey string, profile *model.AgencyProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal profile")
	}

	if _, err := db.Upsert(ctx, s.pool, db.UpsertConfig{
		Table:        "profiles",
		Columns:      []string{"agency_key", "run_id", "profile", "updated_at"},
		ConflictKeys: []string{"agency_key"},
	}, []any{agencyKey, profile.RunID, profileJSON, time.Now().UTC()}); err != nil {
		return eris.Wrapf(err, "postgres: save profile %s", agencyKey)
	}

	if profile.RunID != "" && len(profile.EvidenceURLs) > 0 {
		rows := make([][]any, len(profile.EvidenceURLs))
		for i, u := range profile.EvidenceURLs {
			rows[i] = []any{profile.RunID, i, u}
		}
		if _, err := db.CopyFrom(ctx, s.pool, "evidence", []string{"run_id", "position", "url"}, rows); err != nil {
			return eris.Wrapf(err, "postgres: save evidence %s", agencyKey)
		}
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, agencyKey string) (*model.AgencyProfile, error) {
	var profileJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM profiles WHERE agency_key = $1`, agencyKey,
	).Scan(&profileJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", agencyKey)
	}

	var p model.AgencyProfile
	if err := json.Unmarshal(profileJSON, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal profile")
	}
	return &p, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.AgencyProfile, error) {
	rows, err := s.pool.Query(ctx, `SELECT profile FROM profiles ORDER BY agency_key`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.AgencyProfile
	for rows.Next() {
		var profileJSON []byte
		if err := rows.Scan(&profileJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		var p model.AgencyProfile
		if err := json.Unmarshal(profileJSON, &p); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal profile")
		}
		profiles = append(profiles, p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}
