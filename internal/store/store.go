// Package store persists scrape runs and finished agency profiles.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
)

// ErrNotFound is returned when a run or profile does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status    model.RunStatus `json:"status,omitempty"`
	AgencyKey string          `json:"agency_key,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// Store is the persistence interface for the scrape pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, agencyKey string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, pagesVisited, fieldsFound int) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Profiles: one current profile per agency, replaced per run.
	SaveProfile(ctx context.Context, agencyKey string, profile *model.AgencyProfile) error
	GetProfile(ctx context.Context, agencyKey string) (*model.AgencyProfile, error)
	ListProfiles(ctx context.Context) ([]model.AgencyProfile, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
