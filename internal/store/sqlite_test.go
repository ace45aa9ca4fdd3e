package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "randstad")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, "randstad", run.AgencyKey)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusScraping))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusScraping, got.Status)

	require.NoError(t, s.CompleteRun(ctx, run.ID, 12, 34))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 12, got.PagesVisited)
	assert.Equal(t, 34, got.FieldsFound)
	assert.Empty(t, got.Error)
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "olympia")
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, "homepage unreachable"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "homepage unreachable", got.Error)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "no-such-run")
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.UpdateRunStatus(ctx, "no-such-run", model.RunStatusScraping)
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.CompleteRun(ctx, "no-such-run", 0, 0)
	assert.True(t, eris.Is(err, ErrNotFound))

	err = s.FailRun(ctx, "no-such-run", "boom")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteListRunsFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, "randstad")
	require.NoError(t, err)
	r2, err := s.CreateRun(ctx, "olympia")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, "randstad")
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, r1.ID, 5, 10))
	require.NoError(t, s.FailRun(ctx, r2.ID, "timeout"))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, r2.ID, failed[0].ID)

	byAgency, err := s.ListRuns(ctx, RunFilter{AgencyKey: "randstad"})
	require.NoError(t, err)
	assert.Len(t, byAgency, 2)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteSaveAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "randstad")
	require.NoError(t, err)

	profile := &model.AgencyProfile{
		AgencyName: "Randstad",
		WebsiteURL: "https://www.randstad.nl",
		HQCity:     "Diemen",
		RunID:      run.ID,
		EvidenceURLs: []string{
			"https://www.randstad.nl/over-ons",
			"https://www.randstad.nl/contact",
		},
	}
	require.NoError(t, s.SaveProfile(ctx, "randstad", profile))

	got, err := s.GetProfile(ctx, "randstad")
	require.NoError(t, err)
	assert.Equal(t, "Randstad", got.AgencyName)
	assert.Equal(t, "Diemen", got.HQCity)
	assert.Equal(t, run.ID, got.RunID)
	assert.Equal(t, profile.EvidenceURLs, got.EvidenceURLs)
}

func TestSQLiteSaveProfileOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, "olympia")
	require.NoError(t, err)
	r2, err := s.CreateRun(ctx, "olympia")
	require.NoError(t, err)

	require.NoError(t, s.SaveProfile(ctx, "olympia", &model.AgencyProfile{
		AgencyName: "Olympia",
		HQCity:     "Den Haag",
		RunID:      r1.ID,
	}))
	require.NoError(t, s.SaveProfile(ctx, "olympia", &model.AgencyProfile{
		AgencyName: "Olympia Uitzendbureau",
		HQCity:     "Den Haag",
		RunID:      r2.ID,
	}))

	got, err := s.GetProfile(ctx, "olympia")
	require.NoError(t, err)
	assert.Equal(t, "Olympia Uitzendbureau", got.AgencyName)
	assert.Equal(t, r2.ID, got.RunID)
}

func TestSQLiteProfileNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProfile(context.Background(), "nobody")
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteListProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"randstad", "olympia"} {
		run, err := s.CreateRun(ctx, key)
		require.NoError(t, err)
		require.NoError(t, s.SaveProfile(ctx, key, &model.AgencyProfile{
			AgencyName: key,
			RunID:      run.ID,
		}))
	}

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "olympia", profiles[0].AgencyName)
	assert.Equal(t, "randstad", profiles[1].AgencyName)
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "open.db"),
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate(context.Background()))
	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "oracle"})
	assert.Error(t, err)
}
