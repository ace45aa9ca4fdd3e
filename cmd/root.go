package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/pipeline"
	"github.com/inhuren/agency-scraper/internal/registry"
	"github.com/inhuren/agency-scraper/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "agency-scraper",
	Short: "Company-profile scraper for Dutch staffing agencies",
	Long:  "Discovers and fetches agency websites, runs layered extractors, and accumulates the findings into one structured profile per agency.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// env bundles the collaborators commands share.
type env struct {
	Registry *registry.Registry
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initEnv loads the registry, opens and migrates the store, and wires
// the pipeline.
func initEnv(ctx context.Context) (*env, error) {
	reg, err := registry.Load()
	if err != nil {
		return nil, eris.Wrap(err, "load agency registry")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return &env{
		Registry: reg,
		Store:    st,
		Pipeline: pipeline.New(cfg, reg, st),
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
