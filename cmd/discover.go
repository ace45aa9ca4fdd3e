package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/pipeline"
	"github.com/inhuren/agency-scraper/internal/registry"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [agency-key]",
	Short: "Run URL discovery and write the report; no key means every agency",
	Long:  "Collects candidate URLs from robots.txt, sitemaps, and a crawl fallback, triages them by category, and writes the recommended scrape list as JSON. Without an agency key, discovery runs for every agency in the registry.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		agencies := e.Registry.All()
		if len(args) == 1 {
			agency, ok := e.Registry.Get(args[0])
			if !ok {
				return eris.Errorf("discover: unknown agency %q", args[0])
			}
			agencies = []registry.Agency{agency}
		}

		var failed int
		for _, agency := range agencies {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result, err := e.Pipeline.Discover(ctx, agency)
			if err != nil {
				failed++
				zap.L().Error("discovery failed",
					zap.String("agency", agency.Key), zap.Error(err))
				continue
			}
			path, err := pipeline.WriteDiscoveryReport(cfg.Output, agency.Key, result)
			if err != nil {
				return err
			}
			cmd.Printf("%s: %d urls, %d recommended -> %s\n",
				agency.Key, result.TotalURLs, len(result.Recommended), path)
		}
		if failed == len(agencies) {
			return eris.New("discover: all agencies failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
