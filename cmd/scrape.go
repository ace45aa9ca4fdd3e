package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scrapeAll bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape [agency-key]",
	Short: "Scrape one agency, or every registry agency with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if scrapeAll {
			if len(args) > 0 {
				return eris.New("scrape: pass an agency key or --all, not both")
			}
			results, err := e.Pipeline.RunAll(ctx)
			if err != nil {
				return err
			}
			for _, res := range results {
				cmd.Printf("%s: %d pages, %d fields -> %s\n",
					res.AgencyKey, res.PagesVisited, res.FieldsFound, res.OutputPath)
			}
			zap.L().Info("scrape all complete", zap.Int("agencies", len(results)))
			return nil
		}

		if len(args) == 0 {
			return eris.New("scrape: agency key required (or --all)")
		}
		agency, ok := e.Registry.Get(args[0])
		if !ok {
			return eris.Errorf("scrape: unknown agency %q", args[0])
		}

		res, err := e.Pipeline.RunAgency(ctx, agency)
		if err != nil {
			return err
		}
		cmd.Printf("%s: %d pages, %d fields -> %s\n",
			res.AgencyKey, res.PagesVisited, res.FieldsFound, res.OutputPath)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeAll, "all", false, "scrape every agency in the registry")
	rootCmd.AddCommand(scrapeCmd)
}
