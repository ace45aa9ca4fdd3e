package main

import (
	"github.com/spf13/cobra"

	"github.com/inhuren/agency-scraper/internal/registry"
)

var agenciesCmd = &cobra.Command{
	Use:   "agencies",
	Short: "List the agencies in the embedded registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.Load()
		if err != nil {
			return err
		}
		for _, a := range reg.All() {
			ai := ""
			if a.AIEligible {
				ai = " [ai]"
			}
			cmd.Printf("%-20s %-30s %s%s\n", a.Key, a.Name, a.WebsiteURL, ai)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(agenciesCmd)
}
