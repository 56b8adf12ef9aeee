package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/leap-analytics/gymscope/internal/filter"
	"github.com/leap-analytics/gymscope/internal/summary"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print aggregate and grouped opportunity summaries as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.FetchBlockGroupMetrics(ctx)
		if err != nil {
			return err
		}
		filtered := filter.Apply(records, filterStateFromFlags(records))

		totals := summary.Compute(filtered)
		totals.FilteredOutOfTotal = len(records)

		out := struct {
			Totals          summary.Totals             `json:"totals"`
			ByTier          []summary.TierRow          `json:"by_tier"`
			ByAccessibility []summary.AccessibilityRow `json:"by_accessibility"`
		}{
			Totals:          totals,
			ByTier:          summary.ByTier(filtered),
			ByAccessibility: summary.ByAccessibility(filtered),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "summary: encode")
		}
		return nil
	},
}

func init() {
	addFilterFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}
