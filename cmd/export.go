package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/export"
	"github.com/leap-analytics/gymscope/internal/filter"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered opportunity table to a CSV or XLSX file",
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
		zap.L().Info("export", zap.Int("filtered", len(filtered)), zap.Int("total", len(records)))

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrap(err, "export: create output file")
		}
		defer f.Close()

		if strings.HasSuffix(strings.ToLower(exportOut), ".xlsx") {
			return export.XLSX(f, filtered)
		}
		data, err := export.CSV(filtered)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return eris.Wrap(err, "export: write csv")
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "sf_gym_opportunities.csv", "output path (.csv or .xlsx)")
	addFilterFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
