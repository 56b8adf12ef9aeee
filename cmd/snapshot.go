package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/warehouse"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Pull the mart into a local SQLite snapshot for offline use",
	Long: `Runs both warehouse queries once and persists the results into a local
SQLite file. Other commands read it with --snapshot, so the dashboard can run
without warehouse credentials.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		src, err := warehouse.NewPostgres(ctx, cfg.Warehouse)
		if err != nil {
			return err
		}
		defer src.Close()

		blocks, err := src.FetchBlockGroupMetrics(ctx)
		if err != nil {
			return err
		}
		gyms, err := src.FetchGymLocations(ctx)
		if err != nil {
			return err
		}

		path := snapshotOut
		if path == "" {
			path = cfg.Snapshot.Path
		}
		dst, err := warehouse.NewSnapshot(path)
		if err != nil {
			return err
		}
		defer dst.Close()

		if err := dst.Write(ctx, blocks, gyms); err != nil {
			return err
		}

		zap.L().Info("snapshot written",
			zap.String("path", path),
			zap.Int("block_groups", len(blocks)),
			zap.Int("gyms", len(gyms)),
		)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "", "snapshot path (default from config)")
	rootCmd.AddCommand(snapshotCmd)
}
