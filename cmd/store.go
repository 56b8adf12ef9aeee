package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/warehouse"
)

// useSnapshot switches every command from the warehouse to the local SQLite
// snapshot written by `gymscope snapshot`.
var useSnapshot bool

// openStore opens the configured data source wrapped in the TTL cache.
func openStore(ctx context.Context) (*warehouse.CachedStore, error) {
	inner, err := openRawStore(ctx)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	return warehouse.NewCached(inner, ttl, cfg.Cache.QueriesPerMinute), nil
}

// openRawStore opens the warehouse or snapshot without caching.
func openRawStore(ctx context.Context) (warehouse.Store, error) {
	if useSnapshot {
		zap.L().Info("using local snapshot", zap.String("path", cfg.Snapshot.Path))
		return warehouse.NewSnapshot(cfg.Snapshot.Path)
	}
	return warehouse.NewPostgres(ctx, cfg.Warehouse)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&useSnapshot, "snapshot", false,
		"read from the local SQLite snapshot instead of the warehouse")
}
