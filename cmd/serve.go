package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/leap-analytics/gymscope/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		// Warm both caches up front so the first page load is served from
		// memory. A failure here is fatal: better to refuse to start than
		// to serve a dashboard that errors on first interaction.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			records, err := store.FetchBlockGroupMetrics(gctx)
			if err != nil {
				return err
			}
			zap.L().Info("loaded block group metrics", zap.Int("records", len(records)))
			return nil
		})
		g.Go(func() error {
			gyms, err := store.FetchGymLocations(gctx)
			if err != nil {
				return err
			}
			zap.L().Info("loaded gym locations", zap.Int("gyms", len(gyms)))
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		srv := server.New(store, store.Stats)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting dashboard", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
