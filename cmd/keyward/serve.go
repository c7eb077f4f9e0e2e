package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/keyward/internal/app"
	"github.com/dropDatabas3/keyward/internal/http/server"
	"github.com/dropDatabas3/keyward/internal/observability/logger"
)

func newServeCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *gf)
		},
	}
}

func runServe(ctx context.Context, gf globalFlags) error {
	cfg, err := loadConfig(&gf)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.L()
	a, err := app.New(ctx, cfg, app.Options{Version: version})
	if err != nil {
		log.Error("startup failed", logger.Err(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", logger.Err(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.Server.Addr, a.Handler, server.Config{
			Name:            "api",
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		})
	})
	if a.Metrics != nil {
		g.Go(func() error {
			return server.ListenAndServe(gctx, cfg.Server.MetricsAddr, a.Metrics, server.Config{
				Name:            "metrics",
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", logger.Err(err))
		return err
	}
	return nil
}
