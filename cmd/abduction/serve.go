// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/giraugh/abduction-sub000/internal/admin"
	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/feed"
	"github.com/giraugh/abduction-sub000/internal/logging"
	"github.com/giraugh/abduction-sub000/internal/match"
	"github.com/giraugh/abduction-sub000/internal/observability"
	"github.com/giraugh/abduction-sub000/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run matches and serve the viewer feed",
		Long: `Run the match loop against PostgreSQL, serve tick events and logs to
viewers, expose metrics and health probes, and accept admin commands on stdin.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	addConfigFlags(cmd.Flags())
	return cmd
}

// httpServer is implemented by the feed and observability servers.
type httpServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
}

func runServe(ctx context.Context, cfg *Config, stdin io.Reader, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.SetDefault("abduction", version, cfg.LogFormat, level)

	dbURL, err := databaseURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := migrateUp(dbURL); err != nil {
			return err
		}
	}

	pool, err := store.Open(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("connected to database")

	publisher := core.NewPublisher(core.NewBroadcaster(), store.NewLogArchive(pool))
	runner := match.NewRunner(cfg.runnerConfig(), store.NewPostgres(pool), publisher)

	g, gctx := errgroup.WithContext(ctx)
	abort := func(err error) error {
		stop()
		_ = g.Wait()
		return err
	}

	feedSrv := feed.NewServer(cfg.FeedAddr, runner, publisher)
	if err := serveHTTP(gctx, g, "feed", feedSrv); err != nil {
		return abort(err)
	}

	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, runner.CheckReady, match.RegisterMetrics, feed.RegisterMetrics)
		obs.Metrics().BuildInfo.WithLabelValues(version).Set(1)
		if err := serveHTTP(gctx, g, "observability", obs); err != nil {
			return abort(err)
		}
	}

	g.Go(func() error { return runner.Run(gctx) })

	if cfg.AdminStdin {
		console := admin.NewConsole(runner, stdout)
		g.Go(func() error { return console.Run(gctx, stdin) })
	}

	slog.Info("abduction ready",
		"feed_addr", cfg.FeedAddr,
		"metrics_addr", cfg.MetricsAddr,
		"tick_interval", cfg.TickInterval,
	)

	err = g.Wait()
	slog.Info("shutdown complete")
	return err
}

// serveHTTP starts srv and stops it when ctx ends. A serve error fails the
// group, which shuts everything else down.
func serveHTTP(ctx context.Context, g *errgroup.Group, name string, srv httpServer) error {
	errCh, err := srv.Start()
	if err != nil {
		return err
	}
	g.Go(func() error {
		var serveErr error
		select {
		case serveErr = <-errCh:
			if serveErr != nil {
				slog.Error("server error, triggering shutdown", "server", name, "error", serveErr)
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping server", "server", name, "error", err)
		}
		return serveErr
	})
	return nil
}
