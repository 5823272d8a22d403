package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/studyhub/internal/infrastructure/telemetry"
	httpapi "github.com/alem-hub/studyhub/internal/interface/http"
	"github.com/alem-hub/studyhub/pkg/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.HTTP.Addr = serveAddr
	}
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, log, telemetry.Config{
		Enabled:     cfg.Observability.TracingEnabled,
		ServiceName: cfg.App.Name,
		Environment: string(cfg.App.Environment),
		Version:     cfg.App.Version,
		SampleRatio: cfg.Observability.TracingSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	comps, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(httpapi.Config{
		Addr:           cfg.HTTP.Addr,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
		ServiceName:    cfg.App.Name,
		EnableMetrics:  cfg.Observability.MetricsEnabled,
		Debug:          cfg.App.Debug,
	}, comps.app, comps.health, log)

	log.Info("studyhub starting",
		logger.String("version", cfg.App.Version),
		logger.String("store", cfg.Store.Backend),
		logger.String("lock", cfg.Lock.Backend),
		logger.Bool("redis", cfg.Redis.Enabled),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(sctx)
		if cerr := comps.Close(); cerr != nil {
			log.Warn("close components", logger.Err(cerr))
		}
		if terr := shutdownTracing(sctx); terr != nil {
			log.Warn("shutdown tracing", logger.Err(terr))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("studyhub stopped")
	return nil
}
