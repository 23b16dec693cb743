package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ib-77/queueautomator/internal/config"
	"github.com/ib-77/queueautomator/internal/monitoring"
	"github.com/ib-77/queueautomator/internal/server"
	"github.com/ib-77/queueautomator/internal/workers"
	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

func newServeCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a live pipeline over HTTP",
		Description: "Every POST /process/:data is pushed onto the running pipeline. " +
			"Settings come from QA_* environment variables; flags override them.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (QA_SERVER_PORT)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "parallel workers (QA_PIPELINE_WORKERS)",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ctx.IsSet("port") {
				cfg.Server.Port = ctx.Int("port")
			}
			if ctx.IsSet("workers") {
				cfg.Pipeline.Workers = ctx.Int("workers")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(ctx.Context, cfg, getLogger(ctx))
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	pipeline := automator.New(cfg.Pipeline.Name,
		automator.WithLogger(log),
		automator.WithObserver(metrics))
	pipeline.MustRegister(automator.Input, automator.Output, cfg.Pipeline.Workers,
		workers.New(cfg.Pipeline.Delay, log).Process())

	srv := server.NewServer(cfg, pipeline, metrics, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !qa.IsCancellationError(err) {
		return err
	}
	return nil
}
