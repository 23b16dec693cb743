package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "queueautomator",
		Usage:     "Run multi-stage worker pipelines",
		UsageText: "queueautomator [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				EnvVars: []string{"QA_LOGGING_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "human readable logs",
				EnvVars: []string{"QA_LOGGING_DEVELOPMENT"},
			},
		},
		Before: withLogger(),
		After: func(ctx *cli.Context) error {
			_ = getLogger(ctx).Sync()
			return nil
		},
		Commands: []*cli.Command{
			newServeCmd(),
			{
				Name:  "demo",
				Usage: "Run the bundled example pipelines",
				Subcommands: []*cli.Command{
					newDemoPipelineCmd(),
					newDemoMaybeCmd(),
				},
			},
		},
	}
}

func withLogger() cli.BeforeFunc {
	return func(ctx *cli.Context) error {
		log, err := logging.New(logging.Config{
			Level:       ctx.String("log-level"),
			Development: ctx.Bool("dev"),
		})
		if err != nil {
			return fmt.Errorf("invalid log settings: %w", err)
		}
		ctx.App.Metadata["log"] = log
		return nil
	}
}

func getLogger(ctx *cli.Context) *zap.Logger {
	log, ok := ctx.App.Metadata["log"].(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}
	return log
}
