package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/internal/workers"
	"github.com/ib-77/queueautomator/pkg/qa/automator"
	"github.com/ib-77/queueautomator/pkg/qa/chain"
)

func demoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "items",
			Usage: "number of input items",
			Value: 30,
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "workers per stage, 0 spreads the CPUs over the stages (maybe only)",
			Value: 2,
		},
		&cli.DurationFlag{
			Name:  "delay",
			Usage: "simulated work per item",
			Value: 200 * time.Millisecond,
		},
	}
}

func newDemoPipelineCmd() *cli.Command {
	return &cli.Command{
		Name:  "pipeline",
		Usage: "double, square, cube and add two to a range of numbers",
		Flags: demoFlags(),
		Action: func(ctx *cli.Context) error {
			log := getLogger(ctx)
			pipeline, err := demoPipeline(log, ctx.Int("items"), ctx.Int("workers"), ctx.Duration("delay"))
			if err != nil {
				return err
			}

			start := time.Now()
			results, err := pipeline.Run(ctx.Context)
			if err != nil {
				return err
			}

			fmt.Fprintln(ctx.App.Writer, results)
			fmt.Fprintf(ctx.App.Writer, "Took %.2fs\n", time.Since(start).Seconds())
			return nil
		},
	}
}

func newDemoMaybeCmd() *cli.Command {
	return &cli.Command{
		Name:  "maybe",
		Usage: "a chain that inserts data between steps and defaults nothing items to 0",
		Flags: demoFlags(),
		Action: func(ctx *cli.Context) error {
			log := getLogger(ctx)
			set := workers.New(ctx.Duration("delay"), log)
			n := ctx.Int("items")
			w := chain.Workers(ctx.Int("workers"))

			start := time.Now()
			results, err := chain.New(chain.WithLogger(log)).
				Insert(workers.Range(0, n)...).
				Then(set.Double(), w).
				Insert(workers.Range(n, 2*n)...).
				Then(set.Square(), w).
				Insert(workers.Range(2*n, 3*n)...).
				Maybe(ctx.Context, set.Cube(), w, chain.Default(0))
			if err != nil {
				return err
			}

			fmt.Fprintln(ctx.App.Writer, results)
			fmt.Fprintf(ctx.App.Writer, "Took %.2fs\n", time.Since(start).Seconds())
			return nil
		},
	}
}

func demoPipeline(log *zap.Logger, items, n int, delay time.Duration) (*automator.Automator, error) {
	if n < 1 {
		// a stage without workers never drains and the run would hang
		return nil, fmt.Errorf("demo pipeline needs at least one worker per stage, got %d", n)
	}

	set := workers.New(delay, log)

	pipeline := automator.New("demo", automator.WithLogger(log))
	stages := []struct {
		name, next string
		fn         automator.WorkerFunc
	}{
		{name: automator.Input, next: "square_queue", fn: set.Double()},
		{name: "square_queue", next: "cube_queue", fn: set.Square()},
		{name: "cube_queue", next: "add_2_queue", fn: set.Cube()},
		{name: "add_2_queue", next: automator.Output, fn: set.AddTwo()},
	}
	for _, st := range stages {
		if _, err := pipeline.Register(st.name, st.next, n, st.fn); err != nil {
			return nil, err
		}
	}

	if err := pipeline.SetInputData(workers.Range(0, items)); err != nil {
		return nil, err
	}
	return pipeline, nil
}
