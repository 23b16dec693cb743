package automator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/core"
	"github.com/ib-77/queueautomator/pkg/qa/pool"
	"github.com/ib-77/queueautomator/pkg/qa/queue"
)

type execution struct {
	id      ulid.ULID
	ctx     context.Context
	cancel  context.CancelCauseFunc
	graph   *graph
	pools   []*pool.Pool
	forever bool
	started time.Time
	once    sync.Once
	// cause is what ended the run, set once by finish
	cause error
}

// Run executes the pipeline once and returns what reached the terminal
// stage, in completion order. It has no timeout of its own: a stuck or
// failed worker keeps it blocked until ctx is done or Kill is called, in
// which case the in-flight items are lost and the cause is returned.
func (a *Automator) Run(ctx context.Context) ([]any, error) {
	exec, err := a.start(ctx, false)
	if err != nil {
		return nil, err
	}

	for i, e := range exec.graph.edges {
		if err := a.stop(exec, e, exec.pools[i]); err != nil {
			return nil, a.finish(exec, err)
		}
	}

	results := qa.Payloads(exec.graph.terminal.Drain())
	// a Kill racing with the drain wins: the run is reported as killed
	if err := a.finish(exec, nil); err != nil {
		return nil, err
	}
	return results, nil
}

// RunForever starts the pipeline and returns as soon as the workers are up
// and the bound data is enqueued. The workers live until Kill is called or
// ctx is done.
func (a *Automator) RunForever(ctx context.Context) error {
	_, err := a.start(ctx, true)
	return err
}

// Output drains the results a RunForever pipeline produced so far. The
// results of a synchronous Run belong to Run alone, so Output reports
// qa.ErrNotRunning for it.
func (a *Automator) Output() ([]any, error) {
	a.mu.Lock()
	exec := a.exec
	a.mu.Unlock()

	if exec == nil || !exec.forever {
		return nil, qa.ErrNotRunning
	}
	return qa.Payloads(exec.graph.terminal.Drain()), nil
}

// Kill stops every worker of the current run right away. Nothing is
// drained or acknowledged; a blocked Run returns qa.ErrKilled. Kill without
// a run is a no-op.
func (a *Automator) Kill() {
	a.mu.Lock()
	exec := a.exec
	a.mu.Unlock()

	if exec == nil {
		return
	}
	a.log.Warn("killing pipeline", zap.String("run_id", exec.id.String()))
	a.finish(exec, qa.ErrKilled)
}

// RunID identifies the current run, or is empty when nothing runs.
func (a *Automator) RunID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exec == nil {
		return ""
	}
	return a.exec.id.String()
}

// Running reports whether a Run or RunForever is in progress.
func (a *Automator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exec != nil
}

// start validates the definition, spawns every pool in traversal order and
// enqueues the bound data. Nothing is spawned if the definition is invalid.
func (a *Automator) start(ctx context.Context, forever bool) (*execution, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exec != nil {
		return nil, qa.ErrRunning
	}

	g, err := buildGraph(a.stages, Input)
	if err != nil {
		return nil, err
	}

	for _, name := range a.order {
		if _, reachable := g.queues[name]; !reachable && len(a.stages[name].data) > 0 {
			return nil, fmt.Errorf("%w: %q", qa.ErrUnreachableData, name)
		}
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	exec := &execution{
		id:      ulid.Make(),
		ctx:     runCtx,
		cancel:  cancel,
		graph:   g,
		forever: forever,
		started: time.Now(),
	}

	log := a.log.With(zap.String("run_id", exec.id.String()))
	log.Info("pipeline starting", zap.Int("stages", len(g.edges)), zap.Bool("forever", forever))
	a.observer.RunStarted(exec.id.String())

	for _, e := range g.edges {
		p := pool.Spawn(runCtx, e.from, e.workers, g.queues[e.from], g.sink(e.to), e.fn, a.handlers(log, e.from))
		exec.pools = append(exec.pools, p)
		a.observer.WorkersSpawned(e.from, e.workers)
		log.Debug("workers spawned", zap.String("stage", e.from), zap.Int("workers", e.workers))
	}

	for _, name := range a.order {
		if data := a.stages[name].data; len(data) > 0 {
			a.enqueue(name, g.queues[name], data)
		}
	}

	a.exec = exec

	if forever {
		go func() {
			<-runCtx.Done()
			a.finish(exec, context.Cause(runCtx))
		}()
	}
	return exec, nil
}

// stop waits for the stage backlog to be acknowledged, then sends one exit
// sentinel per worker and waits for the workers to return.
func (a *Automator) stop(exec *execution, e edge, p *pool.Pool) error {
	q := exec.graph.queues[e.from]
	if err := q.Join(exec.ctx); err != nil {
		return err
	}

	for range e.workers {
		q.Put(qa.Exit())
	}

	if err := p.Wait(exec.ctx); err != nil {
		return err
	}

	a.log.Debug("stage finished", zap.String("run_id", exec.id.String()), zap.String("stage", e.from))
	return nil
}

// finish ends a run exactly once. A non-nil cause cancels the workers that
// are still running. It returns the cause the run actually ended with, which
// is the one of the first call.
func (a *Automator) finish(exec *execution, cause error) error {
	exec.once.Do(func() {
		exec.cause = cause
		exec.cancel(cause)

		a.mu.Lock()
		if a.exec == exec {
			a.exec = nil
		}
		a.mu.Unlock()

		took := time.Since(exec.started)
		a.observer.RunFinished(exec.id.String(), took, cause)

		fields := []zap.Field{zap.String("run_id", exec.id.String()), zap.Duration("took", took)}
		if cause == nil {
			a.log.Info("pipeline finished", fields...)
			return
		}
		fields = append(fields, zap.Error(cause))
		if qa.IsCancellationError(cause) {
			a.log.Warn("pipeline aborted", fields...)
			return
		}
		a.log.Error("pipeline aborted", fields...)
	})
	return exec.cause
}

// enqueue must be called with a.mu held.
func (a *Automator) enqueue(name string, q *queue.Joinable[qa.Message], items []any) {
	for _, item := range items {
		q.Put(qa.Wrap(item))
	}
	a.observer.ItemsEnqueued(name, len(items))
	a.log.Debug("items enqueued", zap.String("stage", name), zap.Int("items", len(items)))
}

func (a *Automator) handlers(log *zap.Logger, stage string) core.Handlers {
	return core.Handlers{
		OnProcessed: func(ctx context.Context, in qa.Message, took time.Duration) {
			a.observer.ItemProcessed(stage, took)
		},
		OnFailure: func(ctx context.Context, in qa.Message, err error) {
			opts, _ := core.GetWorkerOptions(ctx)
			log.Error("worker function failed, item left unacknowledged",
				zap.String("stage", stage),
				zap.Int("slot", opts.Slot),
				zap.String("item_id", in.Id().String()),
				zap.Error(err))
			a.observer.WorkerFailed(stage)
		},
		OnExit: func(ctx context.Context) {
			opts, _ := core.GetWorkerOptions(ctx)
			log.Debug("worker done", zap.String("stage", stage), zap.Int("slot", opts.Slot))
		},
	}
}
