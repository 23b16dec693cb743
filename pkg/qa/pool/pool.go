package pool

import (
	"context"
	"sync"

	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/core"
	"github.com/ib-77/queueautomator/pkg/qa/queue"
)

type Pool struct {
	stage string
	size  int
	done  chan struct{}
}

// Spawn starts lines workers for stage. A pool of zero lines is valid and
// never consumes anything.
func Spawn(ctx context.Context, stage string, lines int,
	inputQ queue.Source[qa.Message], outQ queue.Sink[qa.Message],
	engine func(item any) any, handlers core.Handlers) *Pool {

	p := &Pool{
		stage: stage,
		size:  lines,
		done:  make(chan struct{}),
	}

	wg := &sync.WaitGroup{}
	for slot := range lines {
		wg.Add(1)
		go core.Locomotive(core.WithWorkerOptions(ctx, stage, slot), inputQ, outQ, engine, handlers, wg)
	}

	go func() {
		wg.Wait()
		close(p.done)
	}()

	return p
}

// Wait blocks until every worker of the pool has returned.
func (p *Pool) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (p *Pool) Stage() string {
	return p.stage
}

func (p *Pool) Size() int {
	return p.size
}
