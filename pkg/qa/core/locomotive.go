package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/queue"
)

// PanicError is what a worker reports when its stage function panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker function panicked: %v", e.Value)
}

type Handlers struct {
	OnProcessed func(ctx context.Context, in qa.Message, took time.Duration)
	// OnFailure is called once before a worker dies on a failing item. The
	// item is never acknowledged.
	OnFailure func(ctx context.Context, in qa.Message, err error)
	OnExit    func(ctx context.Context)
}

// Locomotive runs one worker of a stage until it receives the exit sentinel
// or ctx is cancelled.
func Locomotive(ctx context.Context, inputQ queue.Source[qa.Message], outQ queue.Sink[qa.Message],
	engine func(item any) any, handlers Handlers, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		in, err := inputQ.Get(ctx)
		if err != nil {
			return
		}

		if in.IsExit() {
			_ = inputQ.Done()
			if handlers.OnExit != nil {
				handlers.OnExit(ctx)
			}
			return
		}

		start := time.Now()
		res, err := invoke(engine, in.Payload())
		if err != nil {
			if handlers.OnFailure != nil {
				handlers.OnFailure(ctx, in, err)
			}
			return
		}

		// killed while the function ran: the result is discarded
		if ctx.Err() != nil {
			return
		}

		outQ.Put(in.Forward(res))
		_ = inputQ.Done()

		if handlers.OnProcessed != nil {
			handlers.OnProcessed(ctx, in, time.Since(start))
		}
	}
}

func invoke(engine func(item any) any, payload any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return engine(payload), nil
}
