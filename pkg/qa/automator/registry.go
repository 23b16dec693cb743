package automator

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/pkg/qa"
)

type stage struct {
	name      string
	successor string
	workers   int
	fn        WorkerFunc
	data      []any
}

// Stage describes a registered stage.
type Stage struct {
	Name      string `json:"name"`
	Successor string `json:"successor"`
	Workers   int    `json:"workers"`
	// Pending is the number of items bound for the next run
	Pending int `json:"pending"`
}

// Register adds a stage that consumes the queue called name with workers
// parallel workers and feeds successor. The successor does not need to
// exist yet; it is resolved when the graph is built. fn is returned as is,
// so a package level function can be registered where it is declared.
func (a *Automator) Register(name, successor string, workers int, fn WorkerFunc) (WorkerFunc, error) {
	if name == "" || successor == "" {
		return nil, qa.ErrEmptyName
	}
	if workers < 0 {
		return nil, fmt.Errorf("%w: %q has %d", qa.ErrNegativeWorkers, name, workers)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", qa.ErrNilWorker, name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, found := a.stages[name]; found {
		return nil, fmt.Errorf("%w: %q, pick another name", qa.ErrStageExists, name)
	}

	a.stages[name] = &stage{
		name:      name,
		successor: successor,
		workers:   workers,
		fn:        fn,
	}
	a.order = append(a.order, name)

	a.log.Debug("stage registered",
		zap.String("stage", name),
		zap.String("successor", successor),
		zap.Int("workers", workers))

	return fn, nil
}

// MustRegister is Register that panics on a configuration error.
func (a *Automator) MustRegister(name, successor string, workers int, fn WorkerFunc) WorkerFunc {
	fn, err := a.Register(name, successor, workers, fn)
	must(err)
	return fn
}

// BindData attaches items to the queue of a registered stage. Bound items
// are pushed when the next run starts and replace any earlier binding of
// that stage. While RunForever is live the items go straight to the running
// queue instead and the stored binding is left untouched.
func (a *Automator) BindData(name string, items []any) error {
	if name == Output {
		return qa.ErrTerminalData
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st, found := a.stages[name]
	if !found {
		return fmt.Errorf("%w: %q", qa.ErrUnknownStage, name)
	}

	if a.exec != nil && a.exec.forever {
		q, live := a.exec.graph.queues[name]
		if !live {
			return fmt.Errorf("%w: %q", qa.ErrUnreachableData, name)
		}
		a.enqueue(name, q, items)
		return nil
	}

	a.log.Debug("data bound", zap.String("stage", name), zap.Int("items", len(items)))
	st.data = slices.Clone(items)
	return nil
}

// SetInputData binds items to the entry stage.
func (a *Automator) SetInputData(items []any) error {
	return a.BindData(Input, items)
}

// Reset drops every stage except the terminal one so the automator can hold
// a different pipeline.
func (a *Automator) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exec != nil {
		return qa.ErrRunning
	}

	a.stages = terminalOnly()
	a.order = nil
	return nil
}

// Stages lists the registered stages in registration order.
func (a *Automator) Stages() []Stage {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Stage, 0, len(a.order))
	for _, name := range a.order {
		st := a.stages[name]
		out = append(out, Stage{
			Name:      st.name,
			Successor: st.successor,
			Workers:   st.workers,
			Pending:   len(st.data),
		})
	}
	return out
}

// Typed adapts a typed function to a WorkerFunc. An item of the wrong type
// makes the worker panic, which is handled like any other worker failure.
func Typed[In, Out any](fn func(In) Out) WorkerFunc {
	return func(item any) any {
		return fn(item.(In))
	}
}

// Items converts typed values to the []any expected by BindData.
func Items[T any](items ...T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
