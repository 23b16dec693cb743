package automator

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Reserved stage names. Every pipeline starts at Input and ends at Output.
const (
	Input  = "input"
	Output = "output"
)

// WorkerFunc is applied by a stage to every item it consumes. It must not
// rely on state left behind by previous calls: items of one stage are
// spread over all of its workers in no particular order.
type WorkerFunc func(item any) any

// Option configures an Automator at construction.
type Option func(*Automator)

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(a *Automator) {
		a.log = log
	}
}

// WithObserver reports run and stage events to o.
func WithObserver(o Observer) Option {
	return func(a *Automator) {
		a.observer = o
	}
}

// Automator holds a stage registry and runs it. One run may be active at a
// time; all methods are safe for concurrent use.
type Automator struct {
	name     string
	log      *zap.Logger
	observer Observer

	mu     sync.Mutex
	stages map[string]*stage
	order  []string
	exec   *execution
}

// New returns an empty automator holding only the terminal stage.
func New(name string, opts ...Option) *Automator {
	a := &Automator{
		name:     name,
		log:      zap.NewNop(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(zap.String("automator", name))
	a.stages = terminalOnly()
	return a
}

func (a *Automator) Name() string {
	return a.name
}

// String renders the automator as QueueAutomator[name].
func (a *Automator) String() string {
	return fmt.Sprintf("QueueAutomator[%s]", a.name)
}

func terminalOnly() map[string]*stage {
	return map[string]*stage{
		Output: {name: Output},
	}
}
