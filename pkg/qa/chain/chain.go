package chain

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

type Option func(*Chain)

// WithNothing replaces the default nothing check (qa.IsNothing).
func WithNothing(check func(any) bool) Option {
	return func(c *Chain) {
		c.nothing = check
	}
}

// WithLanes sets how many parallel lanes steps without a worker count
// share. Defaults to runtime.NumCPU().
func WithLanes(n int) Option {
	return func(c *Chain) {
		c.lanes = n
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Chain) {
		c.log = log
	}
}

func WithObserver(o automator.Observer) Option {
	return func(c *Chain) {
		c.observer = o
	}
}

type StepOption func(*step)

// Workers fixes the worker count of a step. Zero means balanced.
func Workers(n int) StepOption {
	return func(s *step) {
		s.workers = n
	}
}

// Default is returned for items the nothing check accepts. A nil default is
// the same as none: such items pass through unchanged.
func Default(v any) StepOption {
	return func(s *step) {
		s.def = v
		s.hasDefault = v != nil
	}
}

type step struct {
	fn         automator.WorkerFunc
	workers    int
	def        any
	hasDefault bool
}

type Chain struct {
	automator *automator.Automator
	log       *zap.Logger
	observer  automator.Observer
	nothing   func(any) bool
	lanes     int

	steps    []step
	inserted map[int][]any
	err      error
	// balanced caches BalanceLanes for the chain being built; 0 means unset
	balanced int
}

func New(opts ...Option) *Chain {
	c := &Chain{
		log:      zap.NewNop(),
		observer: automator.NopObserver{},
		lanes:    runtime.NumCPU(),
		inserted: map[int][]any{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.automator = automator.New("MaybeAutomator",
		automator.WithLogger(c.log),
		automator.WithObserver(c.observer))
	return c
}

// Insert feeds items to the next step added to the chain.
func (c *Chain) Insert(items ...any) *Chain {
	c.inserted[len(c.steps)] = items
	return c
}

// Then appends a step.
func (c *Chain) Then(fn automator.WorkerFunc, opts ...StepOption) *Chain {
	if fn == nil && c.err == nil {
		c.err = fmt.Errorf("%w: step %d", qa.ErrNilWorker, len(c.steps))
	}
	c.steps = append(c.steps, newStep(fn, opts))
	return c
}

// Maybe appends the last step, runs the whole chain and returns the results
// in completion order. A nil fn passes items through.
func (c *Chain) Maybe(ctx context.Context, fn automator.WorkerFunc, opts ...StepOption) ([]any, error) {
	if fn == nil {
		fn = identity
	}
	c.steps = append(c.steps, newStep(fn, opts))
	defer c.reset()

	if c.err != nil {
		return nil, c.err
	}
	if err := c.define(); err != nil {
		return nil, err
	}
	return c.automator.Run(ctx)
}

func newStep(fn automator.WorkerFunc, opts []StepOption) step {
	s := step{fn: fn}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (c *Chain) isNothing(item any) bool {
	if c.nothing != nil {
		return c.nothing(item)
	}
	return qa.IsNothing(item)
}

// define registers one stage per step: input -> queue_0 -> ... -> output.
func (c *Chain) define() error {
	last := automator.Input
	for i, s := range c.steps {
		next := automator.Output
		if i < len(c.steps)-1 {
			next = fmt.Sprintf("queue_%d", i)
		}

		workers := s.workers
		if workers == 0 {
			workers = c.balance()
		}

		w := NewWrapper(s.fn, c.isNothing)
		if s.hasDefault {
			w = w.WithDefault(s.def)
		}

		if _, err := c.automator.Register(last, next, workers, w.Maybe); err != nil {
			return err
		}
		if data := c.inserted[i]; len(data) > 0 {
			if err := c.automator.BindData(last, data); err != nil {
				return err
			}
		}
		last = next
	}
	return nil
}

func (c *Chain) balance() int {
	if c.balanced == 0 {
		c.balanced = BalanceLanes(c.lanes, len(c.steps))
		c.log.Debug("balanced workers per step",
			zap.Int("lanes", c.lanes),
			zap.Int("steps", len(c.steps)),
			zap.Int("workers", c.balanced))
	}
	return c.balanced
}

func (c *Chain) reset() {
	if err := c.automator.Reset(); err != nil {
		c.log.Warn("could not reset chain automator", zap.Error(err))
	}
	c.steps = nil
	c.inserted = map[int][]any{}
	c.err = nil
	c.balanced = 0
}
