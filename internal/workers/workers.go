// Package workers holds the stage functions used by the CLI demos, the
// examples and the HTTP service.
package workers

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

// Set builds demo stage functions that sleep for Delay before answering,
// standing in for real work.
type Set struct {
	Delay time.Duration
	Log   *zap.Logger
}

func New(delay time.Duration, log *zap.Logger) Set {
	if log == nil {
		log = zap.NewNop()
	}
	return Set{Delay: delay, Log: log}
}

func (s Set) Double() automator.WorkerFunc {
	return s.arith("times two", func(n int) int { return n * 2 })
}

func (s Set) Square() automator.WorkerFunc {
	return s.arith("squared", func(n int) int { return n * n })
}

func (s Set) Cube() automator.WorkerFunc {
	return s.arith("cubed", func(n int) int { return n * n * n })
}

func (s Set) AddTwo() automator.WorkerFunc {
	return s.arith("plus two", func(n int) int { return n + 2 })
}

// Process handles one submitted string and reports it back.
func (s Set) Process() automator.WorkerFunc {
	return func(item any) any {
		data := fmt.Sprint(item)
		s.Log.Info("processing", zap.String("data", data))
		time.Sleep(s.Delay)
		s.Log.Info("done", zap.String("data", data))
		return "processed " + data
	}
}

func (s Set) arith(op string, fn func(int) int) automator.WorkerFunc {
	return func(item any) any {
		n := MustInt(item)
		time.Sleep(s.Delay)
		res := fn(n)
		s.Log.Debug(op, zap.Int("in", n), zap.Int("out", res))
		return res
	}
}

// MustInt converts any built-in integer payload to int. Other payloads
// panic, which the automator reports as a worker failure.
func MustInt(item any) int {
	switch v := item.(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		return int(v)
	default:
		panic(fmt.Sprintf("workers: %T is not an integer", item))
	}
}

// Range returns [from, to) as pipeline items.
func Range(from, to int) []any {
	if to <= from {
		return nil
	}
	items := make([]any, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, i)
	}
	return items
}
