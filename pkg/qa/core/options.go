package core

import "context"

type OptionKey string

const (
	WorkerOptionKey OptionKey = "worker_options"
)

type WorkerOptions struct {
	Stage string
	Slot  int
}

// WithWorkerOptions tags ctx with the stage a worker serves and its slot
// number within the stage pool.
func WithWorkerOptions(ctx context.Context, stage string, slot int) context.Context {
	return context.WithValue(ctx, WorkerOptionKey, WorkerOptions{Stage: stage, Slot: slot})
}

func GetWorkerOptions(ctx context.Context) (WorkerOptions, bool) {
	options, ok := ctx.Value(WorkerOptionKey).(WorkerOptions)
	return options, ok
}

