package automator

import "time"

// Observer receives pipeline events. Implementations must be safe for
// concurrent use; workers call them from their own goroutines.
type Observer interface {
	RunStarted(runID string)
	RunFinished(runID string, took time.Duration, err error)
	WorkersSpawned(stage string, n int)
	ItemsEnqueued(stage string, n int)
	ItemProcessed(stage string, took time.Duration)
	WorkerFailed(stage string)
}

type NopObserver struct{}

func (NopObserver) RunStarted(string) {}
func (NopObserver) RunFinished(string, time.Duration, error) {}
func (NopObserver) WorkersSpawned(string, int) {}
func (NopObserver) ItemsEnqueued(string, int) {}
func (NopObserver) ItemProcessed(string, time.Duration) {}
func (NopObserver) WorkerFailed(string) {}

var _ Observer = NopObserver{}
