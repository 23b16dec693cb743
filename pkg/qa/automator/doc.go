// Package automator builds and runs a linear chain of worker pools connected
// by queues.
//
// Stages are registered by name together with their successor, their worker
// count and the function their workers apply to every item. The entry stage
// is called Input and the terminal stage Output; the terminal stage has no
// workers and only collects results.
//
//	a := automator.New("example")
//	a.MustRegister(automator.Input, "cube", 2, square)
//	a.MustRegister("cube", automator.Output, 2, cube)
//	_ = a.SetInputData(automator.Items(1, 2, 3))
//	results, err := a.Run(ctx)
//
// Run builds one queue per stage by walking from Input to Output, spawns the
// pools, pushes every bound item and then shuts the stages down one after
// another: wait until the stage queue is fully acknowledged, enqueue one exit
// sentinel per worker, wait for the workers to return. The terminal queue is
// drained last, so results come back in completion order. With a single
// worker per stage that is also submission order.
//
// A worker function that panics kills its worker without acknowledging the
// item it was working on, and a stage with zero workers never consumes
// anything. In both cases Run blocks until Kill is called or the context
// passed to Run is done. There is no retry and no dead letter queue.
//
// RunForever starts the same graph but skips the shutdown sequence; items
// bound while it is live go straight to the running queues, Output returns
// whatever reached the terminal queue so far and Kill stops everything.
package automator
