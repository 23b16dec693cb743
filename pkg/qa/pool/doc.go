// Package pool spawns and joins the workers of one pipeline stage. Every
// worker of a pool runs core.Locomotive over the same input queue, so the
// pool size is the stage parallelism. Pools are stopped gracefully with exit
// sentinels (one per worker) or forcibly by cancelling the context they were
// spawned with.
package pool
