// Package queue implements the unbounded FIFO queues that connect pipeline
// stages. A Joinable queue counts every put item until a consumer marks it
// done, which lets a producer block on Join until the stage has consumed its
// whole backlog. A Simple queue only collects items and is used for the
// terminal stage, which has no consumers.
//
// Both queues are safe for concurrent use by any number of goroutines and
// never block on Put.
package queue
