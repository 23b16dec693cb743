package queue

import "sync"

type Simple[T any] struct {
	mu  sync.Mutex
	buf fifo[T]
}

func NewSimple[T any]() *Simple[T] {
	return &Simple[T]{}
}

func (q *Simple[T]) Put(item T) {
	q.mu.Lock()
	q.buf.push(item)
	q.mu.Unlock()
}

// Drain removes and returns everything collected so far, in arrival order.
func (q *Simple[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.drain()
}

func (q *Simple[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.len()
}

var _ Sink[int] = (*Simple[int])(nil)
