package queue

import (
	"context"
	"errors"
	"sync"
)

var ErrTooManyDone = errors.New("queue: Done called more times than items were put")

type Source[T any] interface {
	// Get blocks until an item is available or ctx is done
	Get(ctx context.Context) (T, error)
	// Done acknowledges one item returned by Get
	Done() error
}

type Sink[T any] interface {
	Put(item T)
}

type Joinable[T any] struct {
	mu         sync.Mutex
	buf        fifo[T]
	unfinished int
	// ready is closed and replaced every time an item arrives
	ready chan struct{}
	// drained is closed while unfinished == 0
	drained chan struct{}
}

func NewJoinable[T any]() *Joinable[T] {
	drained := make(chan struct{})
	close(drained)
	return &Joinable[T]{
		ready:   make(chan struct{}),
		drained: drained,
	}
}

func (q *Joinable[T]) Put(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.buf.push(item)
	if q.unfinished == 0 {
		q.drained = make(chan struct{})
	}
	q.unfinished++

	close(q.ready)
	q.ready = make(chan struct{})
}

func (q *Joinable[T]) Get(ctx context.Context) (T, error) {
	for {
		q.mu.Lock()
		if item, ok := q.buf.pop(); ok {
			q.mu.Unlock()
			return item, nil
		}
		ready := q.ready
		q.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			var zero T
			return zero, context.Cause(ctx)
		}
	}
}

func (q *Joinable[T]) Done() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished == 0 {
		return ErrTooManyDone
	}
	q.unfinished--
	if q.unfinished == 0 {
		close(q.drained)
	}
	return nil
}

// Join blocks until every item put so far has been acknowledged with Done.
func (q *Joinable[T]) Join(ctx context.Context) error {
	q.mu.Lock()
	drained := q.drained
	q.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Len is the number of items waiting for a consumer.
func (q *Joinable[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.len()
}

// Unfinished is the number of items put but not yet acknowledged.
func (q *Joinable[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}

var (
	_ Source[int] = (*Joinable[int])(nil)
	_ Sink[int]   = (*Joinable[int])(nil)
)
