package queue

type fifo[T any] struct {
	items []T
	head  int
}

func (f *fifo[T]) push(item T) {
	f.items = append(f.items, item)
}

func (f *fifo[T]) pop() (T, bool) {
	var zero T
	if f.head == len(f.items) {
		return zero, false
	}
	item := f.items[f.head]
	f.items[f.head] = zero
	f.head++

	if f.head == len(f.items) {
		f.items = f.items[:0]
		f.head = 0
	} else if f.head > 64 && f.head*2 > len(f.items) {
		n := copy(f.items, f.items[f.head:])
		clear(f.items[n:])
		f.items = f.items[:n]
		f.head = 0
	}
	return item, true
}

func (f *fifo[T]) len() int {
	return len(f.items) - f.head
}

func (f *fifo[T]) drain() []T {
	out := make([]T, f.len())
	copy(out, f.items[f.head:])
	f.items = nil
	f.head = 0
	return out
}
