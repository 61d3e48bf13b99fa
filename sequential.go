package ringbuffer

import "github.com/eapache/queue"

// Sequential is a bounded FIFO for single-goroutine use. It has none of the
// concurrency machinery of the other buffers and serves as the baseline they
// are measured against.
type Sequential[T any] struct {
	q        *queue.Queue
	capacity int
}

// NewSequential creates a Sequential. capacity must be a power of two (1<<k),
// like every other buffer in this package.
func NewSequential[T any](capacity int) (*Sequential[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	return &Sequential[T]{q: queue.New(), capacity: capacity}, nil
}

// Add appends v, dropping the oldest element when full.
// It reports whether an element was dropped.
func (s *Sequential[T]) Add(v T) (overwrote bool) {
	if s.q.Length() == s.capacity {
		s.q.Remove()
		overwrote = true
	}
	s.q.Add(v)
	return overwrote
}

// Offer appends v only if there is room.
func (s *Sequential[T]) Offer(v T) bool {
	if s.q.Length() == s.capacity {
		return false
	}
	s.q.Add(v)
	return true
}

// Poll removes and returns the oldest element.
func (s *Sequential[T]) Poll() (T, bool) {
	if s.q.Length() == 0 {
		var zero T
		return zero, false
	}
	v, _ := s.q.Remove().(T)
	return v, true
}

// Peek returns the oldest element without removing it.
func (s *Sequential[T]) Peek() (T, bool) {
	if s.q.Length() == 0 {
		var zero T
		return zero, false
	}
	v, _ := s.q.Peek().(T)
	return v, true
}

// Len returns the number of elements held.
func (s *Sequential[T]) Len() int {
	return s.q.Length()
}

// Capacity returns the maximum number of elements held.
func (s *Sequential[T]) Capacity() int {
	return s.capacity
}

// Clear drops every element.
func (s *Sequential[T]) Clear() {
	s.q = queue.New()
}
