package ringbuffer

import (
	"errors"
	"fmt"
)

// Torus is a lock-free, overwrite-only ring. Producers never wait: each Add
// takes the next slot and stores into it whether or not the old value was
// ever read. Consumers only get a non-destructive sweep of the whole ring.
//
// Hard usage limit: at most Capacity() Add calls may be in flight at the same
// time. Beyond that, two producers can land on the same slot in the same lap
// and one value is lost in a race. Size the ring for the number of producing
// goroutines.
type Torus[T any] struct {
	storage[T]
	head Cursor
}

// NewTorus creates a Torus. capacity must be a power of two (1<<k).
func NewTorus[T any](capacity int) (*Torus[T], error) {
	s, err := newStorage[T](capacity)
	if err != nil {
		return nil, err
	}
	return &Torus[T]{storage: s}, nil
}

// Add stores v at the next slot. Safe to call from many goroutines.
func (t *Torus[T]) Add(v T) {
	h := t.head.FetchAndAdd(1)
	t.slot(t.fold(h)).Store(&v)
}

// Consume is not supported: a Torus has no tail. It always panics.
func (t *Torus[T]) Consume() (T, bool) {
	panic(fmt.Errorf("ringbuffer: Torus.Consume: %w", errors.ErrUnsupported))
}

// ConsumeAll applies visit to every non-empty slot, once each, starting at the
// oldest element when the ring has wrapped and at slot 0 otherwise. Nothing is
// removed; a second call with no Add in between visits the same elements.
func (t *Torus[T]) ConsumeAll(visit func(T)) {
	h := t.head.ReadFenced()
	h1 := t.fold(h)
	if h1 != h {
		t.head.CompareAndSwap(h, h1)
	}

	start := h1
	if t.slot(h1).Load() == nil {
		start = 0
	}
	for i := start; i < start+int32(len(t.slots)); i++ {
		if p := t.slot(i).Load(); p != nil {
			visit(*p)
		}
	}
}
