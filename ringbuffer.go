// Package ringbuffer provides fixed-capacity ring buffers for handing data
// from many producers to a consumer without parking goroutines.
//
// Torus and Donut are lock-free: producers claim slots with fetch-and-add on a
// shared Cursor. LockingTorus and LockingDonut keep the same contracts but run
// their critical sections under a SpinLock. Pool hands out preallocated records
// that are populated in place and polled back by a consumer.
//
// Every buffer overwrites old data instead of rejecting new data. Capacity must
// be a power of two.
package ringbuffer

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidCapacity is returned by every constructor given a capacity that
// is not a positive power of two.
var ErrInvalidCapacity = errors.New("capacity must be power of 2 and > 0")

// maxCapacity keeps every raw cursor value inside int32.
const maxCapacity = 1 << 30

// Buffer is the contract shared by the four ring variants.
type Buffer[T any] interface {
	// Add stores v, overwriting old data when the ring is full.
	Add(v T)
	// Consume returns the next element, or (zero, false) when there is none.
	Consume() (T, bool)
	// ConsumeAll applies visit to the currently available elements.
	ConsumeAll(visit func(T))
	// Capacity returns the fixed number of slots.
	Capacity() int
}

var (
	_ Buffer[int] = (*Torus[int])(nil)
	_ Buffer[int] = (*Donut[int])(nil)
	_ Buffer[int] = (*LockingTorus[int])(nil)
	_ Buffer[int] = (*LockingDonut[int])(nil)
)

func checkCapacity(capacity int) error {
	if capacity <= 0 || capacity&(capacity-1) != 0 || capacity > maxCapacity {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return nil
}

// storage is the backing array shared by the ring variants.
// A nil slot is empty.
type storage[T any] struct {
	slots []atomic.Pointer[T]
	mask  int32
}

func newStorage[T any](capacity int) (storage[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return storage[T]{}, err
	}
	return storage[T]{
		slots: make([]atomic.Pointer[T], capacity),
		mask:  int32(capacity - 1),
	}, nil
}

// Capacity returns the fixed number of slots.
func (s *storage[T]) Capacity() int {
	return len(s.slots)
}

// fold maps a raw cursor value onto a slot index.
func (s *storage[T]) fold(raw int32) int32 {
	return raw & s.mask
}

func (s *storage[T]) claim(c *Cursor) int32 {
	return claim(c, s.mask)
}

// claim takes the next raw value from c and folds it with mask. The folded
// form is offered back to the cursor; any goroutine may publish it and losing
// that race is fine, since the caller already holds its slot.
func claim(c *Cursor, mask int32) int32 {
	raw := c.FetchAndAdd(1)
	i := raw & mask
	if raw != i {
		c.CompareAndSwap(raw, i)
	}
	return i
}

func (s *storage[T]) slot(i int32) *atomic.Pointer[T] {
	return &s.slots[i&s.mask]
}

// Snapshot copies the live elements in slot order. It takes no lock and may
// observe a buffer in the middle of an update.
func (s *storage[T]) Snapshot() []T {
	out := make([]T, 0, len(s.slots))
	for i := range s.slots {
		if p := s.slots[i].Load(); p != nil {
			out = append(out, *p)
		}
	}
	return out
}
