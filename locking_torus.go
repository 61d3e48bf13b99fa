package ringbuffer

import "context"

// LockingTorus is a ring that overwrites its oldest element when full, with
// every critical section held under a SpinLock. Unlike Torus it has a tail:
// Consume removes elements in insertion order.
//
// This is the buffer a background drain goroutine is meant to poll with
// ConsumeAll and IsEmpty.
type LockingTorus[T any] struct {
	storage[T]
	lock SpinLock
	head Cursor
	tail Cursor
}

// NewLockingTorus creates a LockingTorus. capacity must be a power of two (1<<k).
func NewLockingTorus[T any](capacity int) (*LockingTorus[T], error) {
	s, err := newStorage[T](capacity)
	if err != nil {
		return nil, err
	}
	return &LockingTorus[T]{storage: s}, nil
}

// Add stores v at the head, spinning until the lock is free.
func (t *LockingTorus[T]) Add(v T) {
	p := &v
	t.lock.Lock()
	t.add(p)
	t.lock.Unlock()
}

// TryAdd stores v only if the lock is free right now. It reports whether v was
// stored; on false the ring is untouched.
func (t *LockingTorus[T]) TryAdd(v T) bool {
	p := &v
	if !t.lock.TryLock() {
		return false
	}
	t.add(p)
	t.lock.Unlock()
	return true
}

// AddContext is Add that gives up when ctx is done.
func (t *LockingTorus[T]) AddContext(ctx context.Context, v T) error {
	p := &v
	if err := t.lock.LockContext(ctx); err != nil {
		return err
	}
	t.add(p)
	t.lock.Unlock()
	return nil
}

func (t *LockingTorus[T]) add(p *T) {
	h := t.fold(t.head.Read())
	if t.slot(h).Swap(p) != nil {
		t.tail.Write(t.tail.Read() + 1)
	}
	t.head.Write(h + 1)
}

// Consume removes and returns the element at the tail, or (zero, false) when
// the ring is empty.
func (t *LockingTorus[T]) Consume() (T, bool) {
	t.lock.Lock()
	i := t.fold(t.tail.Read())
	p := t.slot(i).Swap(nil)
	if p != nil {
		i++
	}
	t.tail.Write(i)
	t.lock.Unlock()

	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// ConsumeAll removes elements one by one and applies visit to each, until the
// ring is empty. visit runs outside the lock.
func (t *LockingTorus[T]) ConsumeAll(visit func(T)) {
	for v, ok := t.Consume(); ok; v, ok = t.Consume() {
		visit(v)
	}
}

// HasRoom reports whether the head slot is free. It takes no lock; the answer
// may be stale before the caller sees it, so use it as a hint only.
func (t *LockingTorus[T]) HasRoom() bool {
	return t.slot(t.head.Read()).Load() == nil
}

// IsEmpty reports whether the tail slot is empty. It takes no lock; the answer
// may be stale before the caller sees it, so use it as a hint only.
func (t *LockingTorus[T]) IsEmpty() bool {
	return t.slot(t.tail.Read()).Load() == nil
}
