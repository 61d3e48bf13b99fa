package ringbuffer

import "context"

// LockingDonut is Donut with its critical sections held under a SpinLock
// instead of fetch-and-add.
type LockingDonut[T any] struct {
	storage[T]
	lock SpinLock
	head Cursor
	tail Cursor
}

// NewLockingDonut creates a LockingDonut. capacity must be a power of two (1<<k).
func NewLockingDonut[T any](capacity int) (*LockingDonut[T], error) {
	s, err := newStorage[T](capacity)
	if err != nil {
		return nil, err
	}
	return &LockingDonut[T]{storage: s}, nil
}

// Add stores v at the head, evicting the oldest element if the slot was live.
func (d *LockingDonut[T]) Add(v T) {
	p := &v
	d.lock.Lock()
	d.add(p)
	d.lock.Unlock()
}

// TryAdd is Add if the lock is free right now. On false the ring is untouched.
func (d *LockingDonut[T]) TryAdd(v T) bool {
	p := &v
	if !d.lock.TryLock() {
		return false
	}
	d.add(p)
	d.lock.Unlock()
	return true
}

// AddContext is Add that gives up when ctx is done.
func (d *LockingDonut[T]) AddContext(ctx context.Context, v T) error {
	p := &v
	if err := d.lock.LockContext(ctx); err != nil {
		return err
	}
	d.add(p)
	d.lock.Unlock()
	return nil
}

func (d *LockingDonut[T]) add(p *T) {
	h := d.head.Read()
	d.head.Write(h + 1)
	if d.slot(h).Swap(p) != nil {
		d.tail.Write(d.tail.Read() + 1)
	}
}

// Consume removes and returns the element at the tail, or (zero, false) if
// that slot is empty. The tail advances either way.
func (d *LockingDonut[T]) Consume() (T, bool) {
	d.lock.Lock()
	t := d.tail.Read()
	d.tail.Write(t + 1)
	p := d.slot(t).Swap(nil)
	d.lock.Unlock()

	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// ConsumeAll calls Consume once per slot and applies visit to every element
// it returns. visit runs outside the lock.
func (d *LockingDonut[T]) ConsumeAll(visit func(T)) {
	for range d.slots {
		if v, ok := d.Consume(); ok {
			visit(v)
		}
	}
}

// HasRoom reports whether the head slot is free. Unsynchronized; a hint only.
func (d *LockingDonut[T]) HasRoom() bool {
	return d.slot(d.head.Read()).Load() == nil
}

// IsEmpty reports whether the tail slot is empty. Unsynchronized; a hint only.
func (d *LockingDonut[T]) IsEmpty() bool {
	return d.slot(d.tail.Read()).Load() == nil
}
