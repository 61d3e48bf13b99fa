package ringbuffer

// Donut is a lock-free bounded queue that overwrites instead of rejecting.
// When a producer overwrites a slot that still holds an unconsumed element,
// it also advances the tail, so the queue never holds more than Capacity()
// elements and the oldest one is the one evicted.
//
// As with Torus, at most Capacity() Add calls may be in flight at once.
//
// Consume is destructive; ConsumeAll is a peek. Both are deliberate.
type Donut[T any] struct {
	storage[T]
	head Cursor
	tail Cursor
}

// NewDonut creates a Donut. capacity must be a power of two (1<<k).
func NewDonut[T any](capacity int) (*Donut[T], error) {
	s, err := newStorage[T](capacity)
	if err != nil {
		return nil, err
	}
	return &Donut[T]{storage: s}, nil
}

// Add stores v at the head. Safe to call from many goroutines.
func (d *Donut[T]) Add(v T) {
	s := d.claim(&d.head)
	if d.slot(s).Swap(&v) != nil {
		// overwrote a live element: move the tail past it
		d.tail.FetchAndAdd(1)
	}
}

// Consume returns the element at the tail, or (zero, false) if the slot is
// empty. The tail advances either way.
//
// The slot is cleared unless it is the slot the head points at, where a
// producer may be about to write. That check races with producers and only
// narrows the window; it does not close it.
func (d *Donut[T]) Consume() (T, bool) {
	t := d.claim(&d.tail)
	s := d.slot(t)
	p := s.Load()

	if t != d.fold(d.head.ReadFenced()) {
		s.Store(nil)
	}

	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// ConsumeAll applies visit to every non-empty slot, starting from the tail.
// Nothing is removed and the tail is restored to its value at the start.
func (d *Donut[T]) ConsumeAll(visit func(T)) {
	t := d.tail.ReadFenced()
	for i := int32(0); i < int32(len(d.slots)); i++ {
		if p := d.slot(t + i).Load(); p != nil {
			visit(*p)
		}
	}
	d.tail.WriteFenced(t)
}
