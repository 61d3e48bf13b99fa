package ringbuffer

// Pool is a ring of preallocated records that are reused in place. A producer
// calls Retrieve and fills in the record it gets; a consumer calls Poll or
// PollAll to read the records retrieved since its last poll.
//
// A record returned by Retrieve belongs to the caller until Capacity() more
// Retrieve calls bring the ring back to the same slot. Nothing stops a
// consumer from polling a record before its producer finished writing it:
// populate-before-read is the caller's contract, kept only by slot separation.
//
// Poll is meant for a single consumer goroutine.
type Pool[T any] struct {
	mask    int32
	records []*T
	head    Cursor // producer
	tail    Cursor // consumer
}

// NewPool creates a Pool of capacity records built by newRecord, or by new(T)
// when newRecord is nil. capacity must be a power of two (1<<k).
func NewPool[T any](capacity int, newRecord func() *T) (*Pool[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	if newRecord == nil {
		newRecord = func() *T { return new(T) }
	}

	records := make([]*T, capacity)
	for i := range records {
		records[i] = newRecord()
		if records[i] == nil {
			panic("ringbuffer: NewPool: newRecord returned nil")
		}
	}

	return &Pool[T]{
		mask:    int32(capacity - 1),
		records: records,
	}, nil
}

// Retrieve returns the next record for the caller to populate.
// Safe to call from many goroutines.
func (p *Pool[T]) Retrieve() *T {
	return p.records[claim(&p.head, p.mask)]
}

// Poll returns the oldest record not yet polled, or (nil, false) when the
// consumer has caught up with the producers. It never blocks and never clears
// the record.
func (p *Pool[T]) Poll() (*T, bool) {
	h := p.head.ReadFenced()
	h1 := h & p.mask
	if h != h1 {
		p.head.CompareAndSwap(h, h1)
	}

	t := p.tail.Read() & p.mask
	if t == h1 {
		return nil, false
	}
	p.tail.FetchAndAdd(1)
	return p.records[t], true
}

// PollAll applies visit to every record Poll returns until it reports none.
func (p *Pool[T]) PollAll(visit func(*T)) {
	for r, ok := p.Poll(); ok; r, ok = p.Poll() {
		visit(r)
	}
}

// Capacity returns the number of records.
func (p *Pool[T]) Capacity() int {
	return len(p.records)
}
