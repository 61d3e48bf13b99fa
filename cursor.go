package ringbuffer

import (
	"strconv"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Cursor is the head or tail position of a ring. Its raw value only grows
// through FetchAndAdd and wraps on int32 overflow; with a power-of-two mask
// the folded slot stays consistent across the wrap.
//
// The accessors name the ordering each call site needs. Go only offers
// sequentially consistent atomics, so every accessor is at least as strong as
// its name says:
//
//	Read         relaxed, may be stale
//	ReadFenced   acquire, full barrier
//	Write        release
//	WriteFenced  full barrier, visible before and after
type Cursor struct {
	_ cpu.CacheLinePad
	v atomic.Int32
	_ cpu.CacheLinePad
}

// Read loads the cursor with no ordering requirement.
func (c *Cursor) Read() int32 {
	return c.v.Load()
}

// ReadFenced loads the cursor with acquire semantics.
func (c *Cursor) ReadFenced() int32 {
	return c.v.Load()
}

// Write stores v with release semantics.
func (c *Cursor) Write(v int32) {
	c.v.Store(v)
}

// WriteFenced stores v behind a full barrier.
func (c *Cursor) WriteFenced(v int32) {
	c.v.Store(v)
}

// FetchAndAdd atomically adds n and returns the value before the addition.
// No two calls ever get the same pre-update value.
func (c *Cursor) FetchAndAdd(n int32) int32 {
	return c.v.Add(n) - n
}

// CompareAndSwap atomically replaces old with new.
func (c *Cursor) CompareAndSwap(old, new int32) bool {
	return c.v.CompareAndSwap(old, new)
}

// UnsafeCompareAndSwap is compare-and-swap spelled as a fenced load followed
// by a fenced store. Another goroutine can write between the two, so it is
// not atomic.
//
// Deprecated: use CompareAndSwap. Nothing in this package calls it.
func (c *Cursor) UnsafeCompareAndSwap(old, new int32) bool {
	if c.ReadFenced() != old {
		return false
	}
	c.WriteFenced(new)
	return true
}

func (c *Cursor) String() string {
	return strconv.FormatInt(int64(c.Read()), 10)
}
