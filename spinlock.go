package ringbuffer

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fastrand"
)

const goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops

// maxJitter bounds the randomized spin between two bounded lock attempts.
const maxJitter = 32

var _ sync.Locker = (*SpinLock)(nil)

// SpinLock is a one-bit lock that busy-polls instead of parking the
// goroutine. The zero value is unlocked.
//
// There is no owner tracking: any goroutine may call Unlock, and calling it
// on a lock the caller does not hold is a bug the lock will not catch.
type SpinLock struct {
	held atomic.Bool
}

// Lock spins until the lock is acquired, yielding the processor while it
// reads as held. It never gives up.
func (l *SpinLock) Lock() {
	for !l.held.CompareAndSwap(false, true) {
		for l.held.Load() {
			runtime.Gosched()
		}
	}
}

// LockBusy spins until the lock is acquired without ever yielding. It burns a
// core while waiting; reserve it for goroutines that own a dedicated core.
func (l *SpinLock) LockBusy() {
	for !l.held.CompareAndSwap(false, true) {
		for l.held.Load() {
		}
	}
}

// TryLock makes one attempt and reports whether it acquired the lock.
func (l *SpinLock) TryLock() bool {
	return !l.held.Load() && l.held.CompareAndSwap(false, true)
}

// Unlock releases the lock.
func (l *SpinLock) Unlock() {
	l.held.Store(false)
}

// Backoff bounds a lock acquisition. A zero field means no limit on that axis;
// the zero Backoff behaves like Lock.
type Backoff struct {
	MaxAttempts int
	Timeout     time.Duration
}

// LockBackoff spins like Lock until the lock is acquired or b is exhausted.
// It reports whether the lock is held on return.
func (l *SpinLock) LockBackoff(b Backoff) bool {
	var deadline time.Time
	if b.Timeout > 0 {
		deadline = time.Now().Add(b.Timeout)
	}
	for attempt := 1; ; attempt++ {
		if l.TryLock() {
			return true
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return false
		}
		if !deadline.IsZero() && attempt%goschedEvery == 0 && time.Now().After(deadline) {
			return false
		}
		l.pause(attempt)
	}
}

// LockContext spins like Lock until the lock is acquired or ctx is done, in
// which case it returns ctx.Err() without holding the lock.
func (l *SpinLock) LockContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		if l.TryLock() {
			return nil
		}
		if attempt%goschedEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		l.pause(attempt)
	}
}

// pause waits a little between two failed attempts. Contenders spin a random
// number of reads so they stop retrying in lockstep.
func (l *SpinLock) pause(attempt int) {
	if attempt%goschedEvery == 0 {
		runtime.Gosched()
		return
	}
	for n := fastrand.Uint32n(maxJitter); n > 0 && l.held.Load(); n-- {
	}
}
