package ringbuffer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// C+1 adds evict exactly the first element; draining yields the rest in order.
func TestLockingDonutBoundedEviction(t *testing.T) {
	const capacity = 8

	q, err := NewLockingDonut[int](capacity)
	require.NoError(t, err)

	for i := 1; i <= capacity+1; i++ {
		q.Add(i)
	}

	var got []int
	q.ConsumeAll(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 9}, got)

	_, ok := q.Consume()
	assert.False(t, ok)
	assert.True(t, q.IsEmpty())
}

func TestLockingDonutHints(t *testing.T) {
	q, err := NewLockingDonut[int](2)
	require.NoError(t, err)

	assert.True(t, q.IsEmpty())
	assert.True(t, q.HasRoom())

	q.Add(1)
	assert.False(t, q.IsEmpty())
	assert.True(t, q.HasRoom())

	q.Add(2)
	assert.False(t, q.HasRoom())
}

func TestLockingDonutTryAdd(t *testing.T) {
	q, err := NewLockingDonut[int](4)
	require.NoError(t, err)

	q.lock.Lock()
	assert.False(t, q.TryAdd(1))
	q.lock.Unlock()
	assert.Empty(t, q.Snapshot())

	assert.True(t, q.TryAdd(1))
	assert.Equal(t, []int{1}, q.Snapshot())
}

func TestLockingDonutAddContext(t *testing.T) {
	q, err := NewLockingDonut[int](4)
	require.NoError(t, err)

	q.lock.Lock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, q.AddContext(ctx, 1), context.DeadlineExceeded)
	q.lock.Unlock()

	require.NoError(t, q.AddContext(context.Background(), 2))
	v, ok := q.Consume()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

// Concurrent test: many producers, drained once they are done.
func TestLockingDonutConcurrentProducers(t *testing.T) {
	const (
		capacity    = 1 << 13
		N           = 8_000
		producers   = 8
		perProducer = N / producers
	)

	q, err := NewLockingDonut[int](capacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(from int) {
			defer wg.Done()
			for i := from; i < from+perProducer; i++ {
				q.Add(i)
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make([]int, N)
	q.ConsumeAll(func(v int) { seen[v]++ })
	for i := range seen {
		if seen[i] != 1 {
			t.Fatalf("value %d seen %d times (expected 1)", i, seen[i])
		}
	}
	assert.True(t, q.IsEmpty())
}
