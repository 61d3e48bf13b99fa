package ringbuffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// C+1 adds evict exactly the first element; C consumes yield the rest in
// order. Only C consumes: Consume never clears the slot under the head, so a
// further Consume returns 2 again (see TestDonutConsumeSparesHeadSlot), and
// draining until empty is not a bounded-eviction check on a Donut.
func TestDonutBoundedEviction(t *testing.T) {
	const capacity = 8

	q, err := NewDonut[int](capacity)
	require.NoError(t, err)

	for i := 1; i <= capacity+1; i++ {
		q.Add(i)
	}

	got := make([]int, 0, capacity)
	for i := 0; i < capacity; i++ {
		v, ok := q.Consume()
		require.True(t, ok, "consume %d", i)
		got = append(got, v)
	}

	want := make([]int, 0, capacity)
	for i := 2; i <= capacity+1; i++ {
		want = append(want, i)
	}
	require.Equal(t, want, got)
}

func TestDonutSequential(t *testing.T) {
	const capacity = 1024

	q, err := NewDonut[int](capacity)
	require.NoError(t, err)

	for i := 0; i < capacity/2; i++ {
		q.Add(i)
	}
	for i := 0; i < capacity/2; i++ {
		v, ok := q.Consume()
		if !ok {
			t.Fatalf("dequeue failed at %d (queue unexpectedly empty)", i)
		}
		if v != i {
			t.Fatalf("expected %d, got %d (FIFO violated)", i, v)
		}
	}

	// an empty consume still moves the tail on
	_, ok := q.Consume()
	assert.False(t, ok)
	assert.Equal(t, int32(capacity/2+1), q.tail.Read())
}

// The slot under the head is never cleared by Consume. After a full ring is
// drained, the oldest element is still there at the head slot.
func TestDonutConsumeSparesHeadSlot(t *testing.T) {
	q, err := NewDonut[int](4)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		q.Add(i)
	}
	for i := 0; i < 4; i++ {
		_, ok := q.Consume()
		require.True(t, ok)
	}

	v, ok := q.Consume()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

// ConsumeAll peeks and leaves the tail where it found it.
func TestDonutConsumeAllIsPeek(t *testing.T) {
	q, err := NewDonut[string](4)
	require.NoError(t, err)

	q.Add("a")
	q.Add("b")
	q.Add("c")

	v, ok := q.Consume()
	require.True(t, ok)
	require.Equal(t, "a", v)

	tail := q.tail.Read()
	assert.Equal(t, []string{"b", "c"}, collect[string](q.ConsumeAll))
	assert.Equal(t, []string{"b", "c"}, collect[string](q.ConsumeAll))
	assert.Equal(t, tail, q.tail.Read())

	v, ok = q.Consume()
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

// Concurrent test: producers fill exactly one lap; nothing is evicted and
// every value is present once.
func TestDonutConcurrentProducers(t *testing.T) {
	const (
		capacity    = 1 << 12
		producers   = 8
		perProducer = capacity / producers
	)

	q, err := NewDonut[int](capacity)
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

	require.Equal(t, int32(0), q.tail.Read(), "no element may be evicted")

	seen := make([]int, capacity)
	q.ConsumeAll(func(v int) { seen[v]++ })
	for i := range seen {
		if seen[i] != 1 {
			t.Fatalf("value %d seen %d times (expected 1)", i, seen[i])
		}
	}
}

// Concurrent test: producers lap the ring several times. Each overwrite of a
// live slot moves the tail once, so the tail ends exactly laps-1 rings behind.
func TestDonutConcurrentEviction(t *testing.T) {
	const (
		capacity    = 64
		producers   = 4
		laps        = 50
		perProducer = capacity * laps / producers
	)

	q, err := NewDonut[int](capacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Add(i)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(capacity*(laps-1)), q.tail.Read())
	require.Len(t, q.Snapshot(), capacity)
}
