package ringbuffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	id  int
	msg string
}

// After C retrieves, the next one comes back to the first record.
func TestPoolReuse(t *testing.T) {
	const capacity = 8

	p, err := NewPool[record](capacity, nil)
	require.NoError(t, err)

	first := p.Retrieve()
	for i := 1; i < capacity; i++ {
		require.NotSame(t, first, p.Retrieve())
	}
	require.Same(t, first, p.Retrieve())
}

func TestPoolPoll(t *testing.T) {
	built := 0
	p, err := NewPool(4, func() *record {
		built++
		return &record{id: -1}
	})
	require.NoError(t, err)
	require.Equal(t, 4, built)
	require.Equal(t, 4, p.Capacity())

	_, ok := p.Poll()
	require.False(t, ok, "nothing retrieved yet")

	for i := 0; i < 3; i++ {
		r := p.Retrieve()
		r.id = i
		r.msg = "populated"
	}

	for i := 0; i < 3; i++ {
		r, ok := p.Poll()
		require.True(t, ok)
		assert.Equal(t, i, r.id)
	}
	r, ok := p.Poll()
	assert.False(t, ok)
	assert.Nil(t, r)

	// records are reused, never cleared
	r = p.Retrieve()
	assert.Equal(t, -1, r.id)
	r = p.Retrieve()
	assert.Equal(t, 0, r.id)
	assert.Equal(t, "populated", r.msg)
}

func TestPoolPollAll(t *testing.T) {
	p, err := NewPool[record](16, nil)
	require.NoError(t, err)

	for lap := 0; lap < 3; lap++ {
		for i := 0; i < 10; i++ {
			p.Retrieve().id = lap*100 + i
		}

		var got []int
		p.PollAll(func(r *record) { got = append(got, r.id) })
		require.Len(t, got, 10)
		for i, id := range got {
			assert.Equal(t, lap*100+i, id)
		}
	}
}

func TestPoolNilRecordPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = NewPool(2, func() *record { return nil })
	})
}

// Concurrent test: producers retrieve distinct records within one lap.
func TestPoolConcurrentRetrieve(t *testing.T) {
	const (
		capacity    = 1 << 10
		producers   = 8
		perProducer = capacity / producers
	)

	p, err := NewPool[record](capacity, nil)
	require.NoError(t, err)

	got := make([][]*record, producers)
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				got[i] = append(got[i], p.Retrieve())
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[*record]int, capacity)
	for _, rs := range got {
		for _, r := range rs {
			seen[r]++
		}
	}
	require.Len(t, seen, capacity)
}
