package snowflake

import (
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(-1)
	assert.ErrorIs(t, err, ErrInvalidWorkerID)

	_, err = NewGenerator(MaxWorkerID + 1)
	assert.ErrorIs(t, err, ErrInvalidWorkerID)

	g, err := NewGenerator(MaxWorkerID)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestGenerator_Parse(t *testing.T) {
	g, err := NewGenerator(7)
	require.NoError(t, err)

	before := time.Now().UnixMilli()
	id, err := g.NextID()
	require.NoError(t, err)

	ts, worker, seq := Parse(id)
	assert.GreaterOrEqual(t, ts, before)
	assert.Equal(t, int64(7), worker)
	assert.Equal(t, int64(0), seq)
	assert.Positive(t, id)
}

func TestGenerator_ClockMovedBackwards(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	clock := Epoch + 1000
	g.now = func() int64 { return clock }
	_, err = g.NextID()
	require.NoError(t, err)

	clock -= 5
	_, err = g.NextID()
	assert.ErrorIs(t, err, ErrClockMovedBackwards)
}

func TestGenerator_SequenceRollover(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	clock := Epoch + 1000
	calls := 0
	g.now = func() int64 {
		calls++
		if calls > int(sequenceMask)+2 {
			return clock + 1
		}
		return clock
	}

	var last int64
	for range sequenceMask + 2 {
		id, err := g.NextID()
		require.NoError(t, err)
		require.Greater(t, id, last)
		last = id
	}
	ts, _, seq := Parse(last)
	assert.Equal(t, clock+1, ts)
	assert.Equal(t, int64(0), seq)
}

func TestProperty_IDsAreUniqueAndIncreasing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sequential ids strictly increase", prop.ForAll(
		func(count int) bool {
			g, err := NewGenerator(1)
			if err != nil {
				return false
			}
			var last int64
			for range count {
				id, err := g.NextID()
				if err != nil || id <= last {
					return false
				}
				last = id
			}
			return true
		},
		gen.IntRange(100, 2000),
	))

	properties.Property("concurrent ids are unique", prop.ForAll(
		func(goroutines, perGoroutine int) bool {
			g, err := NewGenerator(3)
			if err != nil {
				return false
			}
			var (
				mu   sync.Mutex
				seen = make(map[int64]struct{}, goroutines*perGoroutine)
				wg   sync.WaitGroup
				dup  bool
			)
			for range goroutines {
				wg.Go(func() {
					for range perGoroutine {
						id, err := g.NextID()
						mu.Lock()
						if _, ok := seen[id]; ok || err != nil {
							dup = true
						}
						seen[id] = struct{}{}
						mu.Unlock()
					}
				})
			}
			wg.Wait()
			return !dup && len(seen) == goroutines*perGoroutine
		},
		gen.IntRange(2, 16),
		gen.IntRange(10, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
