package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_NextIncrementsMonotonically(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())

	clock.Reset()
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const goroutines, calls = 50, 100

	var wg sync.WaitGroup
	results := make([][]int64, goroutines)
	for i := range goroutines {
		results[i] = make([]int64, calls)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := range calls {
				results[idx][j] = clock.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, row := range results {
		for _, v := range row {
			require.False(t, seen[v], "duplicate value %d", v)
			seen[v] = true
		}
	}
	assert.Len(t, seen, goroutines*calls)
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs()
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", ids.Generate())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", ids.Generate())
}

func TestFixtures_Register(t *testing.T) {
	assert.Equal(t, 2, ChainRegistry().Len())
	assert.Equal(t, 7, DiamondRegistry().Len())
	assert.Len(t, KOverloadRegistry().EntriesBetween("KSatisfiability", "QUBO"), 3)
	assert.Equal(t, 1, LogRegistry().Len())

	reg := ChainRegistry()
	assert.True(t, reg.Variants().IsReducible("graph", "UnitDiskGraph", "SimpleGraph"))
	assert.True(t, reg.Variants().IsReducible("k", "K2", "KN"))
}
