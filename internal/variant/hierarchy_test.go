package variant

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reductions/internal/ir"
)

func kChain(t *testing.T) *Hierarchy {
	t.Helper()
	h := NewHierarchy()
	require.NoError(t, h.Register("k", "KN", "", nil))
	require.NoError(t, h.Register("k", "K3", "KN", nil))
	require.NoError(t, h.Register("k", "K2", "K3", nil))
	return h
}

func TestIsReducibleChain(t *testing.T) {
	h := kChain(t)

	assert.True(t, h.IsReducible("k", "K2", "KN"))
	assert.True(t, h.IsReducible("k", "K2", "K3"))
	assert.False(t, h.IsReducible("k", "KN", "K2"))
	assert.True(t, h.IsReducible("k", "K2", "K2"))
	assert.True(t, h.IsReducible("k", "unregistered", "unregistered"))
	assert.False(t, h.IsReducible("k", "unregistered", "KN"))
	assert.False(t, h.IsReducible("graph", "K2", "KN"), "categories are independent")
}

func TestRegisterIsOrderIndependent(t *testing.T) {
	h := NewHierarchy()
	// Children before parents.
	require.NoError(t, h.Register("graph", "KingsSubgraph", "UnitDiskGraph", nil))
	require.NoError(t, h.Register("graph", "UnitDiskGraph", "SimpleGraph", nil))
	require.NoError(t, h.Register("graph", "SimpleGraph", "", nil))

	assert.True(t, h.IsReducible("graph", "KingsSubgraph", "SimpleGraph"))
	assert.Equal(t, []string{"UnitDiskGraph", "SimpleGraph"}, h.Ancestors("graph", "KingsSubgraph"))
}

func TestRegisterIdempotent(t *testing.T) {
	h := kChain(t)
	require.NoError(t, h.Register("k", "K2", "K3", nil))
	assert.Len(t, h.Entries("k"), 3)
}

func TestRegisterConflictingParent(t *testing.T) {
	h := kChain(t)
	err := h.Register("k", "K2", "KN", nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	assert.PanicsWithError(t, err.Error(), func() {
		h.MustRegister("k", "K2", "KN", nil)
	})
}

func TestRegisterRejectsCycles(t *testing.T) {
	h := NewHierarchy()
	require.NoError(t, h.Register("w", "a", "b", nil))
	require.NoError(t, h.Register("w", "b", "c", nil))

	err := h.Register("w", "c", "a", nil)
	require.Error(t, err)
	assert.True(t, IsCycle(err))

	err = h.Register("w", "d", "d", nil)
	assert.True(t, IsCycle(err))

	// The rejected registration leaves the hierarchy acyclic and queryable.
	assert.False(t, h.IsReducible("w", "c", "a"))
	assert.True(t, h.IsReducible("w", "a", "c"))
}

func TestRegisterRejectsEmpty(t *testing.T) {
	h := NewHierarchy()
	assert.Error(t, h.Register("", "x", "", nil))
	assert.Error(t, h.Register("graph", "", "", nil))
}

func TestIsReducibleVariant(t *testing.T) {
	h := NewHierarchy()
	h.MustRegister("graph", "SimpleGraph", "", nil)
	h.MustRegister("graph", "UnitDiskGraph", "SimpleGraph", nil)
	h.MustRegister("weight", "f64", "", nil)
	h.MustRegister("weight", "i32", "f64", nil)

	from := ir.Variant{"graph": "UnitDiskGraph", "weight": "i32"}
	assert.True(t, h.IsReducibleVariant(from, ir.Variant{"graph": "SimpleGraph", "weight": "f64"}))
	assert.True(t, h.IsReducibleVariant(from, ir.Variant{"graph": "SimpleGraph"}))
	assert.True(t, h.IsReducibleVariant(from, nil))
	assert.False(t, h.IsReducibleVariant(from, ir.Variant{"graph": "SimpleGraph", "weight": "One"}))
	assert.False(t, h.IsReducibleVariant(ir.Variant{"graph": "SimpleGraph"}, ir.Variant{"weight": "f64"}),
		"a constrained category missing from the source is not satisfied")
}

func TestCastAppliesChain(t *testing.T) {
	h := NewHierarchy()
	var calls []string
	tag := func(name string) CastFunc {
		return func(instance any) (any, error) {
			calls = append(calls, name)
			return fmt.Sprintf("%v>%s", instance, name), nil
		}
	}
	h.MustRegister("graph", "SimpleGraph", "", nil)
	h.MustRegister("graph", "UnitDiskGraph", "SimpleGraph", tag("simple"))
	h.MustRegister("graph", "KingsSubgraph", "UnitDiskGraph", tag("unitdisk"))

	out, err := h.Cast("graph", "KingsSubgraph", "SimpleGraph", "g")
	require.NoError(t, err)
	assert.Equal(t, "g>unitdisk>simple", out)
	assert.Equal(t, []string{"unitdisk", "simple"}, calls)

	same, err := h.Cast("graph", "SimpleGraph", "SimpleGraph", "g")
	require.NoError(t, err)
	assert.Equal(t, "g", same)

	_, err = h.Cast("graph", "SimpleGraph", "KingsSubgraph", "g")
	var he *HierarchyError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, ErrCodeNotReducible, he.Code)
}

func TestCastPropagatesFailure(t *testing.T) {
	h := NewHierarchy()
	boom := errors.New("boom")
	h.MustRegister("weight", "f64", "", nil)
	h.MustRegister("weight", "i32", "f64", func(any) (any, error) { return nil, boom })

	_, err := h.Cast("weight", "i32", "f64", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCastVariant(t *testing.T) {
	h := NewHierarchy()
	h.MustRegister("graph", "SimpleGraph", "", nil)
	h.MustRegister("graph", "UnitDiskGraph", "SimpleGraph", func(v any) (any, error) { return v.(int) + 1, nil })
	h.MustRegister("weight", "f64", "", nil)
	h.MustRegister("weight", "i32", "f64", func(v any) (any, error) { return v.(int) * 10, nil })

	out, err := h.CastVariant(
		ir.Variant{"graph": "UnitDiskGraph", "weight": "i32"},
		ir.Variant{"graph": "SimpleGraph", "weight": "f64"},
		1,
	)
	require.NoError(t, err)
	assert.Equal(t, 20, out, "graph cast runs before weight cast")
}

func TestCategoriesAndEntries(t *testing.T) {
	h := kChain(t)
	h.MustRegister("graph", "SimpleGraph", "", nil)

	assert.Equal(t, []string{"graph", "k"}, h.Categories())
	entries := h.Entries("k")
	require.Len(t, entries, 3)
	assert.Equal(t, "K2", entries[0].Value)
	assert.Equal(t, "K3", entries[0].Parent)

	parent, ok := h.Parent("k", "KN")
	assert.True(t, ok)
	assert.Empty(t, parent)
	_, ok = h.Parent("k", "K9")
	assert.False(t, ok)
	assert.True(t, h.Contains("k", "K3"))
}

func TestConcurrentReaders(t *testing.T) {
	h := kChain(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.True(t, h.IsReducible("k", "K2", "KN"))
			}
		}()
	}
	wg.Wait()
}
