package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
	"github.com/roach88/reductions/internal/testutil"
)

func TestResolvePath_LeadingCast(t *testing.T) {
	g := Build(testutil.ChainRegistry())

	path, ok := g.ResolvePath([]string{"A", "B", "C"}, testutil.UnitDiskGraph, nil)
	require.True(t, ok)

	assert.Equal(t, []ReductionStep{
		{Name: "A", Variant: ir.Variant{"graph": "UnitDiskGraph"}},
		{Name: "A", Variant: ir.Variant{"graph": "SimpleGraph"}},
		{Name: "B", Variant: ir.Variant{}},
		{Name: "C", Variant: ir.Variant{}},
	}, path.Steps)
	require.Len(t, path.Edges, 3)
	assert.Equal(t, EdgeNaturalCast, path.Edges[0].Kind)
	assert.Nil(t, path.Edges[0].Entry)
	assert.Equal(t, EdgeReduction, path.Edges[1].Kind)
	assert.Equal(t, "a_to_b", path.Edges[1].Entry.Origin)
	assert.Equal(t, 1, path.NumCasts())
	assert.Equal(t, 2, path.NumReductions())
	assert.Equal(t, 3, path.Len())
	assert.Equal(t, []string{"A", "B", "C"}, path.Names())
	assert.Equal(t, "A{graph=UnitDiskGraph} ~> A{graph=SimpleGraph} -> B{} -> C{}", path.String())

	total, err := path.TotalOverhead(ir.MustProblemSize(map[string]int64{"n": 5}))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"n": 5}, total.Map())

	sizes, err := path.StepSizes(ir.MustProblemSize(map[string]int64{"n": 5}))
	require.NoError(t, err)
	require.Len(t, sizes, 4)
	for _, s := range sizes {
		assert.Equal(t, map[string]int64{"n": 5}, s.Map())
	}
}

func TestResolvePath_CastDiffersOnlyInCastCategory(t *testing.T) {
	reg := registry.New()
	testutil.RegisterHierarchy(reg)
	reg.MustRegister(registry.Entry{
		Source:        "A",
		Target:        "B",
		SourceVariant: ir.Variant{"graph": "SimpleGraph"},
		Overhead:      registry.Identity("n"),
	})
	g := Build(reg)

	path, ok := g.ResolvePath([]string{"A", "B"}, ir.Variant{"graph": "UnitDiskGraph", "weight": "i32"}, nil)
	require.True(t, ok)
	require.Equal(t, 1, path.NumCasts())
	assert.Equal(t, EdgeNaturalCast, path.Edges[0].Kind)
	assert.Equal(t, ir.Variant{"graph": "UnitDiskGraph", "weight": "i32"}, path.Steps[0].Variant)
	assert.Equal(t, ir.Variant{"graph": "SimpleGraph", "weight": "i32"}, path.Steps[1].Variant)
	assert.Equal(t, EdgeReduction, path.Edges[1].Kind)
}

func TestResolvePath_NoCastWhenExact(t *testing.T) {
	g := Build(testutil.ChainRegistry())

	path, ok := g.ResolvePath([]string{"A", "B", "C"}, testutil.SimpleGraph, nil)
	require.True(t, ok)
	assert.Equal(t, 0, path.NumCasts())
	assert.Equal(t, 2, path.NumReductions())
}

func TestResolvePath_Incompatible(t *testing.T) {
	g := Build(testutil.ChainRegistry())

	tests := []struct {
		name   string
		path   []string
		source ir.Variant
		target ir.Variant
	}{
		{"unknown graph value", []string{"A", "B"}, ir.Variant{"graph": "HyperGraph"}, nil},
		{"missing category", []string{"A", "B"}, ir.Variant{}, nil},
		{"target more specific than result", []string{"A", "B"}, ir.Variant{"graph": "SimpleGraph"}, ir.Variant{"graph": "UnitDiskGraph"}},
		{"target needs a category the result lacks", []string{"A", "B", "C"}, testutil.SimpleGraph, ir.Variant{"weight": "i32"}},
		{"edge not registered", []string{"A", "C"}, testutil.SimpleGraph, nil},
		{"empty path", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := g.ResolvePath(tt.path, tt.source, tt.target)
			assert.False(t, ok)
			assert.Nil(t, path)
		})
	}
}

func TestResolvePath_TrailingCast(t *testing.T) {
	reg := registry.New()
	testutil.RegisterHierarchy(reg)
	reg.MustRegister(registry.Entry{
		Source:        "X",
		Target:        "Y",
		SourceVariant: testutil.UnitDiskGraph,
		TargetVariant: testutil.UnitDiskGraph,
		Overhead:      registry.Identity("n"),
	})
	g := Build(reg)

	path, ok := g.ResolvePath([]string{"X", "Y"}, testutil.UnitDiskGraph, testutil.SimpleGraph)
	require.True(t, ok)
	assert.Equal(t, "X{graph=UnitDiskGraph} -> Y{graph=UnitDiskGraph} ~> Y{graph=SimpleGraph}", path.String())
	assert.Equal(t, 1, path.NumCasts())

	path, ok = g.ResolvePath([]string{"X", "Y"}, testutil.UnitDiskGraph, testutil.UnitDiskGraph)
	require.True(t, ok)
	assert.Equal(t, 0, path.NumCasts())
}

func TestResolvePath_KOverloadPicksTightest(t *testing.T) {
	g := Build(testutil.KOverloadRegistry())

	tests := []struct {
		k       string
		formula string
	}{
		{"K2", "num_vars"},
		{"K3", "num_vars + num_clauses"},
		{"KN", "num_vars * num_clauses"},
	}
	for _, tt := range tests {
		t.Run(tt.k, func(t *testing.T) {
			path, ok := g.ResolvePath([]string{"KSatisfiability", "QUBO"}, ir.Variant{"k": tt.k}, nil)
			require.True(t, ok)
			require.Equal(t, 1, path.Len())
			assert.Equal(t, ir.Variant{"k": tt.k}, path.Edges[0].Entry.SourceVariant)
			formula, _ := path.Edges[0].Overhead.Get("num_vars")
			assert.Equal(t, tt.formula, formula.String())
			assert.Equal(t, 0, path.NumCasts())
		})
	}
}

func TestResolvePath_CastToMoreGeneralK(t *testing.T) {
	reg := registry.New()
	testutil.RegisterHierarchy(reg)
	reg.MustRegister(registry.Entry{
		Source:        "KSatisfiability",
		Target:        "Satisfiability",
		SourceVariant: ir.Variant{"k": "KN"},
		Overhead:      registry.Identity("num_vars"),
	})
	g := Build(reg)

	path, ok := g.ResolvePath([]string{"KSatisfiability", "Satisfiability"}, ir.Variant{"k": "K2"}, nil)
	require.True(t, ok)
	assert.Equal(t, "KSatisfiability{k=K2} ~> KSatisfiability{k=KN} -> Satisfiability{}", path.String())
}

func TestResolvePath_IncomparableTieIsDeterministic(t *testing.T) {
	reg := registry.New()
	testutil.RegisterHierarchy(reg)
	reg.MustRegister(registry.Entry{
		Source:        "A",
		Target:        "B",
		SourceVariant: ir.Variant{"k": "KN"},
		Overhead:      registry.MustParseOverhead(map[string]string{"n": "2 * n"}),
	})
	reg.MustRegister(registry.Entry{
		Source:        "A",
		Target:        "B",
		SourceVariant: ir.Variant{"graph": "SimpleGraph"},
		Overhead:      registry.MustParseOverhead(map[string]string{"n": "3 * n"}),
	})
	g := Build(reg)

	current := ir.Variant{"graph": "UnitDiskGraph", "k": "K3"}
	for range 10 {
		path, ok := g.ResolvePath([]string{"A", "B"}, current, nil)
		require.True(t, ok)
		assert.Equal(t, ir.Variant{"graph": "SimpleGraph"}, path.Edges[len(path.Edges)-1].Entry.SourceVariant,
			"the canonically first source variant wins")
		assert.Equal(t, ir.Variant{"graph": "SimpleGraph", "k": "K3"}, path.Steps[1].Variant)
	}
}

func TestResolvedPath_TwoEdgeOverheadComposes(t *testing.T) {
	reg := registry.New()
	first := registry.MustParseOverhead(map[string]string{"m": "n ^ 2", "k": "n + 1"})
	second := registry.MustParseOverhead(map[string]string{"p": "m * k", "m": "m"})
	reg.MustRegister(registry.Entry{Source: "A", Target: "B", Overhead: first})
	reg.MustRegister(registry.Entry{Source: "B", Target: "C", Overhead: second})
	g := Build(reg)

	path, ok := g.ResolvePath([]string{"A", "B", "C"}, nil, nil)
	require.True(t, ok)

	for _, n := range []int64{0, 1, 3, 10} {
		input := ir.MustProblemSize(map[string]int64{"n": n})
		mid, err := first.EvaluateOutputSize(input)
		require.NoError(t, err)
		want, err := second.EvaluateOutputSize(mid)
		require.NoError(t, err)

		total, err := path.TotalOverhead(input)
		require.NoError(t, err)
		assert.True(t, want.Equal(total), "n=%d: stepwise %s, total %s", n, want, total)

		composed, err := path.ComposedOverhead().EvaluateOutputSize(input)
		require.NoError(t, err)
		assert.True(t, want.Equal(composed), "n=%d: composed %s", n, composed)
	}

	total, err := path.TotalOverhead(ir.MustProblemSize(map[string]int64{"n": 3}))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"m": 9, "p": 36}, total.Map())
}

func TestResolvedPath_StepSizesReportsFailingStep(t *testing.T) {
	g := Build(testutil.LogRegistry())
	path, ok := g.ResolvePath([]string{"A", "B"}, nil, nil)
	require.True(t, ok)

	_, err := path.StepSizes(ir.MustProblemSize(map[string]int64{"n": 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0 (A{} -> B{})")
}
