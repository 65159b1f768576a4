package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

func TestCostPolicies(t *testing.T) {
	overhead := registry.MustParseOverhead(map[string]string{"a": "n", "b": "2 * n"})
	input := ir.MustProblemSize(map[string]int64{"n": 3})

	tests := []struct {
		name string
		cost CostFunc
		want float64
	}{
		{"steps", MinimizeSteps{}, 1},
		{"minimize", Minimize("b"), 6},
		{"minimize missing field", Minimize("c"), 0},
		{"weighted", MinimizeWeighted{"a": 1, "b": 0.5}, 6},
		{"max", MinimizeMax{"a", "b"}, 6},
		{"lexicographic", MinimizeLexicographic{Fields: []string{"a", "b"}}, 3 + 6e-10},
		{"lexicographic epsilon", MinimizeLexicographic{Fields: []string{"a", "b"}, Epsilon: 0.5}, 6},
		{"custom", Custom(func(o registry.Overhead, s ir.ProblemSize) (float64, error) { return float64(o.Len()), nil }), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cost.EdgeCost(overhead, input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCostPolicies_PropagateEvalErrors(t *testing.T) {
	overhead := registry.MustParseOverhead(map[string]string{"a": "missing"})
	input := ir.MustProblemSize(map[string]int64{"n": 3})

	for _, cost := range []CostFunc{Minimize("a"), MinimizeWeighted{"a": 1}, MinimizeMax{"a"}, MinimizeLexicographic{Fields: []string{"a"}}} {
		_, err := cost.EdgeCost(overhead, input)
		assert.Error(t, err, "%T", cost)
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in   string
		want CostFunc
	}{
		{"minimize-steps", MinimizeSteps{}},
		{"steps", MinimizeSteps{}},
		{"minimize:num_vars", Minimize("num_vars")},
		{"weighted:num_vars=1, num_edges=0.5", MinimizeWeighted{"num_vars": 1, "num_edges": 0.5}},
		{"max:num_vars,num_edges", MinimizeMax{"num_vars", "num_edges"}},
		{"lex:num_vars,num_edges", MinimizeLexicographic{Fields: []string{"num_vars", "num_edges"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCost(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCost_Errors(t *testing.T) {
	for _, in := range []string{"", "minimize", "minimize:", "weighted:a", "weighted:a=-1", "weighted:a=x", "median:a"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseCost(in)
			assert.Error(t, err)
		})
	}
}
