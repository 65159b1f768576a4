package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

func entry(source, target string) registry.Entry {
	return registry.Entry{Source: source, Target: target, Overhead: registry.Identity("n")}
}

func TestAnalyzeReductionCycles_Acyclic(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(entry("A", "B"))
	reg.MustRegister(entry("B", "C"))
	reg.MustRegister(entry("A", "C"))

	warnings := AnalyzeReductionCycles(reg)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)
}

func TestAnalyzeReductionCycles_MutualReduction(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(entry("MaximumIndependentSet", "MinimumVertexCover"))
	reg.MustRegister(entry("MinimumVertexCover", "MaximumIndependentSet"))
	reg.MustRegister(entry("MinimumVertexCover", "QUBO"))

	warnings := AnalyzeReductionCycles(reg)
	require.Len(t, warnings, 1)
	assert.Equal(t, "info", warnings[0].Level)
	assert.Equal(t, []string{"MaximumIndependentSet", "MinimumVertexCover", "MaximumIndependentSet"}, warnings[0].Path)
	assert.Equal(t, "reduction cycle: MaximumIndependentSet -> MinimumVertexCover -> MaximumIndependentSet", warnings[0].Message)
}

func TestAnalyzeReductionCycles_SelfReduction(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Entry{
		Source:        "KColoring",
		Target:        "KColoring",
		SourceVariant: ir.Variant{"k": "K3"},
		TargetVariant: ir.Variant{"k": "KN"},
		Overhead:      registry.Identity("num_vertices"),
	})

	warnings := AnalyzeReductionCycles(reg)
	require.Len(t, warnings, 1)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Equal(t, []string{"KColoring", "KColoring"}, warnings[0].Path)
}

func TestAnalyzeReductionCycles_OrderedAndStable(t *testing.T) {
	reg := registry.New()
	for _, e := range [][2]string{{"X", "Y"}, {"Y", "X"}, {"C", "D"}, {"D", "E"}, {"E", "C"}} {
		reg.MustRegister(entry(e[0], e[1]))
	}

	first := AnalyzeReductionCycles(reg)
	require.Len(t, first, 2)
	assert.Equal(t, []string{"C", "D", "E", "C"}, first[0].Path)
	assert.Equal(t, []string{"X", "Y", "X"}, first[1].Path)

	for range 5 {
		assert.Equal(t, first, AnalyzeReductionCycles(reg))
	}
}
