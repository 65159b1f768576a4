package graph

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/testutil"
)

func chainWithCastNode(t *testing.T) *Graph {
	t.Helper()
	reg := testutil.ChainRegistry()
	require.NoError(t, reg.RegisterVariantNode("A", testutil.UnitDiskGraph))
	return Build(reg)
}

func TestSnapshot_NodesAndEdges(t *testing.T) {
	snap := chainWithCastNode(t).Snapshot()

	assert.Equal(t, ir.SnapshotVersion, snap.Version)
	assert.Equal(t, []SnapshotNode{
		{Name: "A", Variant: ir.Variant{"graph": "SimpleGraph"}},
		{Name: "A", Variant: ir.Variant{"graph": "UnitDiskGraph"}},
		{Name: "B", Variant: ir.Variant{}},
		{Name: "C", Variant: ir.Variant{}},
	}, snap.Nodes)

	require.Len(t, snap.Edges, 3)
	assert.Equal(t, "reduction", snap.Edges[0].Kind)
	assert.Equal(t, map[string]string{"n": "n"}, snap.Edges[0].Overhead)
	assert.Equal(t, SnapshotEdge{
		Source:        "A",
		SourceVariant: ir.Variant{"graph": "UnitDiskGraph"},
		Target:        "A",
		TargetVariant: ir.Variant{"graph": "SimpleGraph"},
		Kind:          "natural_cast",
	}, snap.Edges[1])
	assert.Equal(t, "B", snap.Edges[2].Source)
}

func TestSnapshot_Canonical(t *testing.T) {
	g := chainWithCastNode(t)
	data, err := g.Snapshot().MarshalCanonical()
	require.NoError(t, err)

	gold := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	gold.Assert(t, "chain_snapshot", data)

	h1, err := g.Snapshot().Hash()
	require.NoError(t, err)
	h2, err := chainWithCastNode(t).Snapshot().Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.Equal(t, 4, g.NumVariantNodes())
}

func TestSnapshot_BareNamesAndNoCastAcrossCategories(t *testing.T) {
	g := Build(testutil.KOverloadRegistry())
	snap := g.Snapshot()

	var casts []SnapshotEdge
	for _, e := range snap.Edges {
		if e.Kind == "natural_cast" {
			casts = append(casts, e)
		}
	}
	// K2 ~> K3, K2 ~> KN, K3 ~> KN
	require.Len(t, casts, 3)
	assert.Equal(t, ir.Variant{"k": "K2"}, casts[0].SourceVariant)
	assert.Equal(t, ir.Variant{"k": "K3"}, casts[0].TargetVariant)
	assert.Equal(t, ir.Variant{"k": "KN"}, casts[1].TargetVariant)
	assert.Equal(t, ir.Variant{"k": "K3"}, casts[2].SourceVariant)
	assert.Len(t, snap.Nodes, 4)
}
