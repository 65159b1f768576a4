package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reductions/internal/ir"
)

func kEntry(k string, overhead string) Entry {
	return Entry{
		Source:        "KSatisfiability",
		Target:        "QUBO",
		SourceVariant: ir.Variant{"k": k},
		TargetVariant: ir.Variant{"weight": "f64"},
		Overhead:      MustParseOverhead(map[string]string{"num_vars": overhead}),
		Origin:        "test",
	}
}

func TestRegisterAndEntriesBetween(t *testing.T) {
	r := New()
	r.MustRegister(kEntry("K3", "num_vars + num_clauses"))
	r.MustRegister(kEntry("K2", "num_vars"))

	entries := r.EntriesBetween("KSatisfiability", "QUBO")
	require.Len(t, entries, 2)
	assert.Equal(t, "K2", entries[0].SourceVariant["k"], "overload set is in canonical order")
	assert.Equal(t, "K3", entries[1].SourceVariant["k"])

	assert.Empty(t, r.EntriesBetween("QUBO", "KSatisfiability"))
	assert.Equal(t, 2, r.Len())
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	r.MustRegister(kEntry("K2", "num_vars"))
	require.NoError(t, r.Register(kEntry("K2", "num_vars")))
	assert.Equal(t, 1, r.Len())
}

func TestRegisterConflict(t *testing.T) {
	r := New()
	r.MustRegister(kEntry("K2", "num_vars"))

	err := r.Register(kEntry("K2", "num_vars * 2"))
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Panics(t, func() { r.MustRegister(kEntry("K2", "num_vars * 2")) })
}

func TestRegisterIsOrderIndependent(t *testing.T) {
	entries := []Entry{
		kEntry("K2", "num_vars"),
		kEntry("K3", "num_vars + num_clauses"),
		{Source: "A", Target: "B", Overhead: Identity("n")},
	}

	forward := New()
	for _, e := range entries {
		forward.MustRegister(e)
	}
	backward := New()
	for i := len(entries) - 1; i >= 0; i-- {
		backward.MustRegister(entries[i])
	}

	f, b := forward.Entries(), backward.Entries()
	require.Len(t, b, len(f))
	for i := range f {
		assert.Equal(t, f[i].Key(), b[i].Key())
	}
	assert.Equal(t, []string{"A", "B", "KSatisfiability", "QUBO"}, forward.Names())
}

func TestRegisterCopiesVariants(t *testing.T) {
	r := New()
	e := kEntry("K2", "num_vars")
	r.MustRegister(e)
	e.SourceVariant["k"] = "K9"

	got := r.EntriesBetween("KSatisfiability", "QUBO")
	require.Len(t, got, 1)
	assert.Equal(t, "K2", got[0].SourceVariant["k"])

	got[0].SourceVariant["k"] = "K7"
	assert.Equal(t, "K2", r.EntriesBetween("KSatisfiability", "QUBO")[0].SourceVariant["k"])
}

func TestRegisterInvalid(t *testing.T) {
	r := New()
	err := r.Register(Entry{Source: "A"})
	var re *RegistrationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalid, re.Code)
}

func TestSeal(t *testing.T) {
	r := New()
	r.MustRegister(Entry{Source: "A", Target: "B"})
	r.Seal()
	assert.True(t, r.Sealed())

	err := r.Register(Entry{Source: "B", Target: "C"})
	assert.True(t, IsSealed(err))
	assert.True(t, IsSealed(r.RegisterProblem(Problem{Name: "C"})))
	assert.True(t, IsSealed(r.RegisterVariantNode("C", nil)))
}

func TestProblems(t *testing.T) {
	r := New()
	mis := Problem{Name: "MaximumIndependentSet", Category: "graph", SizeFields: []string{"num_vertices", "num_edges"}}
	require.NoError(t, r.RegisterProblem(mis))
	require.NoError(t, r.RegisterProblem(mis))
	require.NoError(t, r.RegisterProblem(Problem{Name: "QUBO", Category: "optimization", SizeFields: []string{"num_vars"}}))

	changed := mis
	changed.SizeFields = []string{"num_vertices"}
	assert.True(t, IsConflict(r.RegisterProblem(changed)))

	p, ok := r.Problem("MaximumIndependentSet")
	require.True(t, ok)
	assert.Equal(t, mis, p)

	all := r.Problems()
	require.Len(t, all, 2)
	assert.Equal(t, "MaximumIndependentSet", all[0].Name)
	assert.Equal(t, "QUBO", all[1].Name)
}

func TestVariantNodes(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterVariantNode("MIS", ir.Variant{"graph": "SimpleGraph", "weight": "i32"}))
	require.NoError(t, r.RegisterVariantNode("MIS", ir.Variant{"graph": "SimpleGraph", "weight": "One"}))
	require.NoError(t, r.RegisterVariantNode("MIS", ir.Variant{"graph": "SimpleGraph", "weight": "i32"}))

	nodes := r.VariantNodes("MIS")
	require.Len(t, nodes, 2)
	assert.Equal(t, "One", nodes[0]["weight"])
	assert.Equal(t, "i32", nodes[1]["weight"])
	assert.Contains(t, r.Names(), "MIS")
}
