package testutil

import (
	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

// Shared variants.
var (
	SimpleGraph   = ir.Variant{"graph": "SimpleGraph"}
	UnitDiskGraph = ir.Variant{"graph": "UnitDiskGraph"}
)

// RegisterHierarchy installs the fixture hierarchy:
//
//	graph: UnitDiskGraph -> SimpleGraph
//	k:     K2 -> K3 -> KN
func RegisterHierarchy(reg *registry.Registry) {
	h := reg.Variants()
	h.MustRegister("graph", "SimpleGraph", "", nil)
	h.MustRegister("graph", "UnitDiskGraph", "SimpleGraph", nil)
	h.MustRegister("k", "KN", "", nil)
	h.MustRegister("k", "K3", "KN", nil)
	h.MustRegister("k", "K2", "K3", nil)
}

// ChainRegistry is the canonical end-to-end example: A{graph=SimpleGraph}
// reduces to B, and B reduces to C, both with overhead {n: n}. Resolving
// A -> C from A{graph=UnitDiskGraph} needs one leading cast.
func ChainRegistry() *registry.Registry {
	reg := registry.New()
	RegisterHierarchy(reg)
	reg.MustRegister(registry.Entry{
		Source:        "A",
		Target:        "B",
		SourceVariant: SimpleGraph,
		Overhead:      registry.MustParseOverhead(map[string]string{"n": "n"}),
		Origin:        "a_to_b",
	})
	reg.MustRegister(registry.Entry{
		Source:   "B",
		Target:   "C",
		Overhead: registry.MustParseOverhead(map[string]string{"n": "n"}),
		Origin:   "b_to_c",
	})
	return reg
}

// DiamondRegistry connects S to T through two 2-step routes (via X and via
// Y) and one 3-step route (via P and Q). The X route squares n, the others
// carry it through.
func DiamondRegistry() *registry.Registry {
	reg := registry.New()
	same := map[string]string{"n": "n"}
	for _, edge := range []struct {
		source, target string
		overhead       map[string]string
	}{
		{"S", "X", map[string]string{"n": "n ^ 2"}},
		{"X", "T", same},
		{"S", "Y", same},
		{"Y", "T", same},
		{"S", "P", same},
		{"P", "Q", same},
		{"Q", "T", same},
	} {
		reg.MustRegister(registry.Entry{
			Source:   edge.source,
			Target:   edge.target,
			Overhead: registry.MustParseOverhead(edge.overhead),
		})
	}
	return reg
}

// KOverloadRegistry registers three KSatisfiability -> QUBO entries that
// differ only by k (K2, K3, KN), each with a distinguishable overhead.
func KOverloadRegistry() *registry.Registry {
	reg := registry.New()
	RegisterHierarchy(reg)
	for k, formula := range map[string]string{
		"K2": "num_vars",
		"K3": "num_vars + num_clauses",
		"KN": "num_vars * num_clauses",
	} {
		reg.MustRegister(registry.Entry{
			Source:        "KSatisfiability",
			Target:        "QUBO",
			SourceVariant: ir.Variant{"k": k},
			Overhead:      registry.MustParseOverhead(map[string]string{"num_vars": formula}),
		})
	}
	return reg
}

// LogRegistry has a single reduction A -> B with overhead {n: log2(n)},
// which is infeasible for n = 0.
func LogRegistry() *registry.Registry {
	reg := registry.New()
	reg.MustRegister(registry.Entry{
		Source:   "A",
		Target:   "B",
		Overhead: registry.MustParseOverhead(map[string]string{"n": "log2(n)"}),
	})
	return reg
}
