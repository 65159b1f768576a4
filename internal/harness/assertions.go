package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/reductions/internal/graph"
)

// evaluateAssertion returns nil if the assertion holds against g.
func evaluateAssertion(g *graph.Graph, a Assertion) error {
	for _, name := range []string{a.Source, a.Target} {
		if name != "" && !g.HasProblem(name) {
			return fmt.Errorf("unknown problem %q", name)
		}
	}

	switch a.Type {
	case AssertReachable:
		return expectBool("reachable", g.Reachable(a.Source, a.Target), *a.Expect)
	case AssertDirectReduction:
		return expectBool("direct reduction", g.HasDirectReduction(a.Source, a.Target), *a.Expect)
	case AssertPathCount:
		if got := len(g.FindPaths(a.Source, a.Target)); got != a.Count {
			return fmt.Errorf("expected %d path(s) from %s to %s, got %d", a.Count, a.Source, a.Target, got)
		}
		return nil
	case AssertNeighbors:
		return assertNeighbors(g, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func expectBool(what string, got, want bool) error {
	if got != want {
		return fmt.Errorf("expected %s = %t, got %t", what, want, got)
	}
	return nil
}

func assertNeighbors(g *graph.Graph, a Assertion) error {
	hops := a.Hops
	if hops == 0 {
		hops = 1
	}
	var found []graph.Neighbor
	if a.Direction == "in" {
		found = g.Incoming(a.Source, hops)
	} else {
		found = g.Outgoing(a.Source, hops)
	}

	got := make([]string, len(found))
	for i, n := range found {
		got[i] = n.Name
	}
	slices.Sort(got)
	want := slices.Clone(a.Names)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		return fmt.Errorf("expected %s-neighbors of %s within %d hop(s) %v, got %v", a.Direction, a.Source, hops, want, got)
	}
	return nil
}
