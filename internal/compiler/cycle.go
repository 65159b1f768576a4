package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/reductions/internal/registry"
)

// CycleWarning describes a set of problems that reduce into each other.
//
// Reduction cycles are expected (Independent Set and Vertex Cover reduce to
// each other) and the search never loops on them, so they are reported at
// level "info". A reduction from a problem to itself is reported at level
// "warning" since it only changes variants and usually duplicates a cast.
type CycleWarning struct {
	Path    []string `json:"path"`    // e.g. ["A", "B", "A"]
	Message string   `json:"message"`
	Level   string   `json:"level"` // "warning" or "info"
}

// AnalyzeReductionCycles finds strongly connected components of the
// name-level reduction graph with Tarjan's algorithm. Results are ordered
// by the first problem of each cycle; an acyclic registry returns an empty
// list.
func AnalyzeReductionCycles(reg *registry.Registry) []CycleWarning {
	graph := buildReductionGraph(reg)

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// reductionGraph maps a problem name to the sorted names it reduces to.
type reductionGraph map[string][]string

func buildReductionGraph(reg *registry.Registry) reductionGraph {
	graph := make(reductionGraph)
	for _, e := range reg.Entries() {
		if graph[e.Target] == nil {
			graph[e.Target] = []string{}
		}
		if !slices.Contains(graph[e.Source], e.Target) {
			graph[e.Source] = append(graph[e.Source], e.Target)
		}
	}
	for name := range graph {
		slices.Sort(graph[name])
	}
	return graph
}

func hasSelfLoop(node string, graph reductionGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC returns the strongly connected components of graph. Nodes are
// visited in sorted order and each component is sorted, so the output is
// deterministic.
func tarjanSCC(graph reductionGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range slices.Sorted(maps.Keys(graph)) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(scc []string, graph reductionGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("%s reduces to itself", name),
			Level:   "warning",
		}
	}
	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("reduction cycle: %s", strings.Join(path, " -> ")),
		Level:   "info",
	}
}

// reconstructCyclePath walks from the first member of scc along edges that
// stay inside it until it returns to the start or runs out of unvisited
// members.
func reconstructCyclePath(scc []string, graph reductionGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true
		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
