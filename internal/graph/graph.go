package graph

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/reductions/internal/registry"
	"github.com/roach88/reductions/internal/variant"
)

type namePair struct {
	source, target string
}

// Graph is the immutable name-level reduction graph.
type Graph struct {
	reg      *registry.Registry
	variants *variant.Hierarchy
	names    []string
	nodes    map[string]bool
	out      map[string][]string
	in       map[string][]string
	edges    map[namePair]bool
}

// Build constructs the graph from every registration in reg and seals reg.
func Build(reg *registry.Registry) *Graph {
	reg.Seal()
	g := &Graph{
		reg:      reg,
		variants: reg.Variants(),
		nodes:    make(map[string]bool),
		out:      make(map[string][]string),
		in:       make(map[string][]string),
		edges:    make(map[namePair]bool),
	}
	for _, name := range reg.Names() {
		g.nodes[name] = true
	}
	for _, e := range reg.Entries() {
		pair := namePair{e.Source, e.Target}
		if g.edges[pair] {
			continue
		}
		g.edges[pair] = true
		g.out[e.Source] = append(g.out[e.Source], e.Target)
		g.in[e.Target] = append(g.in[e.Target], e.Source)
	}
	for _, adj := range []map[string][]string{g.out, g.in} {
		for name := range adj {
			slices.Sort(adj[name])
		}
	}
	g.names = slices.Sorted(maps.Keys(g.nodes))

	slog.Debug("reduction graph built", "types", len(g.names), "edges", len(g.edges), "entries", reg.Len())
	return g
}

// Registry returns the registry the graph was built from.
func (g *Graph) Registry() *registry.Registry { return g.reg }

// Variants returns the variant hierarchy used for resolution.
func (g *Graph) Variants() *variant.Hierarchy { return g.variants }

// Problems returns all problem names, sorted.
func (g *Graph) Problems() []string { return slices.Clone(g.names) }

// HasProblem reports whether name is a node.
func (g *Graph) HasProblem(name string) bool { return g.nodes[name] }

// NumTypes returns the number of problem names.
func (g *Graph) NumTypes() int { return len(g.names) }

// NumReductions returns the number of distinct name-level edges.
func (g *Graph) NumReductions() int { return len(g.edges) }

// NumEntries returns the number of registered entries, counting overloads.
func (g *Graph) NumEntries() int { return g.reg.Len() }

// HasDirectReduction reports whether at least one entry reduces source to target.
func (g *Graph) HasDirectReduction(source, target string) bool {
	return g.edges[namePair{source, target}]
}

// Successors returns the direct reduction targets of name, sorted.
func (g *Graph) Successors(name string) []string { return slices.Clone(g.out[name]) }

// Predecessors returns the problems that reduce directly to name, sorted.
func (g *Graph) Predecessors(name string) []string { return slices.Clone(g.in[name]) }

// FindPaths returns every simple name-level path from source to target,
// ordered by length and then lexically. A problem trivially reaches itself.
func (g *Graph) FindPaths(source, target string) [][]string {
	if !g.nodes[source] || !g.nodes[target] {
		return nil
	}
	var paths [][]string
	onPath := map[string]bool{source: true}
	current := []string{source}

	var walk func(string)
	walk = func(name string) {
		if name == target {
			paths = append(paths, slices.Clone(current))
			return
		}
		for _, next := range g.out[name] {
			if onPath[next] {
				continue
			}
			onPath[next] = true
			current = append(current, next)
			walk(next)
			current = current[:len(current)-1]
			onPath[next] = false
		}
	}
	walk(source)

	slices.SortStableFunc(paths, comparePaths)
	return paths
}

// FindShortestPath returns a name-level path with the fewest edges, or nil.
// Ties are broken by visiting successors in sorted order.
func (g *Graph) FindShortestPath(source, target string) []string {
	if !g.nodes[source] || !g.nodes[target] {
		return nil
	}
	prev := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == target {
			var path []string
			for n := target; n != ""; n = prev[n] {
				path = append(path, n)
				if n == source {
					break
				}
			}
			slices.Reverse(path)
			return path
		}
		for _, next := range g.out[name] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = name
			queue = append(queue, next)
		}
	}
	return nil
}

// Reachable reports whether any name-level path leads from source to target.
func (g *Graph) Reachable(source, target string) bool {
	return g.FindShortestPath(source, target) != nil
}

// reachers returns every name with a path to target, target included.
func (g *Graph) reachers(target string) map[string]bool {
	seen := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, prev := range g.in[name] {
			if !seen[prev] {
				seen[prev] = true
				queue = append(queue, prev)
			}
		}
	}
	return seen
}

// Neighbor is one node of a k-hop neighbourhood tree.
type Neighbor struct {
	Name   string `json:"name"`
	Hops   int    `json:"hops"`
	Parent string `json:"parent"`
}

// Outgoing returns the problems reachable from name in at most hops
// reductions, in breadth-first order. Each appears once, attached to the
// parent that first reached it.
func (g *Graph) Outgoing(name string, hops int) []Neighbor {
	return g.neighborhood(name, hops, g.out)
}

// Incoming returns the problems that reach name in at most hops reductions.
func (g *Graph) Incoming(name string, hops int) []Neighbor {
	return g.neighborhood(name, hops, g.in)
}

func (g *Graph) neighborhood(root string, hops int, adj map[string][]string) []Neighbor {
	if hops < 1 {
		hops = 1
	}
	var out []Neighbor
	seen := map[string]bool{root: true}
	frontier := []string{root}
	for depth := 1; depth <= hops && len(frontier) > 0; depth++ {
		var next []string
		for _, parent := range frontier {
			for _, n := range adj[parent] {
				if seen[n] {
					continue
				}
				seen[n] = true
				out = append(out, Neighbor{Name: n, Hops: depth, Parent: parent})
				next = append(next, n)
			}
		}
		frontier = next
	}
	return out
}

func comparePaths(a, b []string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return slices.Compare(a, b)
}
