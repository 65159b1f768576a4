package graph

import (
	"cmp"
	"maps"
	"slices"

	"github.com/roach88/reductions/internal/ir"
)

// SnapshotNode is one (name, variant) node of an export.
type SnapshotNode struct {
	Name     string     `json:"name"`
	Variant  ir.Variant `json:"variant"`
	Category string     `json:"category,omitempty"`
}

// SnapshotEdge is one reduction or natural-cast edge of an export.
// Overhead is nil for casts.
type SnapshotEdge struct {
	Source        string            `json:"source"`
	SourceVariant ir.Variant        `json:"source_variant"`
	Target        string            `json:"target"`
	TargetVariant ir.Variant        `json:"target_variant"`
	Kind          string            `json:"kind"`
	Overhead      map[string]string `json:"overhead,omitempty"`
}

// Snapshot is a deterministic, diffable view of the variant-level graph for
// export tooling.
type Snapshot struct {
	Version string         `json:"version"`
	Nodes   []SnapshotNode `json:"nodes"`
	Edges   []SnapshotEdge `json:"edges"`
}

// Snapshot collects every variant node (entry endpoints, declared variant
// nodes, and a bare node for names with neither) and every edge between
// them. Reduction edges come from entries. A natural-cast edge joins two
// nodes of the same problem whose variants have the same categories and
// where the first is reducible to the second.
func (g *Graph) Snapshot() Snapshot {
	byName := make(map[string]map[string]ir.Variant)
	add := func(name string, v ir.Variant) {
		if byName[name] == nil {
			byName[name] = make(map[string]ir.Variant)
		}
		byName[name][v.String()] = v.Clone()
	}

	entries := g.reg.Entries()
	for _, e := range entries {
		add(e.Source, e.SourceVariant)
		add(e.Target, e.TargetVariant)
	}
	for _, name := range g.names {
		for _, v := range g.reg.VariantNodes(name) {
			add(name, v)
		}
		if byName[name] == nil {
			add(name, ir.Variant{})
		}
	}

	snap := Snapshot{Version: ir.SnapshotVersion, Nodes: []SnapshotNode{}, Edges: []SnapshotEdge{}}
	for _, name := range g.names {
		category := ""
		if p, ok := g.reg.Problem(name); ok {
			category = p.Category
		}
		for _, key := range slices.Sorted(maps.Keys(byName[name])) {
			snap.Nodes = append(snap.Nodes, SnapshotNode{Name: name, Variant: byName[name][key], Category: category})
		}
	}

	for _, e := range entries {
		snap.Edges = append(snap.Edges, SnapshotEdge{
			Source:        e.Source,
			SourceVariant: e.SourceVariant.Clone(),
			Target:        e.Target,
			TargetVariant: e.TargetVariant.Clone(),
			Kind:          EdgeReduction.String(),
			Overhead:      e.Overhead.Strings(),
		})
	}
	for _, name := range g.names {
		variants := byName[name]
		keys := slices.Sorted(maps.Keys(variants))
		for _, fromKey := range keys {
			for _, toKey := range keys {
				from, to := variants[fromKey], variants[toKey]
				if fromKey == toKey || !slices.Equal(from.Keys(), to.Keys()) {
					continue
				}
				if !g.variants.IsReducibleVariant(from, to) {
					continue
				}
				snap.Edges = append(snap.Edges, SnapshotEdge{
					Source:        name,
					SourceVariant: from.Clone(),
					Target:        name,
					TargetVariant: to.Clone(),
					Kind:          EdgeNaturalCast.String(),
				})
			}
		}
	}
	slices.SortFunc(snap.Edges, compareSnapshotEdges)
	return snap
}

func compareSnapshotEdges(a, b SnapshotEdge) int {
	return cmp.Or(
		cmp.Compare(a.Source, b.Source),
		cmp.Compare(a.SourceVariant.String(), b.SourceVariant.String()),
		cmp.Compare(a.Target, b.Target),
		cmp.Compare(a.TargetVariant.String(), b.TargetVariant.String()),
		cmp.Compare(a.Kind, b.Kind),
	)
}

// NumVariantNodes returns the number of variant-level nodes an export holds.
func (g *Graph) NumVariantNodes() int { return len(g.Snapshot().Nodes) }

// IR converts the snapshot to canonical form.
func (s Snapshot) IR() ir.Object {
	nodes := make(ir.Array, len(s.Nodes))
	for i, n := range s.Nodes {
		obj := ir.Object{"name": ir.String(n.Name), "variant": n.Variant.IR()}
		if n.Category != "" {
			obj["category"] = ir.String(n.Category)
		}
		nodes[i] = obj
	}
	edges := make(ir.Array, len(s.Edges))
	for i, e := range s.Edges {
		obj := ir.Object{
			"source":         ir.String(e.Source),
			"source_variant": e.SourceVariant.IR(),
			"target":         ir.String(e.Target),
			"target_variant": e.TargetVariant.IR(),
			"kind":           ir.String(e.Kind),
		}
		if e.Overhead != nil {
			overhead := make(ir.Object, len(e.Overhead))
			for field, formula := range e.Overhead {
				overhead[field] = ir.String(formula)
			}
			obj["overhead"] = overhead
		}
		edges[i] = obj
	}
	return ir.Object{"version": ir.String(s.Version), "nodes": nodes, "edges": edges}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.IR())
}

// Hash returns the snapshot's content hash.
func (s Snapshot) Hash() (string, error) {
	return ir.ContentHash(ir.DomainSnapshot, s.IR())
}
