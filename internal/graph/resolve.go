package graph

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

// EdgeKind distinguishes reduction steps from natural casts.
type EdgeKind int

const (
	// EdgeReduction applies a registered reduction and its overhead.
	EdgeReduction EdgeKind = iota
	// EdgeNaturalCast views an instance as a more general variant of the
	// same problem. It leaves size unchanged.
	EdgeNaturalCast
)

func (k EdgeKind) String() string {
	if k == EdgeNaturalCast {
		return "natural_cast"
	}
	return "reduction"
}

// MarshalText encodes the kind as its name.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ReductionStep is one (name, variant) node of a resolved path.
type ReductionStep struct {
	Name    string     `json:"name"`
	Variant ir.Variant `json:"variant"`
}

func (s ReductionStep) String() string { return s.Name + s.Variant.String() }

// PathEdge connects consecutive steps of a resolved path. Entry is nil for
// natural casts.
type PathEdge struct {
	Kind     EdgeKind
	Entry    *registry.Entry
	Overhead registry.Overhead
}

// ResolvedPath is a concrete variant-level path. Edges[i] leads from
// Steps[i] to Steps[i+1].
//
// Sizes and Cost are filled in by FindCheapestPath; a path from ResolvePath
// has nil Sizes until StepSizes is called by the caller.
type ResolvedPath struct {
	Steps []ReductionStep
	Edges []PathEdge
	Sizes []ir.ProblemSize
	Cost  float64
}

// Source returns the first step.
func (p *ResolvedPath) Source() ReductionStep { return p.Steps[0] }

// Target returns the last step.
func (p *ResolvedPath) Target() ReductionStep { return p.Steps[len(p.Steps)-1] }

// Len returns the number of edges, casts included.
func (p *ResolvedPath) Len() int { return len(p.Edges) }

// NumReductions counts reduction edges.
func (p *ResolvedPath) NumReductions() int { return p.count(EdgeReduction) }

// NumCasts counts natural-cast edges.
func (p *ResolvedPath) NumCasts() int { return p.count(EdgeNaturalCast) }

func (p *ResolvedPath) count(kind EdgeKind) int {
	n := 0
	for _, e := range p.Edges {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Names returns the problem names along the path without the repeats that
// casts introduce.
func (p *ResolvedPath) Names() []string {
	var names []string
	for _, s := range p.Steps {
		if len(names) == 0 || names[len(names)-1] != s.Name {
			names = append(names, s.Name)
		}
	}
	return names
}

// StepSizes threads input through the path and returns the size at every
// step. Casts carry the size unchanged.
func (p *ResolvedPath) StepSizes(input ir.ProblemSize) ([]ir.ProblemSize, error) {
	sizes := make([]ir.ProblemSize, 0, len(p.Steps))
	sizes = append(sizes, input)
	current := input
	for i, e := range p.Edges {
		if e.Kind == EdgeReduction {
			next, err := e.Overhead.EvaluateOutputSize(current)
			if err != nil {
				return nil, fmt.Errorf("step %d (%s -> %s): %w", i, p.Steps[i], p.Steps[i+1], err)
			}
			current = next
		}
		sizes = append(sizes, current)
	}
	return sizes, nil
}

// TotalOverhead returns the size after the last step for the given input.
func (p *ResolvedPath) TotalOverhead(input ir.ProblemSize) (ir.ProblemSize, error) {
	sizes, err := p.StepSizes(input)
	if err != nil {
		return ir.ProblemSize{}, err
	}
	return sizes[len(sizes)-1], nil
}

// ComposedOverhead folds every reduction overhead into one symbolic overhead
// over the source's size fields. A path without reductions yields the zero
// Overhead.
func (p *ResolvedPath) ComposedOverhead() registry.Overhead {
	var acc registry.Overhead
	first := true
	for _, e := range p.Edges {
		if e.Kind != EdgeReduction {
			continue
		}
		if first {
			acc, first = e.Overhead, false
			continue
		}
		acc = acc.Compose(e.Overhead)
	}
	return acc
}

// String renders "A{graph=UnitDiskGraph} ~> A{graph=SimpleGraph} -> B{}",
// with ~> marking natural casts.
func (p *ResolvedPath) String() string {
	var b strings.Builder
	for i, s := range p.Steps {
		if i > 0 {
			if p.Edges[i-1].Kind == EdgeNaturalCast {
				b.WriteString(" ~> ")
			} else {
				b.WriteString(" -> ")
			}
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// ResolvePath lifts a name-level path into a variant-level path starting
// from source. For each edge it picks the tightest entry compatible with the
// current variant, casting first when that entry expects a more general
// variant. If target is non-empty the final variant must be reducible to it
// and a trailing cast is added when they differ.
//
// ok is false when some edge has no compatible entry. That is an expected
// outcome; callers should try another name path.
func (g *Graph) ResolvePath(path []string, source, target ir.Variant) (resolved *ResolvedPath, ok bool) {
	if len(path) == 0 {
		return nil, false
	}
	current := source.Clone()
	rp := &ResolvedPath{Steps: []ReductionStep{{Name: path[0], Variant: current}}}

	for i := 0; i+1 < len(path); i++ {
		entry, found := g.resolveEdge(path[i], path[i+1], current)
		if !found {
			slog.Debug("no compatible entry", "source", path[i], "target", path[i+1], "variant", current.String())
			return nil, false
		}
		if cast := current.With(entry.SourceVariant); !cast.Equal(current) {
			rp.appendCast(path[i], cast)
		}
		current = entry.TargetVariant.Clone()
		e := entry
		rp.Steps = append(rp.Steps, ReductionStep{Name: path[i+1], Variant: current})
		rp.Edges = append(rp.Edges, PathEdge{Kind: EdgeReduction, Entry: &e, Overhead: entry.Overhead})
	}

	if len(target) > 0 {
		if !g.variants.IsReducibleVariant(current, target) {
			return nil, false
		}
		if final := current.With(target); !final.Equal(current) {
			rp.appendCast(path[len(path)-1], final)
		}
	}
	return rp, true
}

func (p *ResolvedPath) appendCast(name string, v ir.Variant) {
	p.Steps = append(p.Steps, ReductionStep{Name: name, Variant: v})
	p.Edges = append(p.Edges, PathEdge{Kind: EdgeNaturalCast})
}

// resolveEdge picks the entry for source -> target usable from current.
//
// An entry is compatible when current is reducible to its source variant on
// every category the entry constrains. Among compatible entries, one
// dominates another when its source variant is strictly more specific. The
// first non-dominated entry in canonical order (source variant text, then
// target variant text) wins, so incomparable ties resolve deterministically.
func (g *Graph) resolveEdge(source, target string, current ir.Variant) (registry.Entry, bool) {
	var compatible []registry.Entry
	for _, e := range g.reg.EntriesBetween(source, target) {
		if g.variants.IsReducibleVariant(current, e.SourceVariant) {
			compatible = append(compatible, e)
		}
	}
	if len(compatible) == 0 {
		return registry.Entry{}, false
	}

	for i, candidate := range compatible {
		dominated := false
		for j, other := range compatible {
			if i != j && g.dominates(other.SourceVariant, candidate.SourceVariant) {
				dominated = true
				break
			}
		}
		if !dominated {
			if len(compatible) > 1 {
				slog.Debug("overload resolved", "source", source, "target", target,
					"variant", current.String(), "chosen", candidate.SourceVariant.String(), "candidates", len(compatible))
			}
			return candidate, true
		}
	}
	// Domination is a strict partial order, so some candidate is maximal.
	return compatible[0], true
}

// dominates reports whether a is strictly more specific than b.
func (g *Graph) dominates(a, b ir.Variant) bool {
	return !a.Equal(b) && g.variants.IsReducibleVariant(a, b)
}
