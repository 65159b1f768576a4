package graph

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/roach88/reductions/internal/ir"
)

// FindCheapestPath runs a single-source weighted search over (name, variant)
// states. Each candidate edge is resolved to a concrete entry as it is
// expanded; edges without a compatible entry, or whose cost or output size
// cannot be evaluated for the size reaching them, are skipped.
//
// Among equally cheap paths the one with fewer reductions wins, then the
// lexically smaller name sequence. The returned path has Sizes and Cost set.
//
// Failures are *SearchError values. NO_PATH means no reduction chain exists
// between the names at all; NO_COMPATIBLE_RULE means chains exist but none
// fits the variants; INFEASIBLE means a compatible chain exists but its
// overhead could not be evaluated for input. Names that cannot reach target
// are never expanded, so their formulas do not affect the classification.
func (g *Graph) FindCheapestPath(source string, sourceVariant ir.Variant, target string, targetVariant ir.Variant, input ir.ProblemSize, cost CostFunc) (*ResolvedPath, error) {
	if cost == nil {
		cost = MinimizeSteps{}
	}
	path, err := g.search(source, sourceVariant, target, targetVariant, input, cost)
	if err != nil {
		return nil, err
	}
	sizes, err := path.StepSizes(input)
	if err != nil {
		panic(fmt.Sprintf("graph: settled path %v does not evaluate: %v", path.Names(), err))
	}
	path.Sizes = sizes
	return path, nil
}

// FindFewestReductions returns the variant-compatible path with the fewest
// reductions without evaluating any overhead, for queries that have no
// input size. Cost is the reduction count and Sizes is nil. It never
// returns INFEASIBLE.
func (g *Graph) FindFewestReductions(source string, sourceVariant ir.Variant, target string, targetVariant ir.Variant) (*ResolvedPath, error) {
	return g.search(source, sourceVariant, target, targetVariant, ir.ProblemSize{}, nil)
}

// search runs the state search. A nil cost means structural search: every
// reduction costs 1 and sizes are not evaluated.
func (g *Graph) search(source string, sourceVariant ir.Variant, target string, targetVariant ir.Variant, input ir.ProblemSize, cost CostFunc) (*ResolvedPath, error) {
	for _, name := range []string{source, target} {
		if !g.nodes[name] {
			return nil, &SearchError{Code: ErrCodeUnknownProblem, Source: source, Target: target,
				Err: fmt.Errorf("unknown problem %q", name)}
		}
	}
	if !g.Reachable(source, target) {
		return nil, &SearchError{Code: ErrCodeNoPath, Source: source, Target: target}
	}

	r := &searchRunner{
		g:         g,
		target:    target,
		targetVar: targetVariant,
		viable:    g.reachers(target),
		cost:      cost,
		best:      make(map[string]*searchItem),
		settled:   make(map[string]bool),
	}
	r.init(source, sourceVariant.Clone(), input)
	found := r.process()
	if found == nil {
		if r.lastErr != nil {
			return nil, &SearchError{Code: ErrCodeInfeasible, Source: source, Target: target, Err: r.lastErr}
		}
		return nil, &SearchError{Code: ErrCodeNoCompatibleRule, Source: source, Target: target}
	}

	path, ok := g.ResolvePath(found.names, sourceVariant, targetVariant)
	if !ok {
		// The search only settles states that resolve, so this is a bug.
		panic(fmt.Sprintf("graph: settled path %v does not resolve", found.names))
	}
	path.Cost = found.cost

	slog.Debug("path found", "source", source, "target", target,
		"steps", found.steps, "cost", found.cost, "settled", len(r.settled))
	return path, nil
}

// searchRunner holds the state of one search call. Nothing in it
// outlives the call, so concurrent searches share only the immutable graph.
type searchRunner struct {
	g         *Graph
	target    string
	targetVar ir.Variant
	viable    map[string]bool // names with a path to target
	cost      CostFunc        // nil for structural search
	best      map[string]*searchItem
	settled   map[string]bool
	pq        searchPQ
	lastErr   error
}

func (r *searchRunner) init(source string, v ir.Variant, input ir.ProblemSize) {
	start := &searchItem{name: source, variant: v, size: input, names: []string{source}}
	r.best[start.key()] = start
	heap.Init(&r.pq)
	heap.Push(&r.pq, start)
}

func (r *searchRunner) process() *searchItem {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*searchItem)
		key := item.key()
		if r.settled[key] {
			continue
		}
		r.settled[key] = true

		if item.name == r.target {
			if r.g.variants.IsReducibleVariant(item.variant, r.targetVar) {
				return item
			}
			// Leaving the target and coming back would repeat a name.
			continue
		}
		r.relax(item)
	}
	return nil
}

func (r *searchRunner) relax(u *searchItem) {
	for _, next := range r.g.out[u.name] {
		if !r.viable[next] || slices.Contains(u.names, next) {
			continue
		}
		entry, ok := r.g.resolveEdge(u.name, next, u.variant)
		if !ok {
			continue
		}
		w, size := 1.0, u.size
		if r.cost != nil {
			var err error
			w, err = r.cost.EdgeCost(entry.Overhead, u.size)
			if err == nil && (w < 0 || math.IsNaN(w)) {
				err = fmt.Errorf("cost %v is not a non-negative number", w)
			}
			if err != nil {
				r.skip(u, next, err)
				continue
			}
			if size, err = entry.Overhead.EvaluateOutputSize(u.size); err != nil {
				r.skip(u, next, err)
				continue
			}
		}

		names := make([]string, len(u.names), len(u.names)+1)
		copy(names, u.names)
		candidate := &searchItem{
			name:    next,
			variant: entry.TargetVariant.Clone(),
			size:    size,
			cost:    u.cost + w,
			steps:   u.steps + 1,
			names:   append(names, next),
		}
		key := candidate.key()
		if r.settled[key] {
			continue
		}
		if prev, seen := r.best[key]; seen && !candidate.less(prev) {
			continue
		}
		r.best[key] = candidate
		heap.Push(&r.pq, candidate)
	}
}

func (r *searchRunner) skip(u *searchItem, next string, err error) {
	r.lastErr = fmt.Errorf("%s -> %s at %s: %w", u.name, next, u.size, err)
	slog.Debug("edge skipped", "source", u.name, "target", next,
		"variant", u.variant.String(), "size", u.size.String(), "error", err)
}

// searchItem is one (name, variant) state with the path that reached it.
type searchItem struct {
	name    string
	variant ir.Variant
	size    ir.ProblemSize
	cost    float64
	steps   int
	names   []string
}

func (it *searchItem) key() string {
	return it.name + "|" + it.variant.String()
}

// less orders by cost, then step count, then name sequence, then variant.
func (it *searchItem) less(other *searchItem) bool {
	if it.cost != other.cost {
		return it.cost < other.cost
	}
	if it.steps != other.steps {
		return it.steps < other.steps
	}
	if c := slices.Compare(it.names, other.names); c != 0 {
		return c < 0
	}
	return strings.Compare(it.variant.String(), other.variant.String()) < 0
}

type searchPQ []*searchItem

func (pq searchPQ) Len() int { return len(pq) }

func (pq searchPQ) Less(i, j int) bool { return pq[i].less(pq[j]) }

func (pq searchPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *searchPQ) Push(x any) { *pq = append(*pq, x.(*searchItem)) }

func (pq *searchPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
