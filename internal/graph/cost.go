package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

// CostFunc prices one reduction edge given the size entering it. The search
// sums costs along a path and minimizes the total. Results must be
// non-negative; an error or a negative or NaN cost makes the edge unusable
// for that input.
//
// Implementations must be pure functions of their arguments so that
// concurrent searches stay deterministic.
type CostFunc interface {
	EdgeCost(overhead registry.Overhead, size ir.ProblemSize) (float64, error)
}

// MinimizeSteps prices every reduction at 1: fewest reductions wins.
type MinimizeSteps struct{}

// EdgeCost implements CostFunc.
func (MinimizeSteps) EdgeCost(registry.Overhead, ir.ProblemSize) (float64, error) { return 1, nil }

// Minimize prices an edge by one field of its output size. A field the
// overhead does not produce costs 0.
type Minimize string

// EdgeCost implements CostFunc.
func (m Minimize) EdgeCost(overhead registry.Overhead, size ir.ProblemSize) (float64, error) {
	out, err := overhead.EvaluateOutputSize(size)
	if err != nil {
		return 0, err
	}
	return fieldValue(out, string(m)), nil
}

// MinimizeWeighted prices an edge by a weighted sum of output fields.
type MinimizeWeighted map[string]float64

// EdgeCost implements CostFunc.
func (m MinimizeWeighted) EdgeCost(overhead registry.Overhead, size ir.ProblemSize) (float64, error) {
	out, err := overhead.EvaluateOutputSize(size)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for field, w := range m {
		total += w * fieldValue(out, field)
	}
	return total, nil
}

// MinimizeMax prices an edge by the largest of the listed output fields.
type MinimizeMax []string

// EdgeCost implements CostFunc.
func (m MinimizeMax) EdgeCost(overhead registry.Overhead, size ir.ProblemSize) (float64, error) {
	out, err := overhead.EvaluateOutputSize(size)
	if err != nil {
		return 0, err
	}
	best := 0.0
	for _, field := range m {
		best = math.Max(best, fieldValue(out, field))
	}
	return best, nil
}

// DefaultLexicographicEpsilon scales each successive field's contribution.
const DefaultLexicographicEpsilon = 1e-10

// MinimizeLexicographic prefers smaller values of Fields[0], then Fields[1],
// and so on. Field i is weighted by Epsilon^i, so later fields only break
// ties between otherwise equal costs.
type MinimizeLexicographic struct {
	Fields  []string
	Epsilon float64 // zero means DefaultLexicographicEpsilon
}

// EdgeCost implements CostFunc.
func (m MinimizeLexicographic) EdgeCost(overhead registry.Overhead, size ir.ProblemSize) (float64, error) {
	out, err := overhead.EvaluateOutputSize(size)
	if err != nil {
		return 0, err
	}
	eps := m.Epsilon
	if eps == 0 {
		eps = DefaultLexicographicEpsilon
	}
	total, scale := 0.0, 1.0
	for _, field := range m.Fields {
		total += scale * fieldValue(out, field)
		scale *= eps
	}
	return total, nil
}

// Custom adapts a function to CostFunc.
type Custom func(overhead registry.Overhead, size ir.ProblemSize) (float64, error)

// EdgeCost implements CostFunc.
func (c Custom) EdgeCost(overhead registry.Overhead, size ir.ProblemSize) (float64, error) {
	return c(overhead, size)
}

func fieldValue(size ir.ProblemSize, field string) float64 {
	v, _ := size.Value(field)
	return v
}

// ParseCost parses a cost policy:
//
//	minimize-steps               MinimizeSteps
//	minimize:<field>             Minimize
//	weighted:<field>=<w>,...     MinimizeWeighted
//	max:<field>,...              MinimizeMax
//	lex:<field>,...              MinimizeLexicographic
func ParseCost(text string) (CostFunc, error) {
	text = strings.TrimSpace(text)
	if text == "minimize-steps" || text == "steps" {
		return MinimizeSteps{}, nil
	}
	kind, arg, ok := strings.Cut(text, ":")
	if !ok || strings.TrimSpace(arg) == "" {
		return nil, fmt.Errorf("invalid cost %q: expected minimize-steps, minimize:<field>, weighted:<f>=<w>,..., max:<f>,... or lex:<f>,...", text)
	}
	switch kind {
	case "minimize":
		return Minimize(strings.TrimSpace(arg)), nil
	case "weighted":
		weights := make(MinimizeWeighted)
		for _, part := range strings.Split(arg, ",") {
			field, raw, ok := strings.Cut(part, "=")
			if !ok {
				return nil, fmt.Errorf("invalid weight %q: expected field=weight", strings.TrimSpace(part))
			}
			w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("invalid weight %q: must be a finite non-negative number", strings.TrimSpace(part))
			}
			weights[strings.TrimSpace(field)] = w
		}
		return weights, nil
	case "max":
		return MinimizeMax(splitFields(arg)), nil
	case "lex":
		return MinimizeLexicographic{Fields: splitFields(arg)}, nil
	}
	return nil, fmt.Errorf("invalid cost %q: unknown policy %q", text, kind)
}

func splitFields(arg string) []string {
	var fields []string
	for _, f := range strings.Split(arg, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
