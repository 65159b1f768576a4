package compiler

import (
	"fmt"
	"log/slog"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/registry"
)

// Top-level sections of a catalog.
const (
	sectionVariant   = "variant"
	sectionProblem   = "problem"
	sectionReduction = "reduction"
)

// VariantType is one declared node of a variant tree. An empty Parent marks
// a root.
type VariantType struct {
	Category string
	Value    string
	Parent   string
	Pos      token.Pos
}

// CompiledProblem is a problem declaration with its concrete variant nodes.
type CompiledProblem struct {
	registry.Problem
	Variants []ir.Variant
	Pos      token.Pos
}

// CompiledReduction is a reduction declaration keyed by its catalog id.
type CompiledReduction struct {
	ID    string
	Entry registry.Entry
	Pos   token.Pos
}

// CompileCatalog registers everything a CUE catalog declares into reg:
// variant trees first, then problems and their variant nodes, then
// reductions. It stops at the first error.
//
// A catalog looks like:
//
//	variant: graph: {
//	    SimpleGraph: {}
//	    UnitDiskGraph: parent: "SimpleGraph"
//	}
//	problem: MaximumIndependentSet: {
//	    category:    "graph"
//	    size_fields: ["num_vertices", "num_edges"]
//	}
//	reduction: mis_to_mvc: {
//	    source: "MaximumIndependentSet"
//	    target: "MinimumVertexCover"
//	    source_variant: graph: "SimpleGraph"
//	    overhead: num_vertices: "num_vertices"
//	}
//
// Overhead formulas are parsed here, so a malformed formula fails the whole
// catalog instead of dropping the reduction. A formula is a string or a bare
// number (`overhead: num_vars: 1`).
func CompileCatalog(v cue.Value, reg *registry.Registry) error {
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}

	variants, err := CompileVariants(v)
	if err != nil {
		return err
	}
	h := reg.Variants()
	for _, vt := range variants {
		if err := h.Register(vt.Category, vt.Value, vt.Parent, nil); err != nil {
			return &CompileError{Field: sectionVariant + "." + vt.Category + "." + vt.Value, Message: err.Error(), Pos: vt.Pos}
		}
	}

	problems, err := CompileProblems(v)
	if err != nil {
		return err
	}
	for _, p := range problems {
		if err := reg.RegisterProblem(p.Problem); err != nil {
			return &CompileError{Field: sectionProblem + "." + p.Name, Message: err.Error(), Pos: p.Pos}
		}
		for _, node := range p.Variants {
			if err := reg.RegisterVariantNode(p.Name, node); err != nil {
				return &CompileError{Field: sectionProblem + "." + p.Name + ".variants", Message: err.Error(), Pos: p.Pos}
			}
		}
	}

	reductions, err := CompileReductions(v)
	if err != nil {
		return err
	}
	for _, r := range reductions {
		if err := reg.Register(r.Entry); err != nil {
			return &CompileError{Field: sectionReduction + "." + r.ID, Message: err.Error(), Pos: r.Pos}
		}
	}

	slog.Debug("catalog compiled", "variants", len(variants), "problems", len(problems), "reductions", len(reductions))
	return nil
}

// CompileVariants extracts the variant trees, ordered by category and then
// with every parent before its children.
func CompileVariants(v cue.Value) ([]VariantType, error) {
	section := v.LookupPath(cue.ParsePath(sectionVariant))
	if !section.Exists() {
		return nil, nil
	}
	categories, err := section.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []VariantType
	for categories.Next() {
		category := categories.Label()
		values, err := categories.Value().Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var tree []VariantType
		for values.Next() {
			vt := VariantType{Category: category, Value: values.Label(), Pos: values.Value().Pos()}
			if parentVal := values.Value().LookupPath(cue.ParsePath("parent")); parentVal.Exists() {
				parent, err := parentVal.String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				vt.Parent = parent
			}
			tree = append(tree, vt)
		}
		out = append(out, parentsFirst(tree)...)
	}
	return out, nil
}

// parentsFirst orders a tree so each value follows its parent. Values whose
// parent is outside the tree keep their relative order and come first.
func parentsFirst(tree []VariantType) []VariantType {
	declared := make(map[string]bool, len(tree))
	for _, vt := range tree {
		declared[vt.Value] = true
	}
	placed := make(map[string]bool, len(tree))
	out := make([]VariantType, 0, len(tree))
	for len(out) < len(tree) {
		progress := false
		for _, vt := range tree {
			if placed[vt.Value] {
				continue
			}
			if vt.Parent == "" || !declared[vt.Parent] || placed[vt.Parent] {
				out = append(out, vt)
				placed[vt.Value] = true
				progress = true
			}
		}
		if !progress {
			// A cycle. Append the rest and let registration report it.
			for _, vt := range tree {
				if !placed[vt.Value] {
					out = append(out, vt)
					placed[vt.Value] = true
				}
			}
		}
	}
	return out
}

// CompileProblems extracts problem declarations.
func CompileProblems(v cue.Value) ([]CompiledProblem, error) {
	section := v.LookupPath(cue.ParsePath(sectionProblem))
	if !section.Exists() {
		return nil, nil
	}
	iter, err := section.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []CompiledProblem
	for iter.Next() {
		pv := iter.Value()
		p := CompiledProblem{Problem: registry.Problem{Name: iter.Label()}, Pos: pv.Pos()}
		if p.Category, err = optionalString(pv, "category"); err != nil {
			return nil, err
		}
		if p.Description, err = optionalString(pv, "description"); err != nil {
			return nil, err
		}
		if p.SizeFields, err = optionalStrings(pv, "size_fields"); err != nil {
			return nil, err
		}
		if variantsVal := pv.LookupPath(cue.ParsePath("variants")); variantsVal.Exists() {
			list, err := variantsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for list.Next() {
				node, err := compileVariant(list.Value())
				if err != nil {
					return nil, err
				}
				p.Variants = append(p.Variants, node)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// CompileReductions extracts reduction declarations. Each becomes a
// registry entry whose Origin is the catalog id.
func CompileReductions(v cue.Value) ([]CompiledReduction, error) {
	section := v.LookupPath(cue.ParsePath(sectionReduction))
	if !section.Exists() {
		return nil, nil
	}
	iter, err := section.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []CompiledReduction
	for iter.Next() {
		id := iter.Label()
		rv := iter.Value()
		r := CompiledReduction{ID: id, Pos: rv.Pos(), Entry: registry.Entry{Origin: id}}

		for _, endpoint := range []struct {
			field string
			dst   *string
		}{{"source", &r.Entry.Source}, {"target", &r.Entry.Target}} {
			val := rv.LookupPath(cue.ParsePath(endpoint.field))
			if !val.Exists() {
				return nil, &CompileError{Field: sectionReduction + "." + id + "." + endpoint.field, Message: endpoint.field + " is required", Pos: rv.Pos()}
			}
			s, err := val.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			*endpoint.dst = s
		}

		for _, side := range []struct {
			field string
			dst   *ir.Variant
		}{{"source_variant", &r.Entry.SourceVariant}, {"target_variant", &r.Entry.TargetVariant}} {
			val := rv.LookupPath(cue.ParsePath(side.field))
			if !val.Exists() {
				continue
			}
			variant, err := compileVariant(val)
			if err != nil {
				return nil, err
			}
			*side.dst = variant
		}

		formulas, err := compileFormulaMap(rv.LookupPath(cue.ParsePath("overhead")))
		if err != nil {
			return nil, err
		}
		overhead, err := registry.ParseOverhead(formulas)
		if err != nil {
			return nil, &CompileError{Field: sectionReduction + "." + id + ".overhead", Message: err.Error(), Pos: rv.Pos()}
		}
		r.Entry.Overhead = overhead
		out = append(out, r)
	}
	return out, nil
}

func compileVariant(v cue.Value) (ir.Variant, error) {
	m, err := compileStringMap(v)
	if err != nil {
		return nil, err
	}
	return ir.Variant(m), nil
}

// compileStringMap reads a struct of string fields. A missing value yields
// an empty map.
func compileStringMap(v cue.Value) (map[string]string, error) {
	out := make(map[string]string)
	if !v.Exists() {
		return out, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: iter.Label(), Message: fmt.Sprintf("must be a string: %v", err), Pos: iter.Value().Pos()}
		}
		out[iter.Label()] = s
	}
	return out, nil
}

// compileFormulaMap reads an overhead struct, mapping each field to its
// formula text.
func compileFormulaMap(v cue.Value) (map[string]string, error) {
	out := make(map[string]string)
	if !v.Exists() {
		return out, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		text, err := formulaText(iter.Value())
		if err != nil {
			return nil, &CompileError{Field: iter.Label(), Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out[iter.Label()] = text
	}
	return out, nil
}

// formulaText returns the formula a CUE value spells: a string as written,
// a number in decimal notation.
func formulaText(v cue.Value) (string, error) {
	switch v.Kind() {
	case cue.StringKind:
		return v.String()
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", fmt.Errorf("formula %v: %w", v, err)
		}
		return strconv.FormatInt(n, 10), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return "", fmt.Errorf("formula %v: %w", v, err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("formula must be a string or number, got %v", v.IncompleteKind())
}

func optionalString(v cue.Value, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return "", nil
	}
	s, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return nil, nil
	}
	list, err := val.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}
