package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"

	"github.com/roach88/reductions/internal/expr"
)

// Validation error codes (E120-E129)
const (
	ErrMissingEndpoint     = "E120" // reduction without source or target
	ErrInvalidFormula      = "E121" // overhead formula does not parse
	ErrUnknownInputField   = "E122" // formula reads a field the source problem lacks
	ErrUnknownOutputField  = "E123" // overhead writes a field the target problem lacks
	ErrUnknownVariantValue = "E124" // variant value not declared in its category
	ErrUndefinedParent     = "E125" // variant parent not declared
	ErrInvalidFieldType    = "E126" // field has the wrong CUE type
	ErrUnknownProblem      = "E127" // reduction endpoint has no problem declaration
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateCatalog checks a catalog value and returns every problem found
// instead of stopping at the first.
//
// Size-field checks (E122, E123) apply only to problems that declare
// size_fields. Variant values are checked against the categories the
// catalog declares; categories it does not declare are not checked. E127 is
// reported only when the catalog declares at least one problem.
func ValidateCatalog(v cue.Value) []ValidationError {
	var errs []ValidationError
	add := func(field, code, msg string, at cue.Value) {
		errs = append(errs, ValidationError{Field: field, Code: code, Message: msg, Line: at.Pos().Line()})
	}

	declared := validateVariants(v, add)
	sizeFields := validateProblems(v, declared, add)

	section := v.LookupPath(cue.ParsePath(sectionReduction))
	if !section.Exists() {
		return errs
	}
	iter, err := section.Fields()
	if err != nil {
		add(sectionReduction, ErrInvalidFieldType, fmt.Sprintf("must be a struct: %v", err), section)
		return errs
	}
	for iter.Next() {
		id := iter.Label()
		rv := iter.Value()
		prefix := sectionReduction + "." + id

		endpoints := map[string]string{}
		for _, field := range []string{"source", "target"} {
			val := rv.LookupPath(cue.ParsePath(field))
			if !val.Exists() {
				add(prefix+"."+field, ErrMissingEndpoint, field+" is required", rv)
				continue
			}
			s, err := val.String()
			if err != nil || s == "" {
				add(prefix+"."+field, ErrMissingEndpoint, field+" must be a non-empty string", val)
				continue
			}
			endpoints[field] = s
			if sizeFields != nil {
				if _, ok := sizeFields[s]; !ok {
					add(prefix+"."+field, ErrUnknownProblem, fmt.Sprintf("problem %q is not declared", s), val)
				}
			}
		}

		for _, field := range []string{"source_variant", "target_variant"} {
			validateVariantValue(rv.LookupPath(cue.ParsePath(field)), prefix+"."+field, declared, add)
		}

		overhead := rv.LookupPath(cue.ParsePath("overhead"))
		if !overhead.Exists() {
			continue
		}
		fields, err := overhead.Fields()
		if err != nil {
			add(prefix+".overhead", ErrInvalidFieldType, fmt.Sprintf("must be a struct: %v", err), overhead)
			continue
		}
		sourceFields := sizeFields[endpoints["source"]]
		targetFields := sizeFields[endpoints["target"]]
		for fields.Next() {
			name := fields.Label()
			path := prefix + ".overhead." + name
			text, err := formulaText(fields.Value())
			if err != nil {
				add(path, ErrInvalidFieldType, err.Error(), fields.Value())
				continue
			}
			if len(targetFields) > 0 && !slices.Contains(targetFields, name) {
				add(path, ErrUnknownOutputField, fmt.Sprintf("%q is not a size field of %s", name, endpoints["target"]), fields.Value())
			}
			formula, err := expr.Parse(text)
			if err != nil {
				add(path, ErrInvalidFormula, err.Error(), fields.Value())
				continue
			}
			if len(sourceFields) == 0 {
				continue
			}
			for _, variable := range formula.Variables() {
				if !slices.Contains(sourceFields, variable) {
					add(path, ErrUnknownInputField, fmt.Sprintf("%q reads %q, which is not a size field of %s", text, variable, endpoints["source"]), fields.Value())
				}
			}
		}
	}
	return errs
}

// validateVariants checks variant trees and returns the declared values per
// category.
func validateVariants(v cue.Value, add func(field, code, msg string, at cue.Value)) map[string]map[string]bool {
	declared := make(map[string]map[string]bool)
	section := v.LookupPath(cue.ParsePath(sectionVariant))
	if !section.Exists() {
		return declared
	}
	categories, err := section.Fields()
	if err != nil {
		add(sectionVariant, ErrInvalidFieldType, fmt.Sprintf("must be a struct: %v", err), section)
		return declared
	}

	type parentRef struct {
		category, value, parent string
		at                      cue.Value
	}
	var parents []parentRef
	for categories.Next() {
		category := categories.Label()
		declared[category] = make(map[string]bool)
		values, err := categories.Value().Fields()
		if err != nil {
			add(sectionVariant+"."+category, ErrInvalidFieldType, fmt.Sprintf("must be a struct: %v", err), categories.Value())
			continue
		}
		for values.Next() {
			declared[category][values.Label()] = true
			parentVal := values.Value().LookupPath(cue.ParsePath("parent"))
			if !parentVal.Exists() {
				continue
			}
			parent, err := parentVal.String()
			if err != nil {
				add(sectionVariant+"."+category+"."+values.Label()+".parent", ErrInvalidFieldType, "parent must be a string", parentVal)
				continue
			}
			parents = append(parents, parentRef{category, values.Label(), parent, parentVal})
		}
	}
	for _, ref := range parents {
		if !declared[ref.category][ref.parent] {
			add(sectionVariant+"."+ref.category+"."+ref.value+".parent", ErrUndefinedParent,
				fmt.Sprintf("parent %q is not declared in category %q", ref.parent, ref.category), ref.at)
		}
	}
	return declared
}

// validateProblems checks problem declarations. It returns the size fields
// per declared problem, or nil when the catalog declares no problems.
func validateProblems(v cue.Value, declared map[string]map[string]bool, add func(field, code, msg string, at cue.Value)) map[string][]string {
	section := v.LookupPath(cue.ParsePath(sectionProblem))
	if !section.Exists() {
		return nil
	}
	iter, err := section.Fields()
	if err != nil {
		add(sectionProblem, ErrInvalidFieldType, fmt.Sprintf("must be a struct: %v", err), section)
		return nil
	}
	sizeFields := make(map[string][]string)
	for iter.Next() {
		name := iter.Label()
		pv := iter.Value()
		prefix := sectionProblem + "." + name
		sizeFields[name] = nil

		if sf := pv.LookupPath(cue.ParsePath("size_fields")); sf.Exists() {
			list, err := sf.List()
			if err != nil {
				add(prefix+".size_fields", ErrInvalidFieldType, "must be a list of strings", sf)
			} else {
				for list.Next() {
					s, err := list.Value().String()
					if err != nil {
						add(prefix+".size_fields", ErrInvalidFieldType, "must be a list of strings", list.Value())
						continue
					}
					sizeFields[name] = append(sizeFields[name], s)
				}
			}
		}

		if vs := pv.LookupPath(cue.ParsePath("variants")); vs.Exists() {
			list, err := vs.List()
			if err != nil {
				add(prefix+".variants", ErrInvalidFieldType, "must be a list of variant structs", vs)
				continue
			}
			for i := 0; list.Next(); i++ {
				validateVariantValue(list.Value(), fmt.Sprintf("%s.variants[%d]", prefix, i), declared, add)
			}
		}
	}
	return sizeFields
}

func validateVariantValue(v cue.Value, field string, declared map[string]map[string]bool, add func(field, code, msg string, at cue.Value)) {
	if !v.Exists() {
		return
	}
	iter, err := v.Fields()
	if err != nil {
		add(field, ErrInvalidFieldType, "must be a struct of category: value", v)
		return
	}
	for iter.Next() {
		category := iter.Label()
		value, err := iter.Value().String()
		if err != nil {
			add(field+"."+category, ErrInvalidFieldType, "variant value must be a string", iter.Value())
			continue
		}
		values, known := declared[category]
		if known && !values[value] {
			add(field+"."+category, ErrUnknownVariantValue,
				fmt.Sprintf("%q is not a declared %s variant", value, category), iter.Value())
		}
	}
}
