package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateCatalog_Valid(t *testing.T) {
	assert.Empty(t, ValidateCatalog(compile(t, chainCatalog)))
}

func TestValidateCatalog_CollectsAll(t *testing.T) {
	src := `
variant: graph: {
	SimpleGraph: {}
	GridGraph: parent: "PlanarGraph"
}
problem: A: size_fields: ["n"]
problem: B: {
	size_fields: ["m"]
	variants: [{graph: "HyperGraph"}]
}
reduction: r1: {
	source: "A"
	target: "B"
	source_variant: graph: "TreeGraph"
	overhead: {
		m: "n + k"
		x: "n"
		y: "n *"
	}
}
reduction: r2: {
	target: "Z"
}
`
	errs := ValidateCatalog(compile(t, src))
	assert.ElementsMatch(t, []string{
		ErrUndefinedParent,     // GridGraph -> PlanarGraph
		ErrUnknownVariantValue, // B variants HyperGraph
		ErrUnknownVariantValue, // r1 source_variant TreeGraph
		ErrUnknownInputField,   // r1 m reads k
		ErrUnknownOutputField,  // r1 x
		ErrUnknownOutputField,  // r1 y
		ErrInvalidFormula,      // r1 y
		ErrMissingEndpoint,     // r2 source
		ErrUnknownProblem,      // r2 target Z
	}, codes(errs))

	for _, e := range errs {
		assert.Positive(t, e.Line, "%s", e)
	}
}

func TestValidateCatalog_SizeChecksNeedDeclaredFields(t *testing.T) {
	src := `
problem: A: {}
problem: B: {}
reduction: r: {source: "A", target: "B", overhead: anything: "whatever * 2"}
`
	assert.Empty(t, ValidateCatalog(compile(t, src)))
}

func TestValidateCatalog_FormulaScalars(t *testing.T) {
	assert.Empty(t, ValidateCatalog(compile(t, `reduction: r: {source: "A", target: "B", overhead: {n: 3, m: 1.5}}`)))

	errs := ValidateCatalog(compile(t, `reduction: r: {source: "A", target: "B", overhead: n: [1]}`))
	assert.Equal(t, []string{ErrInvalidFieldType}, codes(errs))
}

func TestValidateCatalog_UndeclaredCategoryIsNotChecked(t *testing.T) {
	src := `reduction: r: {source: "A", target: "B", source_variant: weight: "i32"}`
	assert.Empty(t, ValidateCatalog(compile(t, src)))
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "reduction.r.source", Message: "source is required", Code: ErrMissingEndpoint, Line: 3}
	assert.Equal(t, "[E120] line 3: reduction.r.source: source is required", e.Error())

	e.Line = 0
	assert.Equal(t, "[E120] reduction.r.source: source is required", e.Error())
}
