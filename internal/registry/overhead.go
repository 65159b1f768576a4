package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/reductions/internal/expr"
	"github.com/roach88/reductions/internal/ir"
)

// OverheadField is one output size field and the formula that computes it
// from the source instance's size.
type OverheadField struct {
	Field   string
	Formula expr.Expr
}

// Overhead describes how instance size grows across one reduction: each
// target size field is a formula over source size fields. Fields are kept
// sorted by name. The zero Overhead has no fields.
type Overhead struct {
	fields []OverheadField
}

// NewOverhead builds an overhead. Field names must be unique and non-empty.
func NewOverhead(fields ...OverheadField) (Overhead, error) {
	sorted := slices.Clone(fields)
	slices.SortFunc(sorted, func(a, b OverheadField) int { return strings.Compare(a.Field, b.Field) })
	for i, f := range sorted {
		if f.Field == "" {
			return Overhead{}, fmt.Errorf("overhead field name must not be empty")
		}
		if i > 0 && sorted[i-1].Field == f.Field {
			return Overhead{}, fmt.Errorf("overhead field %q defined twice", f.Field)
		}
	}
	return Overhead{fields: sorted}, nil
}

// ParseOverhead parses a field -> formula-text map.
func ParseOverhead(formulas map[string]string) (Overhead, error) {
	fields := make([]OverheadField, 0, len(formulas))
	for name, text := range formulas {
		e, err := expr.Parse(text)
		if err != nil {
			return Overhead{}, fmt.Errorf("overhead field %q: %w", name, err)
		}
		fields = append(fields, OverheadField{Field: name, Formula: e})
	}
	return NewOverhead(fields...)
}

// MustParseOverhead is like ParseOverhead but panics on error.
func MustParseOverhead(formulas map[string]string) Overhead {
	o, err := ParseOverhead(formulas)
	if err != nil {
		panic(err)
	}
	return o
}

// Identity returns the overhead mapping each named field to itself.
func Identity(fields ...string) Overhead {
	out := make([]OverheadField, 0, len(fields))
	for _, f := range fields {
		out = append(out, OverheadField{Field: f, Formula: expr.Var(f)})
	}
	o, err := NewOverhead(out...)
	if err != nil {
		panic(err)
	}
	return o
}

// Fields returns the fields in name order.
func (o Overhead) Fields() []OverheadField { return slices.Clone(o.fields) }

// Len returns the number of output fields.
func (o Overhead) Len() int { return len(o.fields) }

// Get returns the formula for an output field.
func (o Overhead) Get(field string) (expr.Expr, bool) {
	i, ok := slices.BinarySearchFunc(o.fields, field, func(f OverheadField, name string) int {
		return strings.Compare(f.Field, name)
	})
	if !ok {
		return expr.Expr{}, false
	}
	return o.fields[i].Formula, true
}

// OutputFields returns the output field names in order.
func (o Overhead) OutputFields() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.Field
	}
	return names
}

// InputVariables returns every variable referenced by any formula, sorted.
func (o Overhead) InputVariables() []string {
	set := make(map[string]struct{})
	for _, f := range o.fields {
		for _, v := range f.Formula.Variables() {
			set[v] = struct{}{}
		}
	}
	vars := make([]string, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	return vars
}

// EvaluateOutputSize applies every formula to input. Each value is rounded
// to the nearest integer and must be finite, non-negative and representable
// as int64. The call is atomic: any failing field fails the whole result.
func (o Overhead) EvaluateOutputSize(input ir.ProblemSize) (ir.ProblemSize, error) {
	values := make(map[string]int64, len(o.fields))
	for _, f := range o.fields {
		v, err := f.Formula.Evaluate(input)
		if err != nil {
			return ir.ProblemSize{}, fmt.Errorf("overhead field %q: %w", f.Field, err)
		}
		n, err := toSizeValue(f.Field, v)
		if err != nil {
			return ir.ProblemSize{}, err
		}
		values[f.Field] = n
	}
	return ir.NewProblemSize(values)
}

// maxSizeValue is 2^63, the first float64 above math.MaxInt64.
const maxSizeValue = 9223372036854775808.0

func toSizeValue(field string, v float64) (int64, error) {
	r := math.Round(v)
	switch {
	case math.IsNaN(r) || math.IsInf(r, 0):
		return 0, &expr.EvalError{Code: expr.ErrCodeDomain, Func: field, Detail: "size is not finite"}
	case r < 0:
		return 0, &expr.EvalError{Code: expr.ErrCodeDomain, Func: field, Detail: fmt.Sprintf("size %g is negative", v)}
	case r >= maxSizeValue:
		return 0, &expr.EvalError{Code: expr.ErrCodeDomain, Func: field, Detail: fmt.Sprintf("size %g exceeds int64", v)}
	}
	return int64(r), nil
}

// Compose returns the overhead of applying o and then next: next's formulas
// with o's output formulas substituted for their inputs. Inputs of next that
// o does not produce are left as variables.
func (o Overhead) Compose(next Overhead) Overhead {
	bindings := make(map[string]expr.Expr, len(o.fields))
	for _, f := range o.fields {
		bindings[f.Field] = f.Formula
	}
	out := make([]OverheadField, len(next.fields))
	for i, f := range next.fields {
		out[i] = OverheadField{Field: f.Field, Formula: f.Formula.Substitute(bindings)}
	}
	return Overhead{fields: out}
}

// Equal reports whether both overheads have the same fields and formula text.
func (o Overhead) Equal(other Overhead) bool {
	return slices.EqualFunc(o.fields, other.fields, func(a, b OverheadField) bool {
		return a.Field == b.Field && a.Formula.Equal(b.Formula)
	})
}

// Strings returns field -> formula text.
func (o Overhead) Strings() map[string]string {
	m := make(map[string]string, len(o.fields))
	for _, f := range o.fields {
		m[f.Field] = f.Formula.String()
	}
	return m
}

// String renders "{num_vars: num_vertices, num_constraints: num_edges}" in field order.
func (o Overhead) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Formula.String())
	}
	b.WriteByte('}')
	return b.String()
}

// IR converts the overhead to a canonical JSON object of formula strings.
func (o Overhead) IR() ir.Object {
	obj := make(ir.Object, len(o.fields))
	for _, f := range o.fields {
		obj[f.Field] = ir.String(f.Formula.String())
	}
	return obj
}

// MarshalJSON encodes the overhead as an object of formula strings.
func (o Overhead) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(o.IR())
}

// UnmarshalJSON decodes an object of formula strings.
func (o *Overhead) UnmarshalJSON(data []byte) error {
	var formulas map[string]string
	if err := json.Unmarshal(data, &formulas); err != nil {
		return fmt.Errorf("overhead: %w", err)
	}
	parsed, err := ParseOverhead(formulas)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
