package ir

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SizeField is one named size metric of a problem instance.
type SizeField struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// ProblemSize is an immutable snapshot of an instance's size metrics,
// e.g. {num_vertices: 10, num_edges: 15}. Fields are kept sorted by name.
// The zero value is the empty size.
type ProblemSize struct {
	fields []SizeField
}

// NewProblemSize builds a size from a map. Negative values are rejected.
func NewProblemSize(values map[string]int64) (ProblemSize, error) {
	fields := make([]SizeField, 0, len(values))
	for name, v := range values {
		if name == "" {
			return ProblemSize{}, fmt.Errorf("size field name must not be empty")
		}
		if v < 0 {
			return ProblemSize{}, fmt.Errorf("size field %q is negative: %d", name, v)
		}
		fields = append(fields, SizeField{Name: name, Value: v})
	}
	slices.SortFunc(fields, func(a, b SizeField) int { return strings.Compare(a.Name, b.Name) })
	return ProblemSize{fields: fields}, nil
}

// MustProblemSize is like NewProblemSize but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProblemSize(values map[string]int64) ProblemSize {
	s, err := NewProblemSize(values)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseProblemSize parses "name=value,name=value". Whitespace around
// names and values is ignored; the empty string is the empty size.
func ParseProblemSize(text string) (ProblemSize, error) {
	values := make(map[string]int64)
	if strings.TrimSpace(text) == "" {
		return ProblemSize{}, nil
	}
	for _, part := range strings.Split(text, ",") {
		name, raw, ok := strings.Cut(part, "=")
		if !ok {
			return ProblemSize{}, fmt.Errorf("size %q: expected name=value", strings.TrimSpace(part))
		}
		name = strings.TrimSpace(name)
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return ProblemSize{}, fmt.Errorf("size %q: %w", name, err)
		}
		if _, dup := values[name]; dup {
			return ProblemSize{}, fmt.Errorf("size %q given twice", name)
		}
		values[name] = v
	}
	return NewProblemSize(values)
}

// Get returns the value of a field.
func (s ProblemSize) Get(name string) (int64, bool) {
	i, ok := slices.BinarySearchFunc(s.fields, name, func(f SizeField, n string) int {
		return strings.Compare(f.Name, n)
	})
	if !ok {
		return 0, false
	}
	return s.fields[i].Value, true
}

// Value returns a field as float64, so a ProblemSize can be used directly
// as a formula environment.
func (s ProblemSize) Value(name string) (float64, bool) {
	v, ok := s.Get(name)
	return float64(v), ok
}

// Len returns the number of fields.
func (s ProblemSize) Len() int { return len(s.fields) }

// Names returns field names in sorted order.
func (s ProblemSize) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the fields in sorted order.
func (s ProblemSize) Fields() []SizeField {
	return slices.Clone(s.fields)
}

// Map returns the fields as a new map.
func (s ProblemSize) Map() map[string]int64 {
	m := make(map[string]int64, len(s.fields))
	for _, f := range s.fields {
		m[f.Name] = f.Value
	}
	return m
}

// Equal reports whether both sizes have identical fields.
func (s ProblemSize) Equal(other ProblemSize) bool {
	return slices.Equal(s.fields, other.fields)
}

// String renders the size as "{a: 1, b: 2}".
func (s ProblemSize) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %d", f.Name, f.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// IR converts the size to a canonical JSON object.
func (s ProblemSize) IR() Object {
	obj := make(Object, len(s.fields))
	for _, f := range s.fields {
		obj[f.Name] = Int(f.Value)
	}
	return obj
}

// MarshalJSON encodes the size as an object of integers.
func (s ProblemSize) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(s.IR())
}

// UnmarshalJSON decodes an object of non-negative integers.
func (s *ProblemSize) UnmarshalJSON(data []byte) error {
	var values map[string]int64
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("problem size: %w", err)
	}
	parsed, err := NewProblemSize(values)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
