package ir

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Variant maps a category (e.g. "graph", "weight", "k") to the chosen value
// (e.g. "SimpleGraph", "i32", "K3"). A key absent from a variant means the
// variant does not constrain that category.
//
// Variants are shared freely; treat them as read-only and derive new ones
// with With or Clone.
type Variant map[string]string

// Keys returns the categories in sorted order.
func (v Variant) Keys() []string {
	return slices.Sorted(maps.Keys(v))
}

// Clone returns an independent copy. Cloning nil yields an empty variant.
func (v Variant) Clone() Variant {
	out := make(Variant, len(v))
	maps.Copy(out, v)
	return out
}

// With returns a copy of v with every category of overlay replaced.
func (v Variant) With(overlay Variant) Variant {
	out := v.Clone()
	maps.Copy(out, overlay)
	return out
}

// Equal reports whether both variants constrain the same categories to the
// same values. A nil variant equals an empty one.
func (v Variant) Equal(other Variant) bool {
	return maps.Equal(v, other)
}

// String renders the variant canonically: "{graph=SimpleGraph, weight=i32}".
// The rendering sorts by category and is used for deterministic ordering.
func (v Variant) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range v.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v[k])
	}
	b.WriteByte('}')
	return b.String()
}

// IR converts the variant to a canonical JSON object.
func (v Variant) IR() Object {
	obj := make(Object, len(v))
	for k, val := range v {
		obj[k] = String(val)
	}
	return obj
}

// ParseVariant parses "category=value,category=value". The empty string is
// the empty variant.
func ParseVariant(text string) (Variant, error) {
	v := make(Variant)
	if strings.TrimSpace(text) == "" {
		return v, nil
	}
	for _, part := range strings.Split(text, ",") {
		k, val, ok := strings.Cut(part, "=")
		k, val = strings.TrimSpace(k), strings.TrimSpace(val)
		if !ok || k == "" || val == "" {
			return nil, fmt.Errorf("variant %q: expected category=value", strings.TrimSpace(part))
		}
		if _, dup := v[k]; dup {
			return nil, fmt.Errorf("variant category %q given twice", k)
		}
		v[k] = val
	}
	return v, nil
}
