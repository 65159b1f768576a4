// Package registry collects reduction metadata: overhead formulas, the
// reduction entries that carry them, problem descriptions, and the variant
// hierarchy.
//
// A Registry is populated once at startup. Registration is an order-independent
// set union: repeating an identical registration is a no-op, while a
// conflicting one is an error (or a panic through the Must variants). Once
// a graph has been built from it the registry is sealed.
package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/reductions/internal/ir"
	"github.com/roach88/reductions/internal/variant"
)

type namePair struct {
	source, target string
}

// Registry holds every registered reduction entry, problem, and concrete
// variant node, plus the variant hierarchy they are interpreted against.
type Registry struct {
	mu       sync.RWMutex
	variants *variant.Hierarchy
	entries  map[string]Entry
	byPair   map[namePair][]string
	problems map[string]Problem
	nodes    map[string]map[string]ir.Variant
	sealed   bool
}

// New creates an empty registry with an empty hierarchy.
func New() *Registry {
	return &Registry{
		variants: variant.NewHierarchy(),
		entries:  make(map[string]Entry),
		byPair:   make(map[namePair][]string),
		problems: make(map[string]Problem),
		nodes:    make(map[string]map[string]ir.Variant),
	}
}

// Variants returns the registry's variant hierarchy.
func (r *Registry) Variants() *variant.Hierarchy { return r.variants }

// Register adds a reduction entry.
func (r *Registry) Register(e Entry) error {
	if e.Source == "" || e.Target == "" {
		return &RegistrationError{Code: ErrCodeInvalid, Subject: e.String(), Message: "source and target are required"}
	}
	e = e.clone()
	key := e.Key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return &RegistrationError{Code: ErrCodeSealed, Subject: e.String(), Message: "registry is sealed"}
	}
	if existing, ok := r.entries[key]; ok {
		if !existing.Overhead.Equal(e.Overhead) {
			return &RegistrationError{
				Code:    ErrCodeConflict,
				Subject: e.String(),
				Message: fmt.Sprintf("overhead %s conflicts with %s (from %q)", e.Overhead, existing.Overhead, existing.Origin),
			}
		}
		return nil
	}

	r.entries[key] = e
	pair := namePair{e.Source, e.Target}
	r.byPair[pair] = append(r.byPair[pair], key)
	slog.Debug("reduction registered", "source", e.Source, "target", e.Target,
		"source_variant", e.SourceVariant.String(), "target_variant", e.TargetVariant.String())
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// RegisterProblem adds problem metadata. An identical re-registration is a
// no-op; a differing one is a conflict.
func (r *Registry) RegisterProblem(p Problem) error {
	if p.Name == "" {
		return &RegistrationError{Code: ErrCodeInvalid, Subject: "problem", Message: "name is required"}
	}
	p.SizeFields = slices.Clone(p.SizeFields)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return &RegistrationError{Code: ErrCodeSealed, Subject: p.Name, Message: "registry is sealed"}
	}
	if existing, ok := r.problems[p.Name]; ok {
		if !existing.equal(p) {
			return &RegistrationError{Code: ErrCodeConflict, Subject: p.Name, Message: "problem registered twice with different metadata"}
		}
		return nil
	}
	r.problems[p.Name] = p
	return nil
}

// RegisterVariantNode declares that problem name exists in variant v even if
// no reduction starts or ends there. Such nodes appear in exports and can
// be reached by natural casts.
func (r *Registry) RegisterVariantNode(name string, v ir.Variant) error {
	if name == "" {
		return &RegistrationError{Code: ErrCodeInvalid, Subject: "variant node", Message: "name is required"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return &RegistrationError{Code: ErrCodeSealed, Subject: name + v.String(), Message: "registry is sealed"}
	}
	if r.nodes[name] == nil {
		r.nodes[name] = make(map[string]ir.Variant)
	}
	r.nodes[name][v.String()] = v.Clone()
	return nil
}

// Seal rejects all further registration. Graph construction seals the
// registry it was built from so the graph stays a pure function of it.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Len returns the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// EntriesBetween returns the overload set for a name pair in canonical
// order. The result may be empty.
func (r *Registry) EntriesBetween(source, target string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := r.byPair[namePair{source, target}]
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.entries[k].clone())
	}
	SortEntries(out)
	return out
}

// Entries returns every entry in canonical order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.clone())
	}
	SortEntries(out)
	return out
}

// Problem returns registered metadata for name.
func (r *Registry) Problem(name string) (Problem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.problems[name]
	if ok {
		p.SizeFields = slices.Clone(p.SizeFields)
	}
	return p, ok
}

// Problems returns registered problem metadata sorted by name.
func (r *Registry) Problems() []Problem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Problem, 0, len(r.problems))
	for _, name := range slices.Sorted(maps.Keys(r.problems)) {
		p := r.problems[name]
		p.SizeFields = slices.Clone(p.SizeFields)
		out = append(out, p)
	}
	return out
}

// VariantNodes returns the declared variant nodes of name, sorted by their
// canonical text.
func (r *Registry) VariantNodes(name string) []ir.Variant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nodes := r.nodes[name]
	out := make([]ir.Variant, 0, len(nodes))
	for _, k := range slices.Sorted(maps.Keys(nodes)) {
		out = append(out, nodes[k].Clone())
	}
	return out
}

// Names returns every problem name known to the registry: entry endpoints,
// problems, and variant-node owners, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := make(map[string]struct{})
	for _, e := range r.entries {
		set[e.Source] = struct{}{}
		set[e.Target] = struct{}{}
	}
	for name := range r.problems {
		set[name] = struct{}{}
	}
	for name := range r.nodes {
		set[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
