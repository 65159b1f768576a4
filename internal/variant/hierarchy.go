package variant

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/reductions/internal/ir"
)

// CastFunc converts an instance of a child variant into the parent variant.
// The hierarchy stores it and never calls it on its own; it runs only when a
// caller executes a natural-cast step. A nil CastFunc means the child is
// already a valid instance of the parent.
type CastFunc func(instance any) (any, error)

// Entry is one registered value within a category.
type Entry struct {
	Category string
	Value    string
	Parent   string // empty for a root
	Cast     CastFunc
}

// Hierarchy holds one single-parent forest per category.
//
// Registration is idempotent and order-independent: a child may be registered
// before its parent. Reads are safe for concurrent use.
type Hierarchy struct {
	mu         sync.RWMutex
	categories map[string]map[string]*Entry
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{categories: make(map[string]map[string]*Entry)}
}

// Register adds value under parent in category. An empty parent makes value
// a root. Registering the same (category, value, parent) again is a no-op;
// a different parent for an existing value, or a parent chain that leads
// back to value, is rejected.
func (h *Hierarchy) Register(category, value, parent string, cast CastFunc) error {
	if category == "" || value == "" {
		return &HierarchyError{Code: ErrCodeInvalid, Category: category, Value: value, Message: "category and value are required"}
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	values := h.categories[category]
	if values == nil {
		values = make(map[string]*Entry)
		h.categories[category] = values
	}

	if existing, ok := values[value]; ok {
		if existing.Parent != parent {
			return &HierarchyError{
				Code:     ErrCodeConflictingParent,
				Category: category,
				Value:    value,
				Message:  fmt.Sprintf("already registered with parent %q, now %q", existing.Parent, parent),
			}
		}
		if existing.Cast == nil && cast != nil {
			existing.Cast = cast
		}
		return nil
	}

	if parent == value {
		return &HierarchyError{Code: ErrCodeCycle, Category: category, Value: value, Message: "value cannot be its own parent"}
	}
	for p, steps := parent, 0; p != ""; steps++ {
		if p == value {
			return &HierarchyError{
				Code:     ErrCodeCycle,
				Category: category,
				Value:    value,
				Message:  fmt.Sprintf("parent %q descends from %q", parent, value),
			}
		}
		next, ok := values[p]
		if !ok || steps > len(values) {
			break
		}
		p = next.Parent
	}

	values[value] = &Entry{Category: category, Value: value, Parent: parent, Cast: cast}
	slog.Debug("variant registered", "category", category, "value", value, "parent", parent)
	return nil
}

// MustRegister is like Register but panics on error. Registration errors
// come only from incorrect registration code.
func (h *Hierarchy) MustRegister(category, value, parent string, cast CastFunc) {
	if err := h.Register(category, value, parent, cast); err != nil {
		panic(err)
	}
}

// IsReducible reports whether from can be used where to is expected: true
// when from == to or to is an ancestor of from.
func (h *Hierarchy) IsReducible(category, from, to string) bool {
	if from == to {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isAncestorLocked(category, from, to)
}

func (h *Hierarchy) isAncestorLocked(category, from, to string) bool {
	values := h.categories[category]
	seen := make(map[string]bool)
	for cur := from; ; {
		if seen[cur] {
			panic(&HierarchyError{Code: ErrCodeCycle, Category: category, Value: cur, Message: "parent chain revisits a value"})
		}
		seen[cur] = true
		e, ok := values[cur]
		if !ok || e.Parent == "" {
			return false
		}
		if e.Parent == to {
			return true
		}
		cur = e.Parent
	}
}

// IsReducibleVariant reports whether from satisfies every category that to
// constrains. Categories absent from to are unconstrained; a category to
// constrains but from lacks is not satisfied.
func (h *Hierarchy) IsReducibleVariant(from, to ir.Variant) bool {
	for category, want := range to {
		have, ok := from[category]
		if !ok || !h.IsReducible(category, have, want) {
			return false
		}
	}
	return true
}

// Parent returns the parent of value, or "" for a root. ok is false if the
// value is not registered.
func (h *Hierarchy) Parent(category, value string) (parent string, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.categories[category][value]
	if !ok {
		return "", false
	}
	return e.Parent, true
}

// Ancestors returns the parent chain of value, nearest first.
func (h *Hierarchy) Ancestors(category, value string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var chain []string
	values := h.categories[category]
	for cur := value; len(chain) <= len(values); {
		e, ok := values[cur]
		if !ok || e.Parent == "" {
			break
		}
		chain = append(chain, e.Parent)
		cur = e.Parent
	}
	return chain
}

// Contains reports whether value is registered in category.
func (h *Hierarchy) Contains(category, value string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.categories[category][value]
	return ok
}

// Categories returns the registered categories, sorted.
func (h *Hierarchy) Categories() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.categories))
}

// Entries returns the registrations of category sorted by value.
func (h *Hierarchy) Entries(category string) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	values := h.categories[category]
	out := make([]Entry, 0, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		out = append(out, *values[name])
	}
	return out
}

// Cast converts instance from one value to an ancestor by applying each
// registered CastFunc along the parent chain.
func (h *Hierarchy) Cast(category, from, to string, instance any) (any, error) {
	if from == to {
		return instance, nil
	}
	h.mu.RLock()
	var chain []CastFunc
	values := h.categories[category]
	reached := false
	for cur := from; len(chain) <= len(values); {
		e, ok := values[cur]
		if !ok || e.Parent == "" {
			break
		}
		chain = append(chain, e.Cast)
		if e.Parent == to {
			reached = true
			break
		}
		cur = e.Parent
	}
	h.mu.RUnlock()

	if !reached {
		return nil, &HierarchyError{
			Code:     ErrCodeNotReducible,
			Category: category,
			Value:    from,
			Message:  fmt.Sprintf("%q is not an ancestor", to),
		}
	}
	out := instance
	for _, cast := range chain {
		if cast == nil {
			continue
		}
		var err error
		if out, err = cast(out); err != nil {
			return nil, fmt.Errorf("cast %s/%s to %s: %w", category, from, to, err)
		}
	}
	return out, nil
}

// CastVariant applies Cast for every category where from and to differ.
// Categories are processed in sorted order.
func (h *Hierarchy) CastVariant(from, to ir.Variant, instance any) (any, error) {
	out := instance
	for _, category := range to.Keys() {
		have := from[category]
		if have == to[category] {
			continue
		}
		var err error
		if out, err = h.Cast(category, have, to[category], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
