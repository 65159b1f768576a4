package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reductions/internal/ir"
)

// Entry is the metadata of one implemented reduction. Several entries may
// share a (Source, Target) name pair and differ by variant; together they
// form an overload set that the resolver disambiguates.
type Entry struct {
	Source        string
	Target        string
	SourceVariant ir.Variant
	TargetVariant ir.Variant
	Overhead      Overhead

	// Transform is the executable reduction. The engine stores it and
	// hands it back to callers but never inspects or invokes it.
	Transform any

	// Origin records where the entry was declared (a catalog rule id or
	// a source position). It is informational and not part of identity.
	Origin string
}

// Key identifies the entry by endpoints and variants.
func (e Entry) Key() string {
	k, err := ir.EntryKey(e.Source, e.SourceVariant, e.Target, e.TargetVariant)
	if err != nil {
		// Variants hold only strings, so canonical encoding cannot fail.
		panic(err)
	}
	return k
}

// String renders "Source{variant} -> Target{variant}".
func (e Entry) String() string {
	return fmt.Sprintf("%s%s -> %s%s", e.Source, e.SourceVariant, e.Target, e.TargetVariant)
}

func (e Entry) clone() Entry {
	e.SourceVariant = e.SourceVariant.Clone()
	e.TargetVariant = e.TargetVariant.Clone()
	return e
}

// compareEntries orders by source, target, then canonical variant text.
func compareEntries(a, b Entry) int {
	if c := strings.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	if c := strings.Compare(a.Target, b.Target); c != 0 {
		return c
	}
	if c := strings.Compare(a.SourceVariant.String(), b.SourceVariant.String()); c != 0 {
		return c
	}
	return strings.Compare(a.TargetVariant.String(), b.TargetVariant.String())
}

// SortEntries sorts entries into the registry's canonical order.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, compareEntries)
}

// Problem describes a problem type: its variant category (for display) and
// the size fields its instances report.
type Problem struct {
	Name        string
	Category    string
	Description string
	SizeFields  []string
}

func (p Problem) equal(other Problem) bool {
	return p.Name == other.Name &&
		p.Category == other.Category &&
		p.Description == other.Description &&
		slices.Equal(p.SizeFields, other.SizeFields)
}
