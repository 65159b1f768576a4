// Package variant maintains the per-category specialization forests that
// decide when one problem variant can stand in for another.
//
// Each category ("graph", "weight", "k", ...) is a single-parent forest:
// KingsSubgraph -> UnitDiskGraph -> SimpleGraph, One -> i32 -> f64,
// K2 -> K3 -> KN. A value is reducible to itself and to every ancestor.
// New categories need no code changes: the same ancestor walk serves all.
package variant
