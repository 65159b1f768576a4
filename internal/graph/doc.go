// Package graph turns a registry of reductions into a searchable structure.
//
// The Graph is name-level: one node per problem name, one edge per distinct
// (source, target) pair with at least one registered entry. Variant detail
// is deferred to the resolver, which lifts a name path into a concrete
// variant-level ResolvedPath by picking the tightest compatible entry for
// each edge and splicing in natural casts where the current variant must be
// viewed as a more general one.
//
// FindCheapestPath combines both: a Dijkstra search whose edges are resolved
// as they are expanded and priced by a pluggable CostFunc.
//
// A Graph is immutable once built and safe for concurrent readers. Building
// seals the registry it came from.
package graph
