// Package harness runs path-query scenarios against a reduction catalog.
//
// A scenario names the catalogs to load, a list of path queries with
// their expected outcomes, and graph-level assertions. Running it builds
// a fresh graph, answers every query, and records the outcomes as a
// trace that can be compared against a golden file.
//
// # Scenario Format
//
//	name: chain_paths
//	description: "Casts and reductions along a three-problem chain"
//	builtin: false
//	catalogs:
//	  - catalogs/chain.cue
//	queries:
//	  - source: A
//	    source_variant: { graph: UnitDiskGraph }
//	    target: C
//	    size: { n: 5 }
//	    expect:
//	      path: [A, B, C]
//	      casts: 1
//	      final_size: { n: 5 }
//	  - source: C
//	    target: A
//	    expect:
//	      error: NO_PATH
//	assertions:
//	  - type: reachable
//	    source: A
//	    target: C
//	    expect: true
//
// Catalog paths are relative to the scenario file. The builtin catalog
// is included unless builtin is false.
//
// A query with a size runs the weighted search under its cost policy
// (minimize-steps by default). A query without one runs the structural
// fewest-reductions search and records no sizes.
//
// # Assertion Types
//
//   - reachable: a name-level path exists from source to target
//   - direct_reduction: some rule reduces source to target in one step
//   - path_count: the number of simple name-level paths
//   - neighbors: the problems within hops of source, in or out
//
// # Determinism
//
// Every run builds its graph from scratch, numbers trace events with a
// logical clock, and round-trips the graph snapshot through an in-memory
// store with sequential run IDs, so identical catalogs always produce
// byte-identical traces.
package harness
