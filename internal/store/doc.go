// Package store provides SQLite-backed storage for reduction graph exports.
//
// A snapshot (see graph.Snapshot) is stored once per distinct content:
//   - snapshots: one row per content hash, with the canonical JSON body
//   - nodes, edges: the snapshot flattened for SQL inspection
//   - exports: one row per export run, pointing at a snapshot
//
// Export runs are ordered by created_seq, a logical counter assigned at
// write time. Queries that list runs use ORDER BY created_seq ASC,
// run_id COLLATE BINARY ASC so results are identical across databases
// holding the same history.
//
// Variants and overheads are stored as canonical JSON strings. Overhead
// formulas cross the boundary as text and are parsed again by readers.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
