// Package ir provides the foundational value types shared by every other
// package: problem sizes, variants, and the canonical JSON encoding used for
// deterministic export and content hashing.
//
// ir imports nothing internal. All other internal packages may import it.
//
// Key constraints:
//   - Sizes are non-negative int64 values, never floats
//   - Iteration over sizes and variants is always in sorted key order
//   - Canonical JSON follows RFC 8785 with NFC-normalized strings
package ir
