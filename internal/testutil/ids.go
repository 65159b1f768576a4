package testutil

import "fmt"

// SequentialIDs generates export run IDs shaped like UUIDs but numbered
// from 1, so stored runs and golden output are byte-stable:
//
//	00000000-0000-0000-0000-000000000001
type SequentialIDs struct {
	clock *DeterministicClock
}

// NewSequentialIDs creates a generator whose first ID ends in 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{clock: NewDeterministicClock()}
}

// Generate returns the next ID. It matches the store's run ID generator
// signature.
func (g *SequentialIDs) Generate() string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", g.clock.Next())
}
