package ir

// Version constants for exported data.
const (
	// SnapshotVersion is the export snapshot schema version.
	SnapshotVersion = "1"

	// EngineVersion is the reduction engine version.
	EngineVersion = "0.1.0"
)
