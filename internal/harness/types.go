package harness

import (
	"strconv"

	"github.com/roach88/reductions/internal/ir"
)

// OutcomePath marks a trace event whose query returned a path. Failed
// queries carry the search error code instead.
const OutcomePath = "path"

// TraceEvent records the outcome of one query.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Query   string `json:"query"`   // "A{graph=SimpleGraph} -> C{}"
	Outcome string `json:"outcome"` // "path" or an error code

	Path       string           `json:"path,omitempty"`
	Reductions int              `json:"reductions"`
	Casts      int              `json:"casts"`
	Cost       float64          `json:"cost"`
	Sizes      []ir.ProblemSize `json:"sizes,omitempty"`
}

// IR converts the event to a canonical JSON object. Cost is rendered as
// a string since canonical JSON has no floats.
func (e TraceEvent) IR() ir.Object {
	obj := ir.Object{
		"seq":     ir.Int(e.Seq),
		"query":   ir.String(e.Query),
		"outcome": ir.String(e.Outcome),
	}
	if e.Outcome != OutcomePath {
		return obj
	}
	obj["path"] = ir.String(e.Path)
	obj["reductions"] = ir.Int(e.Reductions)
	obj["casts"] = ir.Int(e.Casts)
	obj["cost"] = ir.String(strconv.FormatFloat(e.Cost, 'g', -1, 64))
	if e.Sizes != nil {
		sizes := make(ir.Array, len(e.Sizes))
		for i, s := range e.Sizes {
			sizes[i] = s.IR()
		}
		obj["sizes"] = sizes
	}
	return obj
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per query, in scenario order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID and SnapshotID identify the snapshot round-tripped through
	// the scenario's store.
	RunID      string `json:"run_id"`
	SnapshotID string `json:"snapshot_id"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
