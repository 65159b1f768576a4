package graph

import (
	"errors"
	"fmt"
)

// SearchErrorCode categorizes why no path was returned.
type SearchErrorCode string

const (
	// ErrCodeUnknownProblem indicates an endpoint name not present in the graph.
	ErrCodeUnknownProblem SearchErrorCode = "UNKNOWN_PROBLEM"

	// ErrCodeNoPath indicates the target is structurally unreachable:
	// a reduction rule is missing.
	ErrCodeNoPath SearchErrorCode = "NO_PATH"

	// ErrCodeNoCompatibleRule indicates name-level paths exist but none can
	// be resolved for the requested variants.
	ErrCodeNoCompatibleRule SearchErrorCode = "NO_COMPATIBLE_RULE"

	// ErrCodeInfeasible indicates compatible paths exist but overhead
	// evaluation failed for this input size. Err holds the last failure.
	ErrCodeInfeasible SearchErrorCode = "INFEASIBLE"
)

// SearchError reports a failed path query.
type SearchError struct {
	Code   SearchErrorCode
	Source string
	Target string
	Err    error
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("%s: %s -> %s", e.Code, e.Source, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error { return e.Err }

func searchCode(err error) SearchErrorCode {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsNoPath returns true if the target is structurally unreachable.
func IsNoPath(err error) bool { return searchCode(err) == ErrCodeNoPath }

// IsNoCompatibleRule returns true if no variant-compatible chain exists.
func IsNoCompatibleRule(err error) bool { return searchCode(err) == ErrCodeNoCompatibleRule }

// IsInfeasible returns true if every compatible chain failed evaluation.
func IsInfeasible(err error) bool { return searchCode(err) == ErrCodeInfeasible }

// IsUnknownProblem returns true if an endpoint is not in the graph.
func IsUnknownProblem(err error) bool { return searchCode(err) == ErrCodeUnknownProblem }
