package variant

import (
	"errors"
	"fmt"
)

// HierarchyErrorCode categorizes hierarchy errors.
type HierarchyErrorCode string

const (
	// ErrCodeConflictingParent indicates a value registered twice with different parents.
	ErrCodeConflictingParent HierarchyErrorCode = "CONFLICTING_PARENT"

	// ErrCodeCycle indicates a registration that would make a category cyclic.
	ErrCodeCycle HierarchyErrorCode = "CYCLE"

	// ErrCodeNotReducible indicates a cast between values with no ancestor relation.
	ErrCodeNotReducible HierarchyErrorCode = "NOT_REDUCIBLE"

	// ErrCodeInvalid indicates an empty category or value.
	ErrCodeInvalid HierarchyErrorCode = "INVALID"
)

// HierarchyError reports a rejected registration or cast.
type HierarchyError struct {
	Code     HierarchyErrorCode
	Category string
	Value    string
	Message  string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("%s: %s/%s: %s", e.Code, e.Category, e.Value, e.Message)
}

// IsConflict returns true if err is a conflicting-parent registration.
func IsConflict(err error) bool {
	var he *HierarchyError
	return errors.As(err, &he) && he.Code == ErrCodeConflictingParent
}

// IsCycle returns true if err is a cyclic registration.
func IsCycle(err error) bool {
	var he *HierarchyError
	return errors.As(err, &he) && he.Code == ErrCodeCycle
}
