package expr

import (
	"errors"
	"fmt"
)

// ParseErrorCode categorizes formula syntax errors.
type ParseErrorCode string

const (
	// ErrCodeUnexpectedToken indicates a token that cannot appear at its position.
	ErrCodeUnexpectedToken ParseErrorCode = "UNEXPECTED_TOKEN"

	// ErrCodeUnexpectedEOF indicates the formula ended early (including empty input).
	ErrCodeUnexpectedEOF ParseErrorCode = "UNEXPECTED_EOF"

	// ErrCodeUnknownFunction indicates a call to a name outside the builtin set.
	ErrCodeUnknownFunction ParseErrorCode = "UNKNOWN_FUNCTION"

	// ErrCodeUnexpectedChar indicates a character the lexer does not recognize.
	ErrCodeUnexpectedChar ParseErrorCode = "UNEXPECTED_CHAR"

	// ErrCodeTrailingInput indicates a complete expression followed by extra tokens.
	ErrCodeTrailingInput ParseErrorCode = "TRAILING_INPUT"
)

// ParseError reports a malformed formula. Pos is a byte offset into the input.
type ParseError struct {
	Code    ParseErrorCode
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Code, e.Pos, e.Message)
}

// EvalErrorCode categorizes evaluation failures.
type EvalErrorCode string

const (
	// ErrCodeUnknownVar indicates a variable with no binding in the environment.
	ErrCodeUnknownVar EvalErrorCode = "UNKNOWN_VAR"

	// ErrCodeDivideByZero indicates division by exactly zero.
	ErrCodeDivideByZero EvalErrorCode = "DIVIDE_BY_ZERO"

	// ErrCodeArity indicates a builtin called with the wrong number of arguments.
	ErrCodeArity EvalErrorCode = "ARITY"

	// ErrCodeDomain indicates an argument outside a function's domain, or a
	// non-finite result where a finite one is required.
	ErrCodeDomain EvalErrorCode = "DOMAIN"
)

// EvalError reports why a formula could not be evaluated for a given size.
//
// Only the fields relevant to Code are set: Var for UNKNOWN_VAR, Func with
// Expected/Got for ARITY, Func with Detail for DOMAIN.
type EvalError struct {
	Code     EvalErrorCode
	Var      string
	Func     string
	Expected int
	Got      int
	Detail   string
}

func (e *EvalError) Error() string {
	switch e.Code {
	case ErrCodeUnknownVar:
		return fmt.Sprintf("%s: unknown variable %q", e.Code, e.Var)
	case ErrCodeDivideByZero:
		return fmt.Sprintf("%s: division by zero", e.Code)
	case ErrCodeArity:
		return fmt.Sprintf("%s: %s expects %d argument(s), got %d", e.Code, e.Func, e.Expected, e.Got)
	case ErrCodeDomain:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Func, e.Detail)
	default:
		return string(e.Code)
	}
}

// IsParseError returns true if err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsEvalError returns true if err is (or wraps) an EvalError.
func IsEvalError(err error) bool {
	var ee *EvalError
	return errors.As(err, &ee)
}

// EvalErrorCodeOf extracts the evaluation error code from err.
// Returns the empty code if err is not an EvalError.
func EvalErrorCodeOf(err error) EvalErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// ParseErrorCodeOf extracts the parse error code from err.
// Returns the empty code if err is not a ParseError.
func ParseErrorCodeOf(err error) ParseErrorCode {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func domainError(fn, detail string) *EvalError {
	return &EvalError{Code: ErrCodeDomain, Func: fn, Detail: detail}
}
