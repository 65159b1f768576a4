package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/reductions/internal/graph"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query or validation failure (no path, infeasible, invalid catalog)
	ExitCommandError = 2 // Command error (bad arguments, unknown problem, unreadable files)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E202", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. Text
// output prints data with its default formatting; commands with richer
// text output write to Writer themselves.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports an error in the configured format and returns an ExitError
// carrying exitCode, for a RunE to return directly.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details any) error {
	if err := f.Error(code, message, details); err != nil {
		return err
	}
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}

// SearchFailure is the error detail of a failed path query.
type SearchFailure struct {
	Reason string `json:"reason"` // graph.SearchErrorCode, e.g. "NO_COMPATIBLE_RULE"
	Source string `json:"source"`
	Target string `json:"target"`
	Cause  string `json:"cause,omitempty"` // last evaluation failure, INFEASIBLE only
	Hint   string `json:"hint"`
}

func (s SearchFailure) String() string {
	return fmt.Sprintf("%s for %s -> %s; %s", s.Reason, s.Source, s.Target, s.Hint)
}

var searchHints = map[graph.SearchErrorCode]string{
	graph.ErrCodeUnknownProblem:   "run `pred list` for known problems",
	graph.ErrCodeNoPath:           "add a reduction rule connecting them",
	graph.ErrCodeNoCompatibleRule: "relax the variants or add a reduction rule for them",
	graph.ErrCodeInfeasible:       "check the overhead formula or input size",
}

// FailSearch reports a graph search failure, with a SearchFailure detail
// when err is a *graph.SearchError.
func (f *OutputFormatter) FailSearch(err error) error {
	code, exit := searchErrorCode(err)
	var se *graph.SearchError
	if !errors.As(err, &se) {
		return f.Fail(exit, code, err.Error(), nil)
	}
	detail := SearchFailure{
		Reason: string(se.Code),
		Source: se.Source,
		Target: se.Target,
		Hint:   searchHints[se.Code],
	}
	if se.Err != nil {
		detail.Cause = se.Err.Error()
	}
	return f.Fail(exit, code, err.Error(), detail)
}

// VerboseLog outputs// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
