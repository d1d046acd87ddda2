package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Import rejected: unsupported CRS or malformed record
	ExitCommandError = 2 // Command error (missing files, unknown format, database unreachable)
)

// Error codes reported in JSON output.
const (
	CodeUnsupportedCRS  = "unsupported_crs"
	CodeMalformedRecord = "malformed_record"
	CodeInput           = "input_error"
	CodeDatabase        = "database_error"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
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
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON reports whether output is JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes data as a JSON envelope. Text output is written by each command.
func (f *OutputFormatter) Success(data interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResponse{Status: "ok", Data: data})
}

// Fail writes the error in the configured format and returns it as an ExitError.
func (f *OutputFormatter) Fail(exitCode int, code string, err error) error {
	if f.JSON() {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error()},
		})
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %v\n", code, err)
	}
	return WrapExitError(exitCode, code, err)
}

// FailRecords reports a failure to read or store position records. Malformed
// records are an import failure; anything else is an input problem.
func (f *OutputFormatter) FailRecords(err error) error {
	if errors.Is(err, domain.ErrMalformedRecord) {
		return f.Fail(ExitFailure, CodeMalformedRecord, err)
	}
	return f.Fail(ExitCommandError, CodeInput, err)
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}
