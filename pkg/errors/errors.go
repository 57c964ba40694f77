// Package errors defines the error taxonomy shared by the reconciliation
// pipeline. Every failure surfaced to a caller is one of these types;
// nothing deeper in the stack invents ad-hoc error strings.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ProbeError indicates the external tool could not be run at all or
// returned output the prober cannot parse. Fatal, never retried.
type ProbeError struct {
	Executable string
	Message    string
	Err        error
}

// NewProbeError constructs a ProbeError.
func NewProbeError(executable, message string, err error) error {
	return &ProbeError{Executable: executable, Message: message, Err: err}
}

func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Executable != "" {
		return fmt.Sprintf("probe error: %s: %s", e.Executable, e.Message)
	}
	return fmt.Sprintf("probe error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures a desired-state value that fails
// normalization. Key names the offending option.
type ValidationError struct {
	Key     string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError for the given option key.
func NewValidationError(key, message string, err error) error {
	return &ValidationError{Key: key, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a non-zero exit from an external tool
// invocation. The command line, exit code and captured output are
// carried verbatim.
type ExecutionError struct {
	Cmd    string
	RC     int
	Stdout string
	Stderr string
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(cmd string, rc int, stdout, stderr string) error {
	return &ExecutionError{Cmd: cmd, RC: rc, Stdout: stdout, Stderr: stderr}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	detail := e.Stderr
	if detail == "" {
		detail = e.Stdout
	}
	if detail != "" {
		return fmt.Sprintf("execution error: %s: rc %d: %s", e.Cmd, e.RC, detail)
	}
	return fmt.Sprintf("execution error: %s: rc %d", e.Cmd, e.RC)
}

// TimeoutError indicates an invocation exceeded its caller-specified
// timeout and was killed.
type TimeoutError struct {
	Cmd     string
	Timeout time.Duration
}

// NewTimeoutError constructs a TimeoutError.
func NewTimeoutError(cmd string, timeout time.Duration) error {
	return &TimeoutError{Cmd: cmd, Timeout: timeout}
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("timeout after %s: %s", e.Timeout, e.Cmd)
}

// ParseError reports an unreadable or syntactically invalid manifest
// file. Line is zero when the position is unknown.
type ParseError struct {
	Path string
	Line int
	Err  error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	return &ParseError{Path: path, Line: line, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotFoundError signals an absent resource. It is an internal
// control-flow signal, not a failure: reconcile treats it as the create
// path and only info queries surface it to the caller.
type NotFoundError struct {
	Kind string
	Name string
}

// NewNotFoundError constructs a NotFoundError.
func NewNotFoundError(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTimeout reports whether err is, or wraps, a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
