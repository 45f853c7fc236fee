// Package errors provides structured error types and exit codes for relay.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes returned by the relay CLI.
//
// Command failures are the exception: relay exits with the failing command's
// own exit status so that wrapping scripts and CI systems see the underlying
// tool's code unchanged.
const (
	ExitSuccess          = 0 // Success
	ExitRuntimeError     = 1 // Runtime error (command failed without a usable status, etc.)
	ExitConfigError      = 2 // Configuration error (invalid config, unknown task, etc.)
	ExitEnvironmentError = 3 // Environment error (missing dependency, unusable workspace, etc.)

	// ExitCommandNotRunnable is used when a task command could not be started
	// at all (executable missing, permission denied). Matches the shell
	// convention for "command not found".
	ExitCommandNotRunnable = 127
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
)

// RelayError is the base error type for relay.
type RelayError struct {
	Kind    ErrorKind
	Message string
	Task    string // Task name if applicable
	Cause   error  // Underlying error
}

func (e *RelayError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("[%s] %s", e.Task, e.Message)
	}
	return e.Message
}

func (e *RelayError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *RelayError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation, KindNotFound:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// CommandError reports a failed task command. It pins down which command in
// the task's sequence failed and what status the external tool exited with,
// and it propagates that status as relay's own exit code.
type CommandError struct {
	Task       string // Task whose command failed
	Index      int    // Zero-based position in the task's command sequence
	Command    string // The (interpolated) command string
	ExitStatus int    // Exit status of the failing command
	Cause      error  // Underlying exec error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("[%s] command #%d (%s): exit status %d", e.Task, e.Index+1, e.Command, e.ExitStatus)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the failing command's exit status.
func (e *CommandError) ExitCode() int {
	if e.ExitStatus == 0 {
		return ExitRuntimeError
	}
	return e.ExitStatus
}

// New creates a new runtime error.
func New(message string) *RelayError {
	return &RelayError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *RelayError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *RelayError {
	return &RelayError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *RelayError {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *RelayError {
	return &RelayError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *RelayError {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *RelayError {
	return &RelayError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// TaskError creates a runtime error for a specific task.
func TaskError(task, message string) *RelayError {
	return &RelayError{
		Kind:    KindRuntime,
		Task:    task,
		Message: message,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *RelayError {
	return &RelayError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cmdErr *CommandError
	if stderrors.As(err, &cmdErr) {
		return cmdErr.ExitCode()
	}
	var coded interface{ ExitCode() int }
	if stderrors.As(err, &coded) {
		return coded.ExitCode()
	}
	return ExitRuntimeError
}
