package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestRelayError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RelayError
		want string
	}{
		{
			name: "message only",
			err:  New("something broke"),
			want: "something broke",
		},
		{
			name: "with task",
			err:  TaskError("lint", "formatter missing"),
			want: "[lint] formatter missing",
		},
		{
			name: "not found",
			err:  NotFound("task", "deploy"),
			want: "task not found: deploy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelayError_ExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  *RelayError
		want int
	}{
		{"runtime", New("x"), ExitRuntimeError},
		{"config", Config("x"), ExitConfigError},
		{"not found", NotFound("task", "x"), ExitConfigError},
		{"environment", Environment("x"), ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandError_Error(t *testing.T) {
	err := &CommandError{
		Task:       "lint",
		Index:      1,
		Command:    "mypy src",
		ExitStatus: 2,
	}

	want := "[lint] command #2 (mypy src): exit status 2"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCommandError_ExitCode(t *testing.T) {
	err := &CommandError{Task: "test", Index: 0, Command: "pytest", ExitStatus: 5}
	if got := err.ExitCode(); got != 5 {
		t.Errorf("ExitCode() = %d, want 5", got)
	}

	// A zero status is a bug upstream; fall back to the generic runtime code.
	zero := &CommandError{Task: "test", Index: 0, Command: "pytest"}
	if got := zero.ExitCode(); got != ExitRuntimeError {
		t.Errorf("ExitCode() with zero status = %d, want %d", got, ExitRuntimeError)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"command error", &CommandError{Task: "push", Index: 0, Command: "git push", ExitStatus: 128}, 128},
		{"relay config error", Config("bad"), ExitConfigError},
		{"plain error", errors.New("boom"), ExitRuntimeError},
		{
			"wrapped command error",
			fmt.Errorf("run failed: %w", &CommandError{Task: "lint", Index: 2, Command: "pylint", ExitStatus: 4}),
			4,
		},
		{
			"wrapped relay error",
			fmt.Errorf("load: %w", Environment("git missing")),
			ExitEnvironmentError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, "context")

	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve the cause for errors.Is")
	}
	if err.Error() != "context" {
		t.Errorf("Error() = %q, want %q", err.Error(), "context")
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &CommandError{Task: "lint", Index: 0, Command: "black .", ExitStatus: 1, Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("CommandError should unwrap to its cause")
	}
}
