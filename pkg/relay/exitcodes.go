// Package relay provides public constants for external tools integrating
// with the relay CLI.
package relay

// Exit codes returned by the relay CLI.
// These constants allow external tools to check exit codes symbolically
// rather than using magic numbers.
//
// A failed task command is the exception: relay exits with that command's own
// exit status, so any value may appear. The constants below cover relay's own
// failure classes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure.
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (invalid config,
	// unknown task, validation failure).
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (unusable workspace,
	// missing dependency).
	ExitEnvError = 3

	// ExitCommandNotRunnable indicates a task command could not be started
	// at all. Matches the shell convention for "command not found".
	ExitCommandNotRunnable = 127
)
