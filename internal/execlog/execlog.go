// Package execlog records a machine-readable execution trace.
//
// The trace is a JSONL stream: one event object per line, suitable for
// ingestion by CI dashboards and build analytics. Tracing is opt-in via the
// --trace flag, the RELAY_TRACE environment variable, or the trace section
// of the project configuration.
package execlog

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder writes trace events for a single relay invocation. All events of
// one invocation share a run ID so that traces from nested or repeated runs
// can be told apart after the fact.
type Recorder struct {
	log    zerolog.Logger
	runID  string
	closer io.Closer
}

// Nop returns a recorder that discards all events.
func Nop() *Recorder {
	return &Recorder{log: zerolog.Nop()}
}

// New creates a recorder writing to w. The caller keeps ownership of w.
func New(w io.Writer) *Recorder {
	return &Recorder{
		log:   zerolog.New(w).With().Timestamp().Logger(),
		runID: uuid.NewString(),
	}
}

// Open creates a recorder appending to the file at path, creating parent
// directories as needed.
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	r := New(f)
	r.closer = f
	return r, nil
}

// RunID returns the identifier shared by all events of this invocation.
func (r *Recorder) RunID() string {
	return r.runID
}

// Close releases the underlying file, if any.
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// RunStarted records the start of an invocation.
func (r *Recorder) RunStarted(project string, entryTask string) {
	r.event("run_started").
		Str("project", project).
		Str("entry_task", entryTask).
		Send()
}

// RunFinished records the end of an invocation.
func (r *Recorder) RunFinished(exitCode int, duration time.Duration) {
	r.event("run_finished").
		Int("exit_code", exitCode).
		Dur("duration", duration).
		Send()
}

// TaskStarted records the start of a task run.
func (r *Recorder) TaskStarted(task string) {
	r.event("task_started").Str("task", task).Send()
}

// TaskFinished records a completed task run.
func (r *Recorder) TaskFinished(task string, status string, duration time.Duration) {
	r.event("task_finished").
		Str("task", task).
		Str("status", status).
		Dur("duration", duration).
		Send()
}

// CommandStarted records the start of a single task command.
func (r *Recorder) CommandStarted(task string, index int, command string) {
	r.event("command_started").
		Str("task", task).
		Int("index", index).
		Str("command", command).
		Send()
}

// CommandFailed records a failed task command.
func (r *Recorder) CommandFailed(task string, index int, command string, exitStatus int) {
	r.event("command_failed").
		Str("task", task).
		Int("index", index).
		Str("command", command).
		Int("exit_status", exitStatus).
		Send()
}

func (r *Recorder) event(name string) *zerolog.Event {
	return r.log.Info().Str("event", name).Str("run_id", r.runID)
}
