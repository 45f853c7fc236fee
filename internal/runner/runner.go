// Package runner orchestrates task execution with prerequisite chaining.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	relayerrors "github.com/relay-build/relay/internal/errors"
	"github.com/relay-build/relay/internal/execlog"
	"github.com/relay-build/relay/internal/output"
	"github.com/relay-build/relay/internal/task"
	"github.com/relay-build/relay/internal/testparser"
)

// TaskStatus describes the outcome of a single task run.
type TaskStatus string

const (
	StatusPassed  TaskStatus = "passed"
	StatusFailed  TaskStatus = "failed"
	StatusSkipped TaskStatus = "skipped"
)

// TaskResult holds the outcome of one task run. A task that appears several
// times in a prerequisite chain produces one result per run.
type TaskResult struct {
	Task     string
	Status   TaskStatus
	Duration time.Duration
	Err      error
	Tests    *testparser.TestCounts // set when the task has a test output parser
}

// RunSummary aggregates a full invocation: the entry task, every task run in
// execution order, and the first failure if any.
type RunSummary struct {
	Entry    string
	Results  []TaskResult
	Duration time.Duration
	Err      error
}

// ExitCode returns the process exit code for this run.
func (s *RunSummary) ExitCode() int {
	return relayerrors.GetExitCode(s.Err)
}

// RunOptions configures execution behavior.
type RunOptions struct {
	Args   []string          // Forwarded arguments; reach only the entry task
	Env    map[string]string // Additional environment variables for every task
	DryRun bool              // Print the execution plan without running anything
	Stdout io.Writer         // Command stdout, defaults to os.Stdout
	Stderr io.Writer         // Command stderr, defaults to os.Stderr
}

// Runner executes tasks with their prerequisite chains.
//
// Prerequisites run strictly before the task's own commands, in declaration
// order, each with its own full chain. Runs are not memoized: a task reached
// through several prerequisite paths runs once per appearance. Execution is
// sequential and fail-fast throughout.
type Runner struct {
	registry *task.Registry
	out      *output.Writer
	trace    *execlog.Recorder
	parsers  *testparser.Registry
}

// New creates a Runner.
func New(registry *task.Registry, out *output.Writer) *Runner {
	return &Runner{
		registry: registry,
		out:      out,
		trace:    execlog.Nop(),
		parsers:  testparser.NewRegistry(),
	}
}

// SetTrace installs a trace recorder. The runner does not close it.
func (r *Runner) SetTrace(trace *execlog.Recorder) {
	r.trace = trace
}

// Run executes the named task and its prerequisite chain.
// The summary is returned even on failure; its Err field holds the first
// failure and summary.ExitCode() the matching process exit code.
func (r *Runner) Run(ctx context.Context, taskName string, opts RunOptions) (*RunSummary, error) {
	entry, ok := r.registry.Get(taskName)
	if !ok {
		return nil, relayerrors.NotFound("task", taskName)
	}

	summary := &RunSummary{Entry: taskName}

	if opts.DryRun {
		r.out.DryRunStart()
		r.planChain(entry, opts, summary)
		r.out.DryRunEnd()
		return summary, nil
	}

	started := time.Now()
	err := r.runChain(ctx, entry, opts, summary, true)
	summary.Duration = time.Since(started)
	summary.Err = err

	return summary, err
}

// runChain runs a task's prerequisites and then the task itself.
// isEntry marks the task the user asked for; only it receives forwarded args.
func (r *Runner) runChain(ctx context.Context, t task.Task, opts RunOptions, summary *RunSummary, isEntry bool) error {
	if t.Disabled() {
		r.out.Warning("[%s] disabled, skipping", t.Name())
		summary.Results = append(summary.Results, TaskResult{Task: t.Name(), Status: StatusSkipped})
		r.trace.TaskFinished(t.Name(), string(StatusSkipped), 0)
		return nil
	}

	for _, depName := range t.DependsOn() {
		if err := ctx.Err(); err != nil {
			return err
		}
		dep, ok := r.registry.Get(depName)
		if !ok {
			// Registry construction validates references; reaching this
			// means the registry was mutated after validation.
			return relayerrors.NotFound("task", depName)
		}
		if err := r.runChain(ctx, dep, opts, summary, false); err != nil {
			return err
		}
	}

	return r.runOwnCommands(ctx, t, opts, summary, isEntry)
}

// runOwnCommands runs a single task's command sequence and records the result.
func (r *Runner) runOwnCommands(ctx context.Context, t task.Task, opts RunOptions, summary *RunSummary, isEntry bool) error {
	if len(t.Commands()) == 0 {
		// Aggregation-only task: prerequisites are its whole job.
		return nil
	}

	r.out.TaskStart(t.Name())
	r.trace.TaskStarted(t.Name())
	started := time.Now()

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// Capture output for test result parsing when the task declares a parser.
	var captured *bytes.Buffer
	parser := r.parsers.GetParser(t.Parser())
	if parser != nil {
		captured = &bytes.Buffer{}
		stdout = io.MultiWriter(stdout, captured)
		stderr = io.MultiWriter(stderr, captured)
	}

	execOpts := task.ExecOptions{
		Env:    opts.Env,
		Stdout: stdout,
		Stderr: stderr,
		OnCommand: func(index int, cmd string) {
			r.out.Command(cmd)
			r.trace.CommandStarted(t.Name(), index, cmd)
		},
	}
	if isEntry {
		execOpts.Args = opts.Args
	}

	err := t.Execute(ctx, execOpts)
	duration := time.Since(started)

	result := TaskResult{Task: t.Name(), Duration: duration}
	if captured != nil {
		counts := parser.Parse(captured.String())
		if counts.Parsed || counts.HasCoverage {
			result.Tests = &counts
		}
	}

	switch {
	case err == nil:
		result.Status = StatusPassed
		r.out.TaskSuccess(t.Name(), formatDuration(duration))

	case task.IsSkipError(err):
		result.Status = StatusSkipped
		r.out.Warning("%s", err.Error())
		err = nil

	default:
		result.Status = StatusFailed
		result.Err = err
		r.out.TaskFailed(t.Name(), err)

		var cmdErr *relayerrors.CommandError
		if errors.As(err, &cmdErr) {
			r.trace.CommandFailed(cmdErr.Task, cmdErr.Index, cmdErr.Command, cmdErr.ExitStatus)
		}
	}

	summary.Results = append(summary.Results, result)
	r.trace.TaskFinished(t.Name(), string(result.Status), duration)

	return err
}

// planChain appends the task's execution plan to the summary without running
// anything. Mirrors runChain's traversal exactly.
func (r *Runner) planChain(t task.Task, opts RunOptions, summary *RunSummary) {
	if t.Disabled() {
		r.out.Warning("[%s] disabled, would skip", t.Name())
		summary.Results = append(summary.Results, TaskResult{Task: t.Name(), Status: StatusSkipped})
		return
	}

	for _, depName := range t.DependsOn() {
		if dep, ok := r.registry.Get(depName); ok {
			r.planChain(dep, opts, summary)
		}
	}

	commands := t.Commands()
	if len(commands) == 0 {
		return
	}

	r.out.TaskStart(t.Name())
	for i, cmd := range commands {
		if t.Name() == summary.Entry && len(opts.Args) > 0 && i == len(commands)-1 {
			cmd += " " + joinArgs(opts.Args)
		}
		r.out.Command(cmd)
	}
	summary.Results = append(summary.Results, TaskResult{Task: t.Name(), Status: StatusPassed})
}

func joinArgs(args []string) string {
	result := ""
	for i, a := range args {
		if i > 0 {
			result += " "
		}
		result += a
	}
	return result
}

// formatDuration renders a duration for task banners with millisecond
// precision below one second.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
