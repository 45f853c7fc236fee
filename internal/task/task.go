// Package task provides the Task interface and registry for relay tasks.
package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/relay-build/relay/internal/config"
	relayerrors "github.com/relay-build/relay/internal/errors"
)

// varPattern matches variable references in the format ${varname}.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// escapePlaceholder temporarily replaces escaped variable syntax ($${var})
// during interpolation so that ${var} survives as a literal. NUL bytes cannot
// appear in JSON strings or POSIX command lines, so the sentinel cannot
// collide with user-provided values.
const escapePlaceholder = "\x00ESCAPED\x00"

// SkipError indicates that a task was skipped rather than failed.
// The orchestrator logs skips as warnings and continues the chain.
type SkipError struct {
	Task   string
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("[%s] %s, skipping", e.Task, e.Reason)
}

// IsSkipError returns true if the error is or wraps a SkipError.
func IsSkipError(err error) bool {
	var skipErr *SkipError
	return errors.As(err, &skipErr)
}

// Task represents a configured, runnable task.
type Task interface {
	Name() string
	Description() string
	Commands() []string
	DependsOn() []string
	Cwd() string
	Env() map[string]string
	Vars() map[string]string
	Parser() string
	Disabled() bool

	// Execute runs the task's own commands in order, stopping at the first
	// failure. Prerequisites are the orchestrator's concern, not the task's.
	Execute(ctx context.Context, opts ExecOptions) error
}

// ExecOptions contains options for command execution.
type ExecOptions struct {
	Args      []string                    // Forwarded arguments, appended to the task's final command
	Env       map[string]string           // Additional environment variables (highest precedence)
	Stdout    io.Writer                   // Defaults to os.Stdout
	Stderr    io.Writer                   // Defaults to os.Stderr
	OnCommand func(index int, cmd string) // Called before each command starts
}

// taskImpl is the concrete implementation of the Task interface.
type taskImpl struct {
	name        string
	description string
	commands    []string
	dependsOn   []string
	cwd         string
	env         map[string]string
	vars        map[string]string
	parser      string
	disabled    bool

	rootDir     string // Absolute path to project root
	projectName string
	globalEnv   map[string]string
	globalVars  map[string]string
}

// NewTask creates a task from configuration.
func NewTask(name string, cfg config.TaskConfig, project *config.Config, rootDir string) Task {
	return &taskImpl{
		name:        name,
		description: cfg.Description,
		commands:    append([]string(nil), cfg.Commands...),
		dependsOn:   append([]string(nil), cfg.DependsOn...),
		cwd:         cfg.Cwd,
		env:         copyMapNilIfEmpty(cfg.Env),
		vars:        copyMapNilIfEmpty(cfg.Vars),
		parser:      cfg.Parser,
		disabled:    cfg.Disabled,
		rootDir:     rootDir,
		projectName: project.Project.Name,
		globalEnv:   copyMapNilIfEmpty(project.Env),
		globalVars:  copyMapNilIfEmpty(project.Vars),
	}
}

func (t *taskImpl) Name() string        { return t.name }
func (t *taskImpl) Description() string { return t.description }
func (t *taskImpl) Cwd() string         { return t.cwd }
func (t *taskImpl) Parser() string      { return t.parser }
func (t *taskImpl) Disabled() bool      { return t.disabled }

// Commands returns the interpolated command strings in execution order.
func (t *taskImpl) Commands() []string {
	result := make([]string, len(t.commands))
	for i, cmd := range t.commands {
		result[i] = t.interpolateVars(cmd)
	}
	return result
}

// DependsOn returns a copy of the dependency list, safe to modify.
func (t *taskImpl) DependsOn() []string {
	result := make([]string, len(t.dependsOn))
	copy(result, t.dependsOn)
	return result
}

func (t *taskImpl) Env() map[string]string  { return copyMapNilIfEmpty(t.env) }
func (t *taskImpl) Vars() map[string]string { return copyMapNilIfEmpty(t.vars) }

// Execute runs the task's commands sequentially, fail-fast. The returned
// error is a *relayerrors.CommandError for command failures, pinning down
// the failing command's position and exit status.
func (t *taskImpl) Execute(ctx context.Context, opts ExecOptions) error {
	if t.disabled {
		return &SkipError{Task: t.name, Reason: "disabled"}
	}

	commands := t.Commands()
	for i, cmdStr := range commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Forwarded arguments go to the final command only.
		if len(opts.Args) > 0 && i == len(commands)-1 {
			cmdStr += " " + strings.Join(opts.Args, " ")
		}

		if opts.OnCommand != nil {
			opts.OnCommand(i, cmdStr)
		}

		if err := t.executeShell(ctx, cmdStr, opts); err != nil {
			return t.commandError(i, cmdStr, err)
		}
	}

	return nil
}

// commandError converts a shell execution error into a CommandError carrying
// the failing command's exit status.
func (t *taskImpl) commandError(index int, cmdStr string, err error) error {
	status := relayerrors.ExitCommandNotRunnable
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status = exitErr.ExitCode()
	}
	return &relayerrors.CommandError{
		Task:       t.name,
		Index:      index,
		Command:    cmdStr,
		ExitStatus: status,
		Cause:      err,
	}
}

func (t *taskImpl) executeShell(ctx context.Context, cmdStr string, opts ExecOptions) error {
	shellCmd := buildShellCommand(ctx, cmdStr)
	shellCmd.Dir = filepath.Join(t.rootDir, t.cwd)

	shellCmd.Stdout = opts.Stdout
	if shellCmd.Stdout == nil {
		shellCmd.Stdout = os.Stdout
	}
	shellCmd.Stderr = opts.Stderr
	if shellCmd.Stderr == nil {
		shellCmd.Stderr = os.Stderr
	}

	// Environment variable precedence (highest to lowest):
	//   1. Execution-specific env (opts.Env)
	//   2. Task-level env
	//   3. Project-level env
	//   4. Inherited process env
	// Later appends win when the same key appears more than once.
	shellCmd.Env = os.Environ()
	for k, v := range t.globalEnv {
		shellCmd.Env = append(shellCmd.Env, k+"="+v)
	}
	for k, v := range t.env {
		shellCmd.Env = append(shellCmd.Env, k+"="+v)
	}
	for k, v := range opts.Env {
		shellCmd.Env = append(shellCmd.Env, k+"="+v)
	}

	return shellCmd.Run()
}

// interpolateVars replaces ${var} with variable values.
// Escaping: $${var} becomes ${var} (literal).
//
// Built-in variables:
//   - ${task}: task name
//   - ${project}: project name
//   - ${root}: project root directory (absolute path)
//
// Task-level vars override project-level vars; both override built-ins.
func (t *taskImpl) interpolateVars(cmd string) string {
	result := strings.ReplaceAll(cmd, "$${", escapePlaceholder)

	vars := map[string]string{
		"task":    t.name,
		"project": t.projectName,
		"root":    t.rootDir,
	}
	for k, v := range t.globalVars {
		vars[k] = v
	}
	for k, v := range t.vars {
		vars[k] = v
	}

	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		return match // Keep unmatched variables as-is
	})

	return strings.ReplaceAll(result, escapePlaceholder, "${")
}

// buildShellCommand creates a cross-platform shell command.
// On Windows, uses PowerShell by full path; on Unix, sh -c.
func buildShellCommand(ctx context.Context, cmdStr string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return buildWindowsShellCommand(ctx, cmdStr)
	}
	return exec.CommandContext(ctx, "sh", "-c", cmdStr)
}

func buildWindowsShellCommand(ctx context.Context, cmdStr string) *exec.Cmd {
	systemRoot := os.Getenv("SYSTEMROOT")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	powershellPath := filepath.Join(systemRoot, "System32", "WindowsPowerShell", "v1.0", "powershell.exe")
	return exec.CommandContext(ctx, powershellPath, "-NoProfile", "-NonInteractive", "-Command", cmdStr)
}

// copyMapNilIfEmpty copies the map, returning nil if the map is nil or empty.
func copyMapNilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
