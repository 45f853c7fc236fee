package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relay-build/relay/internal/ci"
	relayerrors "github.com/relay-build/relay/internal/errors"
	"github.com/relay-build/relay/internal/execlog"
	"github.com/relay-build/relay/internal/project"
	"github.com/relay-build/relay/internal/runner"
	"github.com/relay-build/relay/internal/task"
)

// loadProject loads the current project, translating discovery failures into
// actionable errors.
func loadProject() (*project.Project, error) {
	proj, err := project.LoadProject()
	if err != nil {
		if errors.Is(err, project.ErrNoProjectRoot) {
			return nil, relayerrors.Config(err.Error())
		}
		return nil, err
	}

	for _, w := range proj.Warnings {
		out.Warning("%s", w)
	}
	return proj, nil
}

// cmdRun executes a task with its prerequisite chain.
func cmdRun(taskName string, cmdArgs []string, opts *GlobalOptions) int {
	proj, err := loadProject()
	if err != nil {
		out.ErrorPrefix("%v", err)
		out.Hint("run 'relay init' to set up a project")
		return relayerrors.GetExitCode(err)
	}

	registry, err := task.NewRegistry(proj.Config, proj.Root)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	r := runner.New(registry, out)

	trace, err := openTrace(proj, opts)
	if err != nil {
		out.ErrorPrefix("cannot open trace file: %v", err)
		return relayerrors.ExitEnvironmentError
	}
	if trace != nil {
		defer func() { _ = trace.Close() }()
		r.SetTrace(trace)
		trace.RunStarted(proj.Config.Project.Name, taskName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := opts.Args
	if len(cmdArgs) > 0 {
		// Bare arguments before -- also go to the task.
		args = append(append([]string(nil), cmdArgs...), args...)
	}

	started := time.Now()
	summary, runErr := r.Run(ctx, taskName, runner.RunOptions{
		Args:   args,
		DryRun: opts.DryRun,
	})
	if summary == nil {
		out.ErrorPrefix("%v", runErr)
		if trace != nil {
			trace.RunFinished(relayerrors.GetExitCode(runErr), time.Since(started))
		}
		return relayerrors.GetExitCode(runErr)
	}

	if !opts.DryRun {
		printRunSummary(summary)
	}
	if trace != nil {
		trace.RunFinished(summary.ExitCode(), summary.Duration)
	}
	return summary.ExitCode()
}

// openTrace resolves the trace destination: the --trace flag (or RELAY_TRACE)
// wins over the config's trace section. Returns nil when tracing is off.
func openTrace(proj *project.Project, opts *GlobalOptions) (*execlog.Recorder, error) {
	path := opts.TraceFile
	if path == "" && proj.Config.Trace != nil {
		path = proj.Config.Trace.File
	}
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(proj.Root, path)
	}
	return execlog.Open(path)
}

var titleCase = cases.Title(language.English)

// printRunSummary prints the per-task results and the final verdict.
func printRunSummary(summary *runner.RunSummary) {
	if len(summary.Results) == 0 {
		return
	}

	out.Println("")
	out.SummaryHeader("Run Summary")

	for _, result := range summary.Results {
		switch result.Status {
		case runner.StatusPassed:
			out.SummaryAction(result.Task, true, formatDuration(result.Duration), "")
		case runner.StatusFailed:
			msg := ""
			if result.Err != nil {
				msg = result.Err.Error()
			}
			out.SummaryAction(result.Task, false, formatDuration(result.Duration), msg)
		case runner.StatusSkipped:
			out.SummaryItem(result.Task, "skipped")
		}

		if result.Tests != nil {
			printTestCounts(result)
		}
	}

	out.Println("")
	if summary.Err == nil {
		out.FinalSuccess("%s completed in %s.", titleCase.String(summary.Entry), formatDuration(summary.Duration))
	} else {
		out.FinalFailure("%s failed after %s.", titleCase.String(summary.Entry), formatDuration(summary.Duration))
	}
}

// printTestCounts prints parsed test results for one task.
func printTestCounts(result runner.TaskResult) {
	tests := result.Tests
	if tests.Parsed {
		out.SummaryPassed("  passed", fmt.Sprintf("%d", tests.Passed))
		if tests.Failed > 0 {
			out.SummaryFailed("  failed", fmt.Sprintf("%d", tests.Failed))
		}
		if tests.Skipped > 0 {
			out.SummaryItem("  skipped", fmt.Sprintf("%d", tests.Skipped))
		}
	}
	if tests.HasCoverage {
		out.SummaryItem("  coverage", fmt.Sprintf("%.1f%%", tests.Coverage))
	}
	for _, ft := range tests.FailedTests {
		out.SummaryFailed("  "+ft.Name, ft.Reason)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// cmdTasks lists all configured tasks.
func cmdTasks(args []string) int {
	proj, err := loadProject()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	registry, err := task.NewRegistry(proj.Config, proj.Root)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	for _, t := range registry.All() {
		out.TaskInfo(t.Name(), t.Description())
		if deps := t.DependsOn(); len(deps) > 0 {
			out.TaskDetail("depends on", joinNames(deps))
		}
		if t.Disabled() {
			out.TaskDetail("status", "disabled")
		}
		if out.Verbose() {
			for _, cmd := range t.Commands() {
				out.TaskDetail("command", cmd)
			}
		}
	}
	return relayerrors.ExitSuccess
}

// cmdGraph prints the full dependency graph in execution order.
func cmdGraph(args []string) int {
	proj, err := loadProject()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	registry, err := task.NewRegistry(proj.Config, proj.Root)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	var ordered []task.Task
	if len(args) > 0 {
		// Restrict the graph to the named task and its prerequisites.
		ordered, err = registry.ChainFor(args[0])
	} else {
		ordered, err = registry.TopologicalOrder()
	}
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	for i, t := range ordered {
		deps := t.DependsOn()
		if len(deps) == 0 {
			out.Step(i+1, "%s", t.Name())
		} else {
			out.Step(i+1, "%s  (after %s)", t.Name(), joinNames(deps))
		}
	}
	return relayerrors.ExitSuccess
}

// cmdConfig handles config subcommands.
func cmdConfig(args []string) int {
	if len(args) == 0 || args[0] != "validate" {
		out.ErrorPrefix("usage: relay config validate")
		return relayerrors.ExitConfigError
	}

	proj, err := loadProject()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	out.ValidationSuccess("%s is valid", proj.ConfigPath())
	return relayerrors.ExitSuccess
}

// cmdCI handles CI generation subcommands.
func cmdCI(args []string) int {
	if len(args) == 0 || args[0] != "github" {
		out.ErrorPrefix("usage: relay ci github")
		return relayerrors.ExitConfigError
	}

	proj, err := loadProject()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	path, err := ci.WriteGitHubWorkflow(proj.Root, proj.Config)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return relayerrors.GetExitCode(err)
	}

	out.Success("wrote %s", path)
	return relayerrors.ExitSuccess
}

func joinNames(names []string) string {
	result := ""
	for i, n := range names {
		if i > 0 {
			result += ", "
		}
		result += n
	}
	return result
}
