// Package cli provides command-line interface functionality for relay.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/relay-build/relay/internal/errors"
	"github.com/relay-build/relay/internal/output"
	"github.com/relay-build/relay/internal/project"
	"github.com/relay-build/relay/internal/task"
)

// Version is set at build time.
var Version = "dev"

var out = output.New()

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		fmt.Printf("relay %s\n", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "init":
		return cmdInit(cmdArgs)
	case "tasks":
		return cmdTasks(cmdArgs)
	case "graph":
		return cmdGraph(cmdArgs)
	case "config":
		return cmdConfig(cmdArgs)
	case "ci":
		return cmdCI(cmdArgs)
	default:
		// Anything else is a task name: run it with its prerequisite chain.
		return cmdRun(cmd, cmdArgs, opts)
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet     bool
	Verbose   bool
	DryRun    bool
	TraceFile string
	Args      []string // Pass-through arguments after --
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of the stdlib flag package because flags may
// appear anywhere in the argument list and everything after -- must be
// preserved verbatim for the task's final command.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
		case arg == "--dry-run":
			opts.DryRun = true
			i++
		case arg == "--trace":
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("--trace requires a file path")
			}
			opts.TraceFile = args[i+1]
			i += 2
		case strings.HasPrefix(arg, "--trace="):
			opts.TraceFile = strings.TrimPrefix(arg, "--trace=")
			i++
		case arg == "--":
			opts.Args = args[i+1:]
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if opts.Quiet && opts.Verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	if opts.TraceFile == "" {
		opts.TraceFile = os.Getenv("RELAY_TRACE")
	}

	out.SetQuiet(opts.Quiet)
	out.SetVerbose(opts.Verbose)

	return opts, remaining, nil
}

func printUsage() {
	out.HelpTitle("relay - task orchestration with prerequisite chaining")

	proj, _ := project.LoadProject()
	if proj != nil {
		printProjectHelp(proj)
	} else {
		printGenericHelp()
	}
}

func printProjectHelp(proj *project.Project) {
	registry, err := task.NewRegistry(proj.Config, proj.Root)
	if err != nil {
		printGenericHelp()
		return
	}

	out.HelpSection("Usage:")
	out.HelpUsage("relay <task> [flags] [-- args]   Run a task and its prerequisites")

	tasks := registry.All()
	maxNameLen := 0
	for _, t := range tasks {
		if len(t.Name()) > maxNameLen {
			maxNameLen = len(t.Name())
		}
	}

	out.HelpSection("Tasks:")
	for _, t := range tasks {
		desc := t.Description()
		if t.Disabled() {
			desc += " (disabled)"
		}
		out.HelpCommand(t.Name(), desc, maxNameLen)
	}

	printCommonHelp()
}

func printGenericHelp() {
	out.HelpSection("Usage:")
	out.HelpUsage("relay <task> [flags] [-- args]   Run a task and its prerequisites")

	out.HelpSection("Project Setup:")
	out.HelpCommand("init", "Initialize a new relay project", 10)

	printCommonHelp()
}

func printCommonHelp() {
	out.HelpSection("Commands:")
	out.HelpCommand("tasks", "List configured tasks", 16)
	out.HelpCommand("graph", "Show the task dependency graph", 16)
	out.HelpCommand("config validate", "Validate project configuration", 16)
	out.HelpCommand("ci github", "Generate a GitHub Actions workflow", 16)
	out.HelpCommand("version", "Show version information", 16)

	out.HelpSection("Flags:")
	out.HelpFlag("-q, --quiet", "Minimal output (errors only)", 16)
	out.HelpFlag("-v, --verbose", "Maximum detail", 16)
	out.HelpFlag("--dry-run", "Print the execution plan without running", 16)
	out.HelpFlag("--trace <file>", "Append a JSONL execution trace", 16)
	out.HelpFlag("-h, --help", "Show this help", 16)

	out.HelpSection("Environment:")
	out.HelpEnvVar("RELAY_TRACE", "Trace file path (same as --trace)", 12)

	out.HelpSection("Examples:")
	out.HelpExample("relay lint", "Format, type-check, and lint")
	out.HelpExample("relay test -- -k smoke", "Run tests, forwarding extra arguments")
	out.HelpExample("relay push --dry-run", "Show what a push would run")
	out.Println("")
}
