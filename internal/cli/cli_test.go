package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/relay-build/relay/internal/project"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on POSIX sh")
	}
}

// setupProject creates a project in a temp dir and chdirs into it.
func setupProject(t *testing.T, configJSON string) string {
	t.Helper()
	root := t.TempDir()
	configDir := filepath.Join(root, project.ConfigDirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, project.ConfigFileName), []byte(configJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(root)
	return root
}

const chainConfig = `{
	"project": {"name": "demo"},
	"tasks": {
		"lint": {"commands": ["echo lint >> order"]},
		"test": {"depends_on": ["lint"], "commands": ["echo test >> order"]},
		"push": {"depends_on": ["lint", "test"], "commands": ["echo push >> order"]}
	}
}`

func readOrder(t *testing.T, root string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "order"))
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatal(err)
	}
	return strings.Join(strings.Fields(string(data)), " ")
}

func TestParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantQuiet bool
		wantDry   bool
		wantTrace string
		wantRest  []string
		wantArgs  []string
		wantErr   bool
	}{
		{
			name:     "plain task",
			args:     []string{"lint"},
			wantRest: []string{"lint"},
		},
		{
			name:      "flags anywhere",
			args:      []string{"test", "-q", "--dry-run"},
			wantQuiet: true,
			wantDry:   true,
			wantRest:  []string{"test"},
		},
		{
			name:      "trace with value",
			args:      []string{"--trace", "out.jsonl", "lint"},
			wantTrace: "out.jsonl",
			wantRest:  []string{"lint"},
		},
		{
			name:      "trace with equals",
			args:      []string{"lint", "--trace=out.jsonl"},
			wantTrace: "out.jsonl",
			wantRest:  []string{"lint"},
		},
		{
			name:     "passthrough after double dash",
			args:     []string{"test", "--", "-run", "TestFoo", "--quiet"},
			wantRest: []string{"test"},
			wantArgs: []string{"-run", "TestFoo", "--quiet"},
		},
		{
			name:    "trace missing value",
			args:    []string{"lint", "--trace"},
			wantErr: true,
		},
		{
			name:    "quiet and verbose conflict",
			args:    []string{"-q", "-v", "lint"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, rest, err := parseGlobalFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseGlobalFlags() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGlobalFlags() error = %v", err)
			}
			if opts.Quiet != tt.wantQuiet || opts.DryRun != tt.wantDry {
				t.Errorf("opts = %+v", opts)
			}
			if opts.TraceFile != tt.wantTrace {
				t.Errorf("TraceFile = %q, want %q", opts.TraceFile, tt.wantTrace)
			}
			if strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
				t.Errorf("remaining = %v, want %v", rest, tt.wantRest)
			}
			if strings.Join(opts.Args, " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("Args = %v, want %v", opts.Args, tt.wantArgs)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	if code := Run([]string{"version"}); code != 0 {
		t.Errorf("Run(version) = %d, want 0", code)
	}
	if code := Run([]string{"--version"}); code != 0 {
		t.Errorf("Run(--version) = %d, want 0", code)
	}
}

func TestRunHelp(t *testing.T) {
	if code := Run(nil); code != 0 {
		t.Errorf("Run() = %d, want 0", code)
	}
	if code := Run([]string{"--help"}); code != 0 {
		t.Errorf("Run(--help) = %d, want 0", code)
	}
}

func TestRunFullChain(t *testing.T) {
	skipOnWindows(t)
	root := setupProject(t, chainConfig)

	code := Run([]string{"push", "-q"})
	if code != 0 {
		t.Fatalf("Run(push) = %d, want 0", code)
	}
	if got := readOrder(t, root); got != "lint lint test push" {
		t.Errorf("executed = %q, want %q", got, "lint lint test push")
	}
}

func TestRunFailurePropagatesExitStatus(t *testing.T) {
	skipOnWindows(t)
	root := setupProject(t, `{
		"project": {"name": "demo"},
		"tasks": {
			"lint": {"commands": ["echo lint >> order", "exit 4"]},
			"test": {"depends_on": ["lint"], "commands": ["echo test >> order"]}
		}
	}`)

	code := Run([]string{"test", "-q"})
	if code != 4 {
		t.Errorf("Run(test) = %d, want the failing command's status 4", code)
	}
	if got := readOrder(t, root); got != "lint" {
		t.Errorf("executed = %q, want only lint", got)
	}
}

func TestRunUnknownTask(t *testing.T) {
	setupProject(t, chainConfig)

	if code := Run([]string{"deploy", "-q"}); code != 2 {
		t.Errorf("Run(deploy) = %d, want 2", code)
	}
}

func TestRunOutsideProject(t *testing.T) {
	t.Chdir(t.TempDir())

	if code := Run([]string{"lint", "-q"}); code != 2 {
		t.Errorf("Run(lint) outside project = %d, want 2", code)
	}
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	skipOnWindows(t)
	root := setupProject(t, chainConfig)

	if code := Run([]string{"push", "--dry-run", "-q"}); code != 0 {
		t.Errorf("Run(--dry-run) = %d, want 0", code)
	}
	if got := readOrder(t, root); got != "" {
		t.Errorf("dry run executed commands: %q", got)
	}
}

func TestRunWritesTrace(t *testing.T) {
	skipOnWindows(t)
	root := setupProject(t, chainConfig)
	tracePath := filepath.Join(root, "trace.jsonl")

	if code := Run([]string{"lint", "-q", "--trace", tracePath}); code != 0 {
		t.Fatalf("Run(lint) = %d, want 0", code)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	text := string(data)
	for _, event := range []string{"run_started", "task_started", "command_started", "task_finished", "run_finished"} {
		if !strings.Contains(text, event) {
			t.Errorf("trace missing %s event", event)
		}
	}
}

func TestCmdTasksAndGraph(t *testing.T) {
	setupProject(t, chainConfig)

	if code := Run([]string{"tasks"}); code != 0 {
		t.Errorf("Run(tasks) = %d, want 0", code)
	}
	if code := Run([]string{"graph"}); code != 0 {
		t.Errorf("Run(graph) = %d, want 0", code)
	}
	if code := Run([]string{"graph", "push"}); code != 0 {
		t.Errorf("Run(graph push) = %d, want 0", code)
	}
	if code := Run([]string{"graph", "deploy"}); code != 2 {
		t.Errorf("Run(graph deploy) = %d, want 2 for unknown task", code)
	}
}

func TestCmdConfigValidate(t *testing.T) {
	setupProject(t, chainConfig)

	if code := Run([]string{"config", "validate"}); code != 0 {
		t.Errorf("Run(config validate) = %d, want 0", code)
	}
	if code := Run([]string{"config"}); code != 2 {
		t.Errorf("Run(config) = %d, want 2", code)
	}
}

func TestCmdConfigValidateInvalid(t *testing.T) {
	setupProject(t, `{"project": {"name": "demo"}, "tasks": {}}`)

	if code := Run([]string{"config", "validate"}); code != 2 {
		t.Errorf("Run(config validate) = %d, want 2 for invalid config", code)
	}
}

func TestCmdCIGitHub(t *testing.T) {
	root := setupProject(t, chainConfig)

	if code := Run([]string{"ci", "github"}); code != 0 {
		t.Fatalf("Run(ci github) = %d, want 0", code)
	}

	data, err := os.ReadFile(filepath.Join(root, ".github", "workflows", "relay.yml"))
	if err != nil {
		t.Fatalf("read workflow: %v", err)
	}
	if !strings.Contains(string(data), "relay push") {
		t.Errorf("workflow missing push job: %s", data)
	}
}

func TestCmdInitNewProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte{}, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	if code := Run([]string{"init"}); code != 0 {
		t.Fatalf("Run(init) = %d, want 0", code)
	}

	data, err := os.ReadFile(filepath.Join(dir, project.ConfigDirName, project.ConfigFileName))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	text := string(data)
	for _, want := range []string{"black .", "mypy .", "pytest --cov", "git push"} {
		if !strings.Contains(text, want) {
			t.Errorf("python preset missing %q", want)
		}
	}

	// Second init is a no-op.
	if code := Run([]string{"init"}); code != 0 {
		t.Errorf("second Run(init) = %d, want 0", code)
	}
}

func TestSanitizeProjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MyProject", "myproject"},
		{"my_cool_tool", "my-cool-tool"},
		{"My App 2", "my-app-2"},
		{"---", "relay-project"},
		{"2fast", "relay-project"},
	}
	for _, tt := range tests {
		if got := sanitizeProjectName(tt.in); got != tt.want {
			t.Errorf("sanitizeProjectName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
