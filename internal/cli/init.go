package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/relay-build/relay/internal/config"
	"github.com/relay-build/relay/internal/errors"
	"github.com/relay-build/relay/internal/project"
)

// cmdInit initializes a new relay project. The command is idempotent: an
// existing config is validated and left untouched.
func cmdInit(args []string) int {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			out.ErrorPrefix("init: unknown option %q", arg)
			return errors.ExitConfigError
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}

	relayDir := filepath.Join(cwd, project.ConfigDirName)
	configPath := filepath.Join(relayDir, project.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil {
		if _, _, err := config.LoadAndValidate(configPath); err != nil {
			out.ErrorPrefix("existing config is invalid: %v", err)
			return errors.GetExitCode(err)
		}
		out.Info("%s already exists", configPath)
		return errors.ExitSuccess
	}

	if err := os.MkdirAll(relayDir, 0o755); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitEnvironmentError
	}

	toolchain, detected := project.DetectToolchain(cwd)
	cfg := &config.Config{
		Project: config.ProjectConfig{
			Name: sanitizeProjectName(filepath.Base(cwd)),
		},
		Tasks: presetTasks(toolchain),
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitRuntimeError
	}
	data = append(data, '\n')

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitEnvironmentError
	}

	out.Success("created %s", filepath.Join(project.ConfigDirName, project.ConfigFileName))
	if detected {
		out.Detail("detected %s toolchain", toolchain)
	}
	out.Hint("run 'relay tasks' to see the configured tasks")
	return errors.ExitSuccess
}

// presetTasks returns the lint/test/push chain for a detected toolchain.
// Unknown toolchains get a skeleton the user fills in.
func presetTasks(toolchain string) map[string]config.TaskConfig {
	switch toolchain {
	case "python", "uv", "poetry":
		return map[string]config.TaskConfig{
			"lint": {
				Description: "Format, type-check, and lint",
				Commands:    []string{"black .", "mypy .", "flake8 ."},
			},
			"test": {
				Description: "Run the test suite with coverage",
				DependsOn:   []string{"lint"},
				Commands:    []string{"pytest --cov"},
				Parser:      "pytest",
			},
			"push": {
				Description: "Push after lint and test pass",
				DependsOn:   []string{"lint", "test"},
				Commands:    []string{"git push"},
			},
		}
	case "go":
		return map[string]config.TaskConfig{
			"lint": {
				Description: "Format, vet, and lint",
				Commands:    []string{"gofmt -l .", "go vet ./...", "staticcheck ./..."},
			},
			"test": {
				Description: "Run the test suite with coverage",
				DependsOn:   []string{"lint"},
				Commands:    []string{"go test -cover ./..."},
				Parser:      "go",
			},
			"push": {
				Description: "Push after lint and test pass",
				DependsOn:   []string{"lint", "test"},
				Commands:    []string{"git push"},
			},
		}
	case "cargo":
		return map[string]config.TaskConfig{
			"lint": {
				Description: "Format and lint",
				Commands:    []string{"cargo fmt --check", "cargo clippy -- -D warnings"},
			},
			"test": {
				Description: "Run the test suite",
				DependsOn:   []string{"lint"},
				Commands:    []string{"cargo test"},
				Parser:      "cargo",
			},
			"push": {
				Description: "Push after lint and test pass",
				DependsOn:   []string{"lint", "test"},
				Commands:    []string{"git push"},
			},
		}
	case "npm", "pnpm", "yarn":
		runner := toolchain
		if runner == "npm" {
			runner = "npm run"
		}
		return map[string]config.TaskConfig{
			"lint": {
				Description: "Format and lint",
				Commands:    []string{runner + " lint"},
			},
			"test": {
				Description: "Run the test suite",
				DependsOn:   []string{"lint"},
				Commands:    []string{runner + " test"},
			},
			"push": {
				Description: "Push after lint and test pass",
				DependsOn:   []string{"lint", "test"},
				Commands:    []string{"git push"},
			},
		}
	default:
		return map[string]config.TaskConfig{
			"lint": {
				Description: "Lint the project",
				Commands:    []string{"echo 'configure lint commands in .relay/config.json'"},
			},
			"test": {
				Description: "Run the test suite",
				DependsOn:   []string{"lint"},
				Commands:    []string{"echo 'configure test commands in .relay/config.json'"},
			},
			"push": {
				Description: "Push after lint and test pass",
				DependsOn:   []string{"lint", "test"},
				Commands:    []string{"git push"},
			},
		}
	}
}

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// sanitizeProjectName converts a directory name into a valid project name.
func sanitizeProjectName(name string) string {
	name = strings.ToLower(name)
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	if name == "" || config.ValidateProjectName(name) != nil {
		name = "relay-project"
	}
	return name
}
