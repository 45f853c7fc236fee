package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"project": {"name": "demo"},
		"vars": {"pkg": "./..."},
		"tasks": {
			"lint": {"commands": ["gofmt -l ."]},
			"test": {"depends_on": ["lint"], "commands": ["go test ${pkg}"], "parser": "go"}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Project.Name != "demo" {
		t.Errorf("Project.Name = %q, want %q", cfg.Project.Name, "demo")
	}
	if got := cfg.Vars["pkg"]; got != "./..." {
		t.Errorf("Vars[pkg] = %q, want %q", got, "./...")
	}
	if len(cfg.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(cfg.Tasks))
	}

	test := cfg.Tasks["test"]
	if len(test.DependsOn) != 1 || test.DependsOn[0] != "lint" {
		t.Errorf("test.DependsOn = %v, want [lint]", test.DependsOn)
	}
	if test.Parser != "go" {
		t.Errorf("test.Parser = %q, want %q", test.Parser, "go")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"project":`)
	_, err := Load(path)
	if err == nil {
		t.Error("expected error for malformed JSON, got nil")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"project": {"name": "demo"},
		"tasks": {
			"lint": {"commands": ["gofmt -l ."]},
			"test": {"description": "Run the test suite", "commands": ["go test ./..."]}
		},
		"ci": {}
	}`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}

	if got := cfg.Tasks["lint"].Description; got != "Run lint" {
		t.Errorf("lint description = %q, want %q", got, "Run lint")
	}
	if got := cfg.Tasks["test"].Description; got != "Run the test suite" {
		t.Errorf("test description = %q, want %q (explicit description must survive)", got, "Run the test suite")
	}

	if cfg.CI.Workflow != DefaultCIWorkflowName {
		t.Errorf("CI.Workflow = %q, want %q", cfg.CI.Workflow, DefaultCIWorkflowName)
	}
	if len(cfg.CI.Branches) != 1 || cfg.CI.Branches[0] != DefaultCIBranch {
		t.Errorf("CI.Branches = %v, want [%s]", cfg.CI.Branches, DefaultCIBranch)
	}
}

func TestLoadWithDefaultsNoCI(t *testing.T) {
	path := writeConfig(t, `{
		"project": {"name": "demo"},
		"tasks": {"lint": {"commands": ["gofmt -l ."]}}
	}`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if cfg.CI != nil {
		t.Errorf("CI = %+v, want nil when the ci section is absent", cfg.CI)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `{
		"project": {"name": "demo"},
		"tasks": {
			"lint": {"commands": ["gofmt -l ."]},
			"extra": {"commands": ["true"], "timeout": 30}
		}
	}`)

	cfg, warnings, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadAndValidate() returned nil config")
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, `unknown field "timeout" in tasks.extra`) {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want unknown field warning for tasks.extra.timeout", warnings)
	}
}

func TestLoadAndValidateSchemaRejectsBadConfig(t *testing.T) {
	path := writeConfig(t, `{"project": {"name": "Bad Name"}, "tasks": {"lint": {"commands": ["x"]}}}`)

	_, _, err := LoadAndValidate(path)
	if err == nil {
		t.Error("expected schema validation error for bad project name, got nil")
	}
}

func TestLoadAndValidateUndefinedDependency(t *testing.T) {
	path := writeConfig(t, `{
		"project": {"name": "demo"},
		"tasks": {"push": {"depends_on": ["lint"], "commands": ["git push"]}}
	}`)

	_, _, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("expected error for undefined dependency, got nil")
	}
	if !strings.Contains(err.Error(), `undefined task "lint"`) {
		t.Errorf("error = %q, want mention of undefined task", err)
	}
}
