package task

import (
	"strings"
	"testing"

	"github.com/relay-build/relay/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Project: config.ProjectConfig{Name: "demo"},
		Tasks: map[string]config.TaskConfig{
			"lint": {Commands: []string{"gofmt -l ."}},
			"test": {DependsOn: []string{"lint"}, Commands: []string{"go test ./..."}},
			"push": {DependsOn: []string{"lint", "test"}, Commands: []string{"git push"}},
		},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(testConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if got := r.Names(); len(got) != 3 {
		t.Fatalf("Names() = %v, want 3 tasks", got)
	}

	push, ok := r.Get("push")
	if !ok {
		t.Fatal("Get(push) not found")
	}
	if deps := push.DependsOn(); len(deps) != 2 || deps[0] != "lint" || deps[1] != "test" {
		t.Errorf("push.DependsOn() = %v, want [lint test]", deps)
	}

	if _, ok := r.Get("deploy"); ok {
		t.Error("Get(deploy) found = true, want false")
	}
}

func TestNewRegistryCycle(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks["lint"] = config.TaskConfig{DependsOn: []string{"push"}, Commands: []string{"gofmt -l ."}}

	_, err := NewRegistry(cfg, t.TempDir())
	if err == nil {
		t.Fatal("NewRegistry() error = nil, want cycle error")
	}
	if !strings.Contains(err.Error(), "circular dependency") {
		t.Errorf("error = %q, want circular dependency mention", err)
	}
}

func TestNewRegistryUndefinedDependency(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks["push"] = config.TaskConfig{DependsOn: []string{"deploy"}, Commands: []string{"git push"}}

	_, err := NewRegistry(cfg, t.TempDir())
	if err == nil {
		t.Fatal("NewRegistry() error = nil, want undefined dependency error")
	}
}

func TestChainFor(t *testing.T) {
	r, err := NewRegistry(testConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	chain, err := r.ChainFor("test")
	if err != nil {
		t.Fatalf("ChainFor() error = %v", err)
	}
	if len(chain) != 2 || chain[0].Name() != "lint" || chain[1].Name() != "test" {
		names := make([]string, len(chain))
		for i, tk := range chain {
			names[i] = tk.Name()
		}
		t.Errorf("ChainFor(test) = %v, want [lint test]", names)
	}

	if _, err := r.ChainFor("deploy"); err == nil {
		t.Error("ChainFor(deploy) error = nil, want not found")
	}
}

func TestTopologicalOrder(t *testing.T) {
	r, err := NewRegistry(testConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	ordered, err := r.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error = %v", err)
	}

	pos := make(map[string]int, len(ordered))
	for i, tk := range ordered {
		pos[tk.Name()] = i
	}

	if pos["lint"] > pos["test"] {
		t.Error("lint must come before test")
	}
	if pos["test"] > pos["push"] {
		t.Error("test must come before push")
	}
}
