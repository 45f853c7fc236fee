// Package ci generates CI workflow files from project configuration.
package ci

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/relay-build/relay/internal/config"
)

// Workflow represents a GitHub Actions workflow file.
type Workflow struct {
	Name string         `yaml:"name"`
	On   Trigger        `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Trigger defines when the workflow runs.
type Trigger struct {
	Push        Branches `yaml:"push"`
	PullRequest Branches `yaml:"pull_request"`
}

// Branches lists trigger branch patterns.
type Branches struct {
	Branches []string `yaml:"branches"`
}

// Job defines one workflow job.
type Job struct {
	Name   string   `yaml:"name,omitempty"`
	RunsOn string   `yaml:"runs-on"`
	Needs  []string `yaml:"needs,omitempty"`
	Steps  []Step   `yaml:"steps"`
}

// Step defines one job step.
type Step struct {
	Name string `yaml:"name,omitempty"`
	Uses string `yaml:"uses,omitempty"`
	Run  string `yaml:"run,omitempty"`
}

// GenerateGitHubWorkflow renders a GitHub Actions workflow for the project.
// One job is generated per selected task; depends_on edges between selected
// tasks become job-level needs so that CI mirrors the local chain.
func GenerateGitHubWorkflow(cfg *config.Config) (string, error) {
	ciCfg := cfg.CI
	if ciCfg == nil {
		ciCfg = &config.CIConfig{
			Workflow: config.DefaultCIWorkflowName,
			Branches: []string{config.DefaultCIBranch},
		}
	}

	taskNames, err := selectTasks(cfg, ciCfg)
	if err != nil {
		return "", err
	}

	selected := make(map[string]bool, len(taskNames))
	for _, name := range taskNames {
		selected[name] = true
	}

	wf := &Workflow{
		Name: ciCfg.Workflow,
		On: Trigger{
			Push:        Branches{Branches: ciCfg.Branches},
			PullRequest: Branches{Branches: ciCfg.Branches},
		},
		Jobs: make(map[string]Job, len(taskNames)),
	}

	for _, name := range taskNames {
		taskCfg := cfg.Tasks[name]

		var needs []string
		for _, dep := range taskCfg.DependsOn {
			if selected[dep] {
				needs = append(needs, dep)
			}
		}
		sort.Strings(needs)

		wf.Jobs[name] = Job{
			RunsOn: "ubuntu-latest",
			Needs:  needs,
			Steps: []Step{
				{Uses: "actions/checkout@v4"},
				{Name: "Run " + name, Run: "relay " + name},
			},
		}
	}

	data, err := yaml.Marshal(wf)
	if err != nil {
		return "", fmt.Errorf("failed to generate workflow: %w", err)
	}

	return string(data), nil
}

// WriteGitHubWorkflow generates and writes .github/workflows/relay.yml.
func WriteGitHubWorkflow(projectRoot string, cfg *config.Config) (string, error) {
	content, err := GenerateGitHubWorkflow(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(projectRoot, ".github", "workflows")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "relay.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// selectTasks returns the tasks to generate jobs for: the configured ci.tasks
// list when present, otherwise every enabled task.
func selectTasks(cfg *config.Config, ciCfg *config.CIConfig) ([]string, error) {
	if len(ciCfg.Tasks) > 0 {
		for _, name := range ciCfg.Tasks {
			if _, ok := cfg.Tasks[name]; !ok {
				return nil, &config.ValidationError{
					Field:   "ci.tasks",
					Message: fmt.Sprintf("references undefined task %q", name),
				}
			}
		}
		names := append([]string(nil), ciCfg.Tasks...)
		sort.Strings(names)
		return names, nil
	}

	var names []string
	for name, taskCfg := range cfg.Tasks {
		if !taskCfg.Disabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
