// Package config provides configuration loading and validation for
// .relay/config.json.
package config

// Config represents the complete config.json configuration.
type Config struct {
	Project ProjectConfig         `json:"project"`
	Vars    map[string]string     `json:"vars,omitempty"`
	Env     map[string]string     `json:"env,omitempty"`
	Tasks   map[string]TaskConfig `json:"tasks"`
	Trace   *TraceConfig          `json:"trace,omitempty"`
	CI      *CIConfig             `json:"ci,omitempty"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Repository  string `json:"repository,omitempty"`
}

// TaskConfig defines a single named task.
type TaskConfig struct {
	Description string            `json:"description,omitempty"`
	Commands    []string          `json:"commands,omitempty"`
	DependsOn   []string          `json:"depends_on,omitempty"`
	Cwd         string            `json:"cwd,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	Vars        map[string]string `json:"vars,omitempty"`
	Parser      string            `json:"parser,omitempty"`   // Test output parser (go, pytest, cargo)
	Disabled    bool              `json:"disabled,omitempty"` // Disabled tasks skip with a warning
}

// TraceConfig configures the machine-readable execution trace.
type TraceConfig struct {
	File string `json:"file,omitempty"` // JSONL output path, relative to the project root
}

// CIConfig configures CI workflow generation.
type CIConfig struct {
	Workflow string   `json:"workflow,omitempty"` // Workflow name
	Branches []string `json:"branches,omitempty"` // Trigger branches
	Tasks    []string `json:"tasks,omitempty"`    // Entry tasks to generate jobs for
}
