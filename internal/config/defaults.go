package config

// Default values for optional configuration fields.
const (
	// DefaultCIWorkflowName is the workflow name used when ci.workflow is unset.
	DefaultCIWorkflowName = "CI"

	// DefaultCIBranch is the trigger branch used when ci.branches is unset.
	DefaultCIBranch = "main"
)

// applyDefaults fills in default configuration fields.
func applyDefaults(cfg *Config) {
	applyTaskDefaults(cfg)
	applyCIDefaults(cfg)
}

func applyTaskDefaults(cfg *Config) {
	for name, task := range cfg.Tasks {
		if task.Description == "" {
			task.Description = "Run " + name
		}
		cfg.Tasks[name] = task
	}
}

func applyCIDefaults(cfg *Config) {
	if cfg.CI == nil {
		return // CI generation is optional
	}
	if cfg.CI.Workflow == "" {
		cfg.CI.Workflow = DefaultCIWorkflowName
	}
	if len(cfg.CI.Branches) == 0 {
		cfg.CI.Branches = []string{DefaultCIBranch}
	}
}
