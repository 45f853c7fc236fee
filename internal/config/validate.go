package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relay-build/relay/internal/errors"
)

var (
	// Project name: must start with a lowercase letter, may contain lowercase,
	// digits, hyphens. Hyphens must not be consecutive or trailing.
	projectNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

	// Task name: lowercase letters, digits, hyphens, and colon-separated
	// variants (e.g., "test:quick").
	taskNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*(:[a-z][a-z0-9-]*)?$`)
)

// knownParsers are the test output parsers a task may reference.
var knownParsers = map[string]bool{
	"go":     true,
	"pytest": true,
	"cargo":  true,
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ExitCode classifies validation failures as configuration errors.
func (e *ValidationError) ExitCode() int {
	return errors.ExitConfigError
}

// Validate checks a configuration for errors and returns warnings for
// non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if err := ValidateProjectName(cfg.Project.Name); err != nil {
		return nil, err
	}

	if len(cfg.Tasks) == 0 {
		return nil, &ValidationError{Field: "tasks", Message: "at least one task is required"}
	}

	for name, task := range cfg.Tasks {
		if err := validateTask(cfg, name, task); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func validateTask(cfg *Config, name string, task TaskConfig) error {
	if !taskNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   fmt.Sprintf("tasks.%s", name),
			Message: "task name must match pattern ^[a-z][a-z0-9-]*$ (lowercase letters, digits, hyphens)",
		}
	}

	if !task.Disabled && len(task.Commands) == 0 && len(task.DependsOn) == 0 {
		return &ValidationError{
			Field:   fmt.Sprintf("tasks.%s", name),
			Message: "task must declare commands or depends_on (or be disabled)",
		}
	}

	for i, cmd := range task.Commands {
		if strings.TrimSpace(cmd) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("tasks.%s.commands[%d]", name, i),
				Message: "command must not be empty",
			}
		}
	}

	for _, dep := range task.DependsOn {
		if _, ok := cfg.Tasks[dep]; !ok {
			return &ValidationError{
				Field:   fmt.Sprintf("tasks.%s.depends_on", name),
				Message: fmt.Sprintf("references undefined task %q", dep),
			}
		}
	}

	if task.Parser != "" && !knownParsers[task.Parser] {
		return &ValidationError{
			Field:   fmt.Sprintf("tasks.%s.parser", name),
			Message: fmt.Sprintf("unknown parser %q (supported: cargo, go, pytest)", task.Parser),
		}
	}

	return nil
}

// ValidateProjectName checks if a project name is valid.
// Returns a ValidationError if the name is empty, too long (>128 chars),
// or doesn't match the required pattern.
func ValidateProjectName(name string) error {
	if name == "" {
		return &ValidationError{Field: "project.name", Message: "is required"}
	}
	if len(name) > 128 {
		return &ValidationError{Field: "project.name", Message: "must be 128 characters or less"}
	}
	if !projectNamePattern.MatchString(name) {
		return &ValidationError{
			Field:   "project.name",
			Message: "must match pattern ^[a-z][a-z0-9]*(-[a-z0-9]+)*$ (lowercase letters, digits, non-consecutive hyphens)",
		}
	}
	return nil
}
