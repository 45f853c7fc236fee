package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/relay-build/relay/internal/config"
)

// Project represents a loaded relay project.
type Project struct {
	Root     string
	Config   *config.Config
	Warnings []string
}

// LoadProject finds and loads a project from the current directory.
func LoadProject() (*Project, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadProjectFrom(root)
}

// LoadProjectFrom loads a project from a specified root directory.
func LoadProjectFrom(root string) (*Project, error) {
	configPath := filepath.Join(root, ConfigDirName, ConfigFileName)

	cfg, warnings, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate task working directories exist
	for name, task := range cfg.Tasks {
		if task.Cwd == "" {
			continue
		}
		if err := validateTaskDirectory(filepath.Join(root, task.Cwd), name); err != nil {
			return nil, err
		}
	}

	return &Project{
		Root:     root,
		Config:   cfg,
		Warnings: warnings,
	}, nil
}

// ConfigPath returns the full path to the project configuration file.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.Root, ConfigDirName, ConfigFileName)
}

// TaskDirectory returns the absolute working directory for a task.
// Tasks without an explicit cwd run at the project root.
func (p *Project) TaskDirectory(name string) (string, error) {
	task, ok := p.Config.Tasks[name]
	if !ok {
		return "", fmt.Errorf("task %q not found", name)
	}
	if task.Cwd == "" {
		return p.Root, nil
	}
	return filepath.Join(p.Root, task.Cwd), nil
}

// validateTaskDirectory checks that a task's working directory exists.
func validateTaskDirectory(dir string, taskName string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("task %q: directory %q does not exist", taskName, dir)
	}
	if err != nil {
		return fmt.Errorf("task %q: cannot access directory %q: %w", taskName, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("task %q: %q is not a directory", taskName, dir)
	}
	return nil
}
