package task

import (
	"sort"

	"github.com/relay-build/relay/internal/config"
	relayerrors "github.com/relay-build/relay/internal/errors"
	"github.com/relay-build/relay/internal/topsort"
)

// Registry manages the set of configured tasks.
type Registry struct {
	tasks map[string]Task
}

// NewRegistry creates a registry from configuration.
// Returns an error if the dependency graph has undefined references or cycles.
func NewRegistry(cfg *config.Config, rootDir string) (*Registry, error) {
	r := &Registry{
		tasks: make(map[string]Task, len(cfg.Tasks)),
	}

	for name, taskCfg := range cfg.Tasks {
		r.tasks[name] = NewTask(name, taskCfg, cfg, rootDir)
	}

	if err := topsort.Validate(r.buildGraph()); err != nil {
		return nil, &relayerrors.RelayError{
			Kind:    relayerrors.KindConfig,
			Message: err.Error(),
			Cause:   err,
		}
	}

	return r, nil
}

// Get retrieves a task by name.
func (r *Registry) Get(name string) (Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// All returns all tasks sorted by name.
func (r *Registry) All() []Task {
	tasks := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Name() < tasks[j].Name()
	})
	return tasks
}

// Names returns all task names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildGraph creates a topsort.Graph from the registry.
func (r *Registry) buildGraph() topsort.Graph {
	g := make(topsort.Graph, len(r.tasks))
	for name, t := range r.tasks {
		g[name] = t.DependsOn()
	}
	return g
}

// ChainFor returns the named task and its transitive prerequisites in
// dependency order.
func (r *Registry) ChainFor(name string) ([]Task, error) {
	if _, ok := r.tasks[name]; !ok {
		return nil, relayerrors.NotFound("task", name)
	}

	sortedNames, err := topsort.Sort(r.buildGraph(), []string{name})
	if err != nil {
		return nil, err
	}

	result := make([]Task, len(sortedNames))
	for i, n := range sortedNames {
		result[i] = r.tasks[n]
	}
	return result, nil
}

// TopologicalOrder returns all tasks in dependency order.
func (r *Registry) TopologicalOrder() ([]Task, error) {
	sortedNames, err := topsort.Sort(r.buildGraph(), r.Names())
	if err != nil {
		return nil, err
	}

	result := make([]Task, len(sortedNames))
	for i, name := range sortedNames {
		result[i] = r.tasks[name]
	}
	return result, nil
}
