// Package topsort provides topological sorting with cycle detection for the
// task dependency graph.
package topsort

import (
	"fmt"
	"sort"
	"strings"
)

// Graph represents a directed dependency graph. Keys are node names, values
// are the node's prerequisites (edges point at dependencies).
type Graph map[string][]string

// Sort returns nodes in dependency order: prerequisites appear before their
// dependents. Returns an error on cycles or undefined prerequisites.
//
// The nodes parameter selects which nodes (plus their transitive
// prerequisites) to include. If nil, every node in the graph is sorted, in
// name order for determinism.
func Sort(g Graph, nodes []string) ([]string, error) {
	if nodes == nil {
		nodes = make([]string, 0, len(g))
		for name := range g {
			nodes = append(nodes, name)
		}
		sort.Strings(nodes)
	}

	var result []string
	visited := make(map[string]bool)
	var stack []string
	inStack := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if inStack[name] {
			return cycleError(append(stack, name))
		}
		if visited[name] {
			return nil
		}

		deps, exists := g[name]
		if !exists {
			return fmt.Errorf("node %q not found in graph", name)
		}

		stack = append(stack, name)
		inStack[name] = true

		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		inStack[name] = false
		visited[name] = true
		result = append(result, name)

		return nil
	}

	for _, name := range nodes {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Validate checks the graph for self-references, undefined prerequisites,
// and cycles. Returns nil if the graph is valid.
func Validate(g Graph) error {
	for name, deps := range g {
		for _, dep := range deps {
			if dep == name {
				return fmt.Errorf("%q depends on itself", name)
			}
			if _, ok := g[dep]; !ok {
				return fmt.Errorf("%q depends on undefined task %q", name, dep)
			}
		}
	}

	_, err := Sort(g, nil)
	return err
}

// cycleError formats a cycle as the path that closed it, trimmed to start at
// the repeated node so the loop reads naturally (a -> b -> a).
func cycleError(path []string) error {
	last := path[len(path)-1]
	for i, name := range path {
		if name == last && i < len(path)-1 {
			path = path[i:]
			break
		}
	}
	return fmt.Errorf("circular dependency: %s", strings.Join(path, " -> "))
}
