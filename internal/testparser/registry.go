package testparser

import "strings"

// Registry maps parser identifiers (the "parser" field of a task) to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a new parser registry with all built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}

	r.parsers["go"] = &GoParser{}
	r.parsers["cargo"] = &CargoParser{}
	r.parsers["pytest"] = &PytestParser{}

	return r
}

// GetParser returns a parser for the given identifier, or nil if none exists.
func (r *Registry) GetParser(name string) Parser {
	return r.parsers[strings.ToLower(name)]
}

// RegisterParser adds a custom parser under the given identifier.
func (r *Registry) RegisterParser(name string, parser Parser) {
	r.parsers[strings.ToLower(name)] = parser
}
