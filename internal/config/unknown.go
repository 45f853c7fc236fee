package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// LoadWithWarnings parses config data and returns any unknown field warnings.
func LoadWithWarnings(data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// detectUnknownFields compares raw JSON with known struct fields.
// Note: since this is called after successful Config parsing, a parse failure
// here would indicate an unexpected internal inconsistency.
func detectUnknownFields(data []byte) []string {
	var warnings []string

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Should never happen since the data was already parsed successfully.
		// Return a warning so the condition is visible rather than silently ignored.
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	knownTopLevel := getJSONFields(reflect.TypeOf(Config{}))
	for key := range raw {
		if key == "$schema" {
			continue // $schema is explicitly allowed and ignored
		}
		if !knownTopLevel[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
		}
	}

	if tasksRaw, ok := raw["tasks"]; ok {
		warnings = append(warnings, checkTasksUnknownFields(tasksRaw)...)
	}

	return warnings
}

// checkTasksUnknownFields detects unknown fields inside each task definition.
func checkTasksUnknownFields(tasksRaw json.RawMessage) []string {
	var warnings []string

	var tasks map[string]map[string]json.RawMessage
	if err := json.Unmarshal(tasksRaw, &tasks); err != nil {
		return nil
	}

	knownTaskFields := getJSONFields(reflect.TypeOf(TaskConfig{}))
	for taskName, fields := range tasks {
		for key := range fields {
			if !knownTaskFields[key] {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in tasks.%s (ignored)", key, taskName))
			}
		}
	}

	return warnings
}

// getJSONFields returns the set of JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = true
		}
	}
	return fields
}
