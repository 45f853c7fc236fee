package project

import (
	"os"
	"path/filepath"
	"strings"
)

// ToolchainMarker defines a file pattern and its associated toolchain.
type ToolchainMarker struct {
	Pattern   string
	Toolchain string
}

// toolchainMarkers defines the auto-detection order for toolchains.
// First match wins; lockfiles take precedence over generic manifests.
var toolchainMarkers = []ToolchainMarker{
	{"Cargo.toml", "cargo"},
	{"go.mod", "go"},
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"package.json", "npm"},
	{"uv.lock", "uv"},
	{"poetry.lock", "poetry"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"Makefile", "make"},
}

// DetectToolchain attempts to auto-detect the toolchain for a directory.
func DetectToolchain(dir string) (string, bool) {
	for _, marker := range toolchainMarkers {
		if strings.Contains(marker.Pattern, "*") {
			matches, err := filepath.Glob(filepath.Join(dir, marker.Pattern))
			if err == nil && len(matches) > 0 {
				return marker.Toolchain, true
			}
		} else {
			path := filepath.Join(dir, marker.Pattern)
			if _, err := os.Stat(path); err == nil {
				return marker.Toolchain, true
			}
		}
	}
	return "", false
}
