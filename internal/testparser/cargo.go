package testparser

import (
	"regexp"
	"strconv"
)

// Static regex for Cargo test output parsing.
var cargoResultRegex = regexp.MustCompile(`test result: \w+\.\s*(\d+) passed;\s*(\d+) failed;\s*(\d+) ignored`)

// CargoParser parses Rust/Cargo test output.
type CargoParser struct{}

// Name returns the parser name.
func (p *CargoParser) Name() string {
	return "cargo"
}

// Parse extracts test counts from Cargo test output.
// Cargo prints a summary line per test binary:
//
//	test result: ok. 47 passed; 0 failed; 3 ignored; 0 measured; 0 filtered out; finished in 0.12s
//	test result: FAILED. 45 passed; 2 failed; 3 ignored; 0 measured; 0 filtered out; finished in 0.12s
func (p *CargoParser) Parse(output string) TestCounts {
	counts := TestCounts{}

	matches := cargoResultRegex.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return counts
	}

	// Aggregate all summary lines (one per test binary).
	for _, match := range matches {
		if len(match) >= 4 {
			passed, _ := strconv.Atoi(match[1])
			failed, _ := strconv.Atoi(match[2])
			ignored, _ := strconv.Atoi(match[3])

			counts.Passed += passed
			counts.Failed += failed
			counts.Skipped += ignored
		}
	}

	counts.Total = counts.Passed + counts.Failed + counts.Skipped
	counts.Parsed = true

	return counts
}
