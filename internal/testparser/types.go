// Package testparser provides test output parsing for various test frameworks.
package testparser

// FailedTest holds information about a single failed test.
type FailedTest struct {
	Name   string // Test name (e.g., "TestFoo/subtest")
	Reason string // Failure reason/error message
}

// TestCounts holds parsed test result counts.
type TestCounts struct {
	Passed      int
	Failed      int
	Skipped     int
	Total       int
	Parsed      bool         // true if counts were successfully extracted
	FailedTests []FailedTest // details of failed tests

	Coverage    float64 // statement coverage percentage
	HasCoverage bool    // true if a coverage figure was found in the output
}

// Add aggregates another TestCounts into this one. The Parsed flag is sticky:
// if any added TestCounts has Parsed=true, the aggregate does too. When both
// sides carry coverage, the larger figure wins (multiple packages report
// separately and the summary keeps the most complete one).
func (tc *TestCounts) Add(other *TestCounts) {
	if other == nil {
		return
	}
	tc.Passed += other.Passed
	tc.Failed += other.Failed
	tc.Skipped += other.Skipped
	tc.Total += other.Total
	tc.FailedTests = append(tc.FailedTests, other.FailedTests...)
	if other.Parsed {
		tc.Parsed = true
	}
	if other.HasCoverage && (!tc.HasCoverage || other.Coverage > tc.Coverage) {
		tc.Coverage = other.Coverage
		tc.HasCoverage = true
	}
}

// Parser defines the interface for test output parsers.
type Parser interface {
	// Parse extracts test counts from the test framework output.
	Parse(output string) TestCounts
	// Name returns the name of the parser.
	Name() string
}
