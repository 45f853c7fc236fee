package testparser

import (
	"regexp"
	"strconv"
	"strings"
)

// Static regexes for Go test output parsing.
var (
	goPassRegex     = regexp.MustCompile(`(?m)^---\s+PASS:\s+`)
	goFailRegex     = regexp.MustCompile(`(?m)^---\s+FAIL:\s+(\S+)`)
	goSkipRegex     = regexp.MustCompile(`(?m)^---\s+SKIP:\s+`)
	goErrorLine     = regexp.MustCompile(`^\s+\S+\.go:\d+:`)
	goCoverageRegex = regexp.MustCompile(`coverage:\s+([0-9.]+)%\s+of\s+statements`)
)

// GoParser parses Go test output.
type GoParser struct{}

// Name returns the parser name.
func (p *GoParser) Name() string {
	return "go"
}

// Parse extracts test counts from Go test output.
// Go test outputs lines like:
//
//	--- PASS: TestFoo (0.00s)
//	--- FAIL: TestBar (0.01s)
//	--- SKIP: TestBaz (0.00s)
//	coverage: 81.2% of statements
func (p *GoParser) Parse(output string) TestCounts {
	counts := TestCounts{}

	counts.Passed = len(goPassRegex.FindAllString(output, -1))
	counts.Skipped = len(goSkipRegex.FindAllString(output, -1))

	failMatches := goFailRegex.FindAllStringSubmatch(output, -1)
	counts.Failed = len(failMatches)

	if counts.Failed > 0 {
		counts.FailedTests = p.extractFailedTests(output, failMatches)
	}

	p.parseCoverage(output, &counts)

	if counts.Passed > 0 || counts.Failed > 0 || counts.Skipped > 0 {
		counts.Parsed = true
		counts.Total = counts.Passed + counts.Failed + counts.Skipped
	}

	return counts
}

// parseCoverage extracts the coverage percentage. When several packages
// report coverage, the highest figure is kept.
func (p *GoParser) parseCoverage(output string, counts *TestCounts) {
	for _, match := range goCoverageRegex.FindAllStringSubmatch(output, -1) {
		pct, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		if !counts.HasCoverage || pct > counts.Coverage {
			counts.Coverage = pct
			counts.HasCoverage = true
		}
	}
}

// extractFailedTests extracts failure details for each failed test.
func (p *GoParser) extractFailedTests(output string, failMatches [][]string) []FailedTest {
	var failedTests []FailedTest
	lines := strings.Split(output, "\n")

	for _, match := range failMatches {
		if len(match) < 2 {
			continue
		}
		testName := match[1]
		failedTests = append(failedTests, FailedTest{
			Name:   testName,
			Reason: p.findFailureReason(lines, testName),
		})
	}

	return failedTests
}

var goFailLineRegex = regexp.MustCompile(`^---\s+FAIL:\s+(\S+)\s+`)

// isTestBoundary returns true if the line starts a test run or reports a
// result for a different test.
func isTestBoundary(line string) bool {
	return strings.HasPrefix(line, "=== RUN") ||
		strings.HasPrefix(line, "--- PASS:") ||
		strings.HasPrefix(line, "--- FAIL:") ||
		strings.HasPrefix(line, "--- SKIP:")
}

// findFailureReason searches for the failure reason for a given test.
// Go test output format:
//
//	=== RUN   TestFoo
//	    file_test.go:15: expected X, got Y
//	--- FAIL: TestFoo (0.00s)
func (p *GoParser) findFailureReason(lines []string, testName string) string {
	failLineIdx := -1
	for i, line := range lines {
		match := goFailLineRegex.FindStringSubmatch(line)
		if match != nil && match[1] == testName {
			failLineIdx = i
			break
		}
	}
	if failLineIdx == -1 {
		return ""
	}

	var reasons []string
	for i := failLineIdx - 1; i >= 0; i-- {
		line := lines[i]
		if isTestBoundary(line) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if goErrorLine.MatchString(line) && trimmed != "" {
			reasons = append([]string{trimmed}, reasons...)
		}
	}
	if len(reasons) == 0 {
		return ""
	}

	reason := reasons[0]
	// Keep just the message after the file:line: prefix.
	if idx := strings.Index(reason, ".go:"); idx != -1 {
		afterFile := reason[idx+4:]
		if colonIdx := strings.Index(afterFile, ": "); colonIdx != -1 {
			reason = strings.TrimSpace(afterFile[colonIdx+2:])
		}
	}

	const maxLen = 80
	if len(reason) > maxLen {
		reason = reason[:maxLen-3] + "..."
	}

	return reason
}
