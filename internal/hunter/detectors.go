package hunter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Detectors returns the built-in detector set.
func Detectors() []Detector {
	return []Detector{
		DetectMockAbuse,
		DetectTrivialAssert,
		DetectSleepSimulation,
		DetectHardcodedSuccess,
		DetectAssertionFreeTests,
	}
}

// RunDetectors applies all detectors to one file.
func RunDetectors(path string, content string) []Finding {
	lines := strings.Split(content, "\n")
	var findings []Finding
	for _, d := range Detectors() {
		findings = append(findings, d(path, lines)...)
	}
	return findings
}

// ClassifyHealth determines overall health: any critical finding is
// critical, any warning is warning, otherwise healthy.
func ClassifyHealth(findings []Finding) string {
	hasCritical := false
	hasWarning := false
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			hasCritical = true
		case SeverityWarning:
			hasWarning = true
		}
	}
	if hasCritical {
		return HealthCritical
	}
	if hasWarning {
		return HealthWarning
	}
	return HealthHealthy
}

// mockPatterns match mock machinery that has no business outside test files.
var mockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bMagicMock\b`),
	regexp.MustCompile(`\bunittest\.mock\b`),
	regexp.MustCompile(`from\s+unittest\s+import\s+mock`),
	regexp.MustCompile(`@patch\(`),
	regexp.MustCompile(`\bmonkeypatch\b`),
	regexp.MustCompile(`\bgomock\b`),
}

// DetectMockAbuse flags mock usage in non-test files. Mocks inside a test
// file are legitimate; mocks inside the code under test mean the "system"
// is a stand-in.
func DetectMockAbuse(path string, lines []string) []Finding {
	if isTestFile(path) {
		return nil
	}

	var findings []Finding
	for i, line := range lines {
		for _, p := range mockPatterns {
			if p.MatchString(line) {
				findings = append(findings, Finding{
					Severity: SeverityCritical,
					Category: "mock-abuse",
					Message:  fmt.Sprintf("mock machinery in non-test file: %s", strings.TrimSpace(line)),
					File:     path,
					Line:     i + 1,
				})
				break
			}
		}
	}
	return findings
}

// trivialAssertPatterns match assertions that can never fail.
var trivialAssertPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*assert\s+True\b`),
	regexp.MustCompile(`assertTrue\(\s*True\s*\)`),
	regexp.MustCompile(`^\s*assert\s+1\s*==\s*1\b`),
	regexp.MustCompile(`require\.True\(\s*t\s*,\s*true\s*\)`),
	regexp.MustCompile(`assert\.True\(\s*t\s*,\s*true\s*\)`),
}

// DetectTrivialAssert flags assertions that are satisfied by construction.
func DetectTrivialAssert(path string, lines []string) []Finding {
	var findings []Finding
	for i, line := range lines {
		for _, p := range trivialAssertPatterns {
			if p.MatchString(line) {
				findings = append(findings, Finding{
					Severity: SeverityCritical,
					Category: "trivial-assert",
					Message:  fmt.Sprintf("assertion cannot fail: %s", strings.TrimSpace(line)),
					File:     path,
					Line:     i + 1,
				})
				break
			}
		}
	}
	return findings
}

// sleepPatterns match work being simulated rather than performed.
var sleepPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btime\.sleep\(`),
	regexp.MustCompile(`\basyncio\.sleep\(`),
	regexp.MustCompile(`\brandom\.(random|uniform|randint)\(`),
}

// DetectSleepSimulation flags sleep/random calls in non-test files, the
// signature of demo classes pretending to do work.
func DetectSleepSimulation(path string, lines []string) []Finding {
	if isTestFile(path) {
		return nil
	}

	var findings []Finding
	for i, line := range lines {
		for _, p := range sleepPatterns {
			if p.MatchString(line) {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Category: "sleep-simulation",
					Message:  fmt.Sprintf("simulated work: %s", strings.TrimSpace(line)),
					File:     path,
					Line:     i + 1,
				})
				break
			}
		}
	}
	return findings
}

// hardcodedSuccessPattern matches success banners printed unconditionally
// rather than derived from a runner.
var hardcodedSuccessPattern = regexp.MustCompile(
	`(?i)(print|println|puts|echo|fmt\.Print\w*)\s*[\(\s].*("|')[^"']*(all tests passed|tests? pass(ed)?|verification (passed|successful)|100% pass)`,
)

// DetectHardcodedSuccess flags success messages printed as string literals
// in non-test files.
func DetectHardcodedSuccess(path string, lines []string) []Finding {
	if isTestFile(path) {
		return nil
	}

	var findings []Finding
	for i, line := range lines {
		if hardcodedSuccessPattern.MatchString(line) {
			findings = append(findings, Finding{
				Severity: SeverityCritical,
				Category: "hardcoded-success",
				Message:  fmt.Sprintf("success banner is a string literal: %s", strings.TrimSpace(line)),
				File:     path,
				Line:     i + 1,
			})
		}
	}
	return findings
}

// isTestFile reports whether a path is a test file by common conventions.
func isTestFile(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "_test.go"):
		return true
	case strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py"):
		return true
	case strings.HasSuffix(base, "_test.py"):
		return true
	case strings.HasSuffix(base, "conftest.py"):
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "tests" || part == "test" {
			return true
		}
	}
	return false
}
