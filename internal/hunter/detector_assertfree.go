package hunter

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	rePyTestDef    = regexp.MustCompile(`^\s*(async\s+)?def\s+(test_\w+)\s*\(`)
	reGoTestFunc   = regexp.MustCompile(`^func\s+(Test\w+)\s*\(`)
	rePyAssertion  = regexp.MustCompile(`\bassert\b|\bpytest\.raises\b|\.assert\w+\(`)
	reGoAssertion  = regexp.MustCompile(`\bt\.(Error|Errorf|Fatal|Fatalf|Fail)\b|\b(assert|require)\.\w+\(`)
	reDefBoundary  = regexp.MustCompile(`^\s*(async\s+)?def\s+\w+|^class\s+\w+`)
	reFuncBoundary = regexp.MustCompile(`^func\s+\w+|^}`)
)

// DetectAssertionFreeTests flags test functions whose bodies contain no
// assertion of any kind. A test that cannot fail proves nothing.
func DetectAssertionFreeTests(path string, lines []string) []Finding {
	if !isTestFile(path) {
		return nil
	}

	switch {
	case strings.HasSuffix(path, ".py"):
		return assertFree(path, lines, rePyTestDef, 2, rePyAssertion, reDefBoundary)
	case strings.HasSuffix(path, ".go"):
		return assertFree(path, lines, reGoTestFunc, 1, reGoAssertion, reFuncBoundary)
	default:
		return nil
	}
}

// assertFree scans for test definitions and checks each body, delimited by
// the next boundary match, for assertion tokens. A boundary more indented
// than the test's own def is a nested helper, not the end of the body.
func assertFree(path string, lines []string, def *regexp.Regexp, nameGroup int, assertion, boundary *regexp.Regexp) []Finding {
	var findings []Finding

	for i := 0; i < len(lines); i++ {
		m := def.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		name := m[nameGroup]
		defIndent := indentWidth(lines[i])

		hasAssert := false
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if boundary.MatchString(lines[j]) && indentWidth(lines[j]) <= defIndent {
				end = j
				break
			}
			if assertion.MatchString(lines[j]) {
				hasAssert = true
			}
		}

		if !hasAssert {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Category: "assertion-free-test",
				Message:  fmt.Sprintf("test %s contains no assertions", name),
				File:     path,
				Line:     i + 1,
			})
		}
		i = end - 1
	}

	return findings
}

// indentWidth counts leading whitespace, with tabs weighted as four columns.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
