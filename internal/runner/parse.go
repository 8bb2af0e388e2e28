package runner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/boshu2/skeptic/internal/evidence"
)

// pytest summary tokens, e.g. "3 passed, 1 failed, 2 skipped in 1.24s".
var (
	rePytestPassed  = regexp.MustCompile(`(\d+) passed`)
	rePytestFailed  = regexp.MustCompile(`(\d+) failed`)
	rePytestSkipped = regexp.MustCompile(`(\d+) skipped`)
	rePytestErrors  = regexp.MustCompile(`(\d+) errors?`)
	rePytestSummary = regexp.MustCompile(`(?m)^=+.*(passed|failed|skipped|error|no tests ran).*=+\s*$`)
	rePytestNoTests = regexp.MustCompile(`no tests ran`)
)

// go test tokens. Verbose runs expose per-test lines; quiet runs only
// expose per-package ok/FAIL lines, which we fall back to.
var (
	reGoTestPass    = regexp.MustCompile(`(?m)^--- PASS: `)
	reGoTestFail    = regexp.MustCompile(`(?m)^--- FAIL: `)
	reGoTestSkip    = regexp.MustCompile(`(?m)^--- SKIP: `)
	reGoPackageOK   = regexp.MustCompile(`(?m)^ok\s+\S+`)
	reGoPackageFail = regexp.MustCompile(`(?m)^FAIL\s+\S+`)
)

// ParseOutput scrapes pass/fail/skip counts from runner output. The second
// return value reports whether the output was recognized at all; counts are
// only meaningful when it is true.
func ParseOutput(kind, stdout string) (evidence.Counts, bool) {
	switch NormalizeKind(kind) {
	case KindPytest:
		return parsePytest(stdout)
	case KindGotest:
		return parseGoTest(stdout)
	default:
		// Raw commands get a best-effort pytest-style scrape: many of
		// the scripts under verification print that summary format.
		if counts, ok := parsePytest(stdout); ok {
			return counts, true
		}
		return parseGoTest(stdout)
	}
}

// parsePytest scrapes the pytest terminal summary.
func parsePytest(stdout string) (evidence.Counts, bool) {
	if !rePytestSummary.MatchString(stdout) {
		return evidence.Counts{}, false
	}

	// "no tests ran" is a recognized summary with zero counts.
	if rePytestNoTests.MatchString(stdout) {
		return evidence.Counts{}, true
	}

	counts := evidence.Counts{
		Passed:  lastCount(rePytestPassed, stdout),
		Failed:  lastCount(rePytestFailed, stdout),
		Skipped: lastCount(rePytestSkipped, stdout),
		Errors:  lastCount(rePytestErrors, stdout),
	}
	return counts, true
}

// parseGoTest scrapes go test output, preferring per-test result lines and
// falling back to per-package lines when the run was not verbose.
func parseGoTest(stdout string) (evidence.Counts, bool) {
	counts := evidence.Counts{
		Passed:  len(reGoTestPass.FindAllString(stdout, -1)),
		Failed:  len(reGoTestFail.FindAllString(stdout, -1)),
		Skipped: len(reGoTestSkip.FindAllString(stdout, -1)),
	}
	if counts.Total() > 0 {
		return counts, true
	}

	okPkgs := len(reGoPackageOK.FindAllString(stdout, -1))
	failPkgs := len(reGoPackageFail.FindAllString(stdout, -1))
	if okPkgs+failPkgs == 0 {
		return evidence.Counts{}, false
	}
	return evidence.Counts{Passed: okPkgs, Failed: failPkgs}, true
}

// lastCount returns the integer from the last match of re, or 0. pytest
// repeats count tokens in progress lines; the summary line comes last.
func lastCount(re *regexp.Regexp, s string) int {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(matches[len(matches)-1][1]))
	if err != nil {
		return 0
	}
	return n
}
