package verify

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/boshu2/skeptic/internal/evidence"
)

// DefaultDurationFloor is the shortest believable duration for a run that
// claims to have executed at least one test. Real test processes pay
// interpreter startup and collection costs; anything faster was faked.
const DefaultDurationFloor = 10 * time.Millisecond

// DefaultChecks returns the built-in check set in execution order.
func DefaultChecks() []Check {
	return []Check{
		CheckDurationFloor,
		CheckDurationCeiling,
		CheckParsed,
		CheckCounts,
		CheckRequiredOutput,
		CheckForbiddenOutput,
		CheckHoneypot,
		CheckExpectFail,
	}
}

// CheckDurationFloor flags runs that finished implausibly fast.
func CheckDurationFloor(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	floor := exp.MinDuration
	if floor == 0 {
		floor = DefaultDurationFloor
	}

	if ev.Duration < floor {
		return CheckResult{
			Name:       "duration-floor",
			Confidence: 0.1,
			Passed:     false,
			Message:    fmt.Sprintf("finished in %s, below believable floor %s", ev.Duration, floor),
		}
	}
	return CheckResult{
		Name:       "duration-floor",
		Confidence: 1.0,
		Passed:     true,
		Message:    fmt.Sprintf("duration %s clears floor %s", ev.Duration, floor),
	}
}

// CheckDurationCeiling flags runs that exceeded the declared maximum.
func CheckDurationCeiling(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	if exp.MaxDuration == 0 {
		return CheckResult{Name: "duration-ceiling", Skipped: true}
	}

	if ev.TimedOut || ev.Duration > exp.MaxDuration {
		return CheckResult{
			Name:       "duration-ceiling",
			Confidence: 0.3,
			Passed:     false,
			Message:    fmt.Sprintf("took %s, over ceiling %s", ev.Duration, exp.MaxDuration),
		}
	}
	return CheckResult{
		Name:       "duration-ceiling",
		Confidence: 1.0,
		Passed:     true,
		Message:    fmt.Sprintf("duration %s within ceiling %s", ev.Duration, exp.MaxDuration),
	}
}

// CheckParsed penalizes output that no parser recognized. Unparseable
// output is not proof of fabrication, but it removes the count evidence
// every other claim rests on.
func CheckParsed(ev evidence.Evidence, _ evidence.Expectation) CheckResult {
	if !ev.Parsed {
		return CheckResult{
			Name:       "output-parsed",
			Confidence: 0.4,
			Passed:     false,
			Message:    "runner output not recognized by any parser",
		}
	}
	return CheckResult{
		Name:       "output-parsed",
		Confidence: 1.0,
		Passed:     true,
		Message:    "runner output parsed",
	}
}

// CheckCounts cross-examines the scraped counts against the exit code.
// An exit code that contradicts the reported totals is the classic sign
// of a harness printing a summary it never earned.
func CheckCounts(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	if !ev.Parsed {
		return CheckResult{Name: "count-consistency", Skipped: true}
	}

	total := ev.Counts.Total()
	failures := ev.Counts.Failed + ev.Counts.Errors

	switch {
	case ev.ExitCode == 0 && failures > 0:
		return CheckResult{
			Name:       "count-consistency",
			Confidence: 0.0,
			Passed:     false,
			Message:    fmt.Sprintf("exit 0 but output reports %d failures", failures),
		}
	case ev.ExitCode != 0 && failures == 0 && !exp.ExpectFail && !exp.Honeypot:
		return CheckResult{
			Name:       "count-consistency",
			Confidence: 0.2,
			Passed:     false,
			Message:    fmt.Sprintf("exit %d but output reports no failures", ev.ExitCode),
		}
	case total == 0:
		return CheckResult{
			Name:       "count-consistency",
			Confidence: 0.2,
			Passed:     false,
			Message:    "output reports zero tests",
		}
	case exp.MinTests > 0 && total < exp.MinTests:
		return CheckResult{
			Name:       "count-consistency",
			Confidence: 0.3,
			Passed:     false,
			Message:    fmt.Sprintf("only %d tests reported, expected at least %d", total, exp.MinTests),
		}
	}

	return CheckResult{
		Name:       "count-consistency",
		Confidence: 1.0,
		Passed:     true,
		Message:    fmt.Sprintf("%d tests, exit code consistent", total),
	}
}

// CheckRequiredOutput verifies that every required substring appears in
// stdout. Partial credit is proportional to how many were found.
func CheckRequiredOutput(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	if len(exp.RequireOutput) == 0 {
		return CheckResult{Name: "required-output", Skipped: true}
	}

	var missing []string
	for _, want := range exp.RequireOutput {
		if !strings.Contains(ev.Stdout, want) {
			missing = append(missing, want)
		}
	}

	if len(missing) == 0 {
		return CheckResult{
			Name:       "required-output",
			Confidence: 1.0,
			Passed:     true,
			Message:    fmt.Sprintf("all %d required markers present", len(exp.RequireOutput)),
		}
	}

	found := len(exp.RequireOutput) - len(missing)
	return CheckResult{
		Name:       "required-output",
		Confidence: float64(found) / float64(len(exp.RequireOutput)),
		Passed:     false,
		Message:    fmt.Sprintf("missing required output: %s", strings.Join(missing, ", ")),
	}
}

// CheckForbiddenOutput matches stdout against forbidden patterns. Any hit
// zeroes confidence: these patterns exist to catch mock leakage and
// fabrication markers.
func CheckForbiddenOutput(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	if len(exp.ForbidOutput) == 0 {
		return CheckResult{Name: "forbidden-output", Skipped: true}
	}

	for _, pattern := range exp.ForbidOutput {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return CheckResult{
				Name:       "forbidden-output",
				Confidence: 0.5,
				Passed:     false,
				Message:    fmt.Sprintf("%v: %q", ErrBadForbidPattern, pattern),
			}
		}
		if re.MatchString(ev.Stdout) {
			return CheckResult{
				Name:       "forbidden-output",
				Confidence: 0.0,
				Passed:     false,
				Message:    fmt.Sprintf("forbidden pattern %q matched output", pattern),
			}
		}
	}

	return CheckResult{
		Name:       "forbidden-output",
		Confidence: 1.0,
		Passed:     true,
		Message:    fmt.Sprintf("no forbidden patterns (%d checked)", len(exp.ForbidOutput)),
	}
}

// CheckHoneypot verifies that a honeypot case failed as designed. A
// honeypot that passes means the harness under test fabricates results.
func CheckHoneypot(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	if !exp.Honeypot {
		return CheckResult{Name: "honeypot", Skipped: true}
	}

	passed := honeypotPassed(ev)
	if passed {
		return CheckResult{
			Name:       "honeypot",
			Confidence: 0.0,
			Passed:     false,
			Message:    "honeypot PASSED: harness is fabricating results",
		}
	}
	return CheckResult{
		Name:       "honeypot",
		Confidence: 1.0,
		Passed:     true,
		Message:    "honeypot failed as designed",
	}
}

// honeypotPassed reports whether the evidence claims the honeypot succeeded.
func honeypotPassed(ev evidence.Evidence) bool {
	if ev.Parsed {
		return ev.Counts.Failed == 0 && ev.Counts.Errors == 0
	}
	return ev.ExitCode == 0
}

// CheckExpectFail verifies that a case declared expect_fail actually failed.
func CheckExpectFail(ev evidence.Evidence, exp evidence.Expectation) CheckResult {
	if !exp.ExpectFail || exp.Honeypot {
		return CheckResult{Name: "expect-fail", Skipped: true}
	}

	if ev.ExitCode == 0 {
		return CheckResult{
			Name:       "expect-fail",
			Confidence: 0.1,
			Passed:     false,
			Message:    "expected failure but exit code was 0",
		}
	}
	return CheckResult{
		Name:       "expect-fail",
		Confidence: 1.0,
		Passed:     true,
		Message:    fmt.Sprintf("failed as expected (exit %d)", ev.ExitCode),
	}
}
