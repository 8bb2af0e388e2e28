// Package verify implements the skeptical verification engine: a set of
// heuristic checks against test-run evidence, each producing a confidence
// in [0,1], averaged into an overall confidence and mapped to a verdict.
package verify

import "github.com/boshu2/skeptic/internal/evidence"

// Verdict values, ordered from most to least trustworthy.
const (
	VerdictReal       = "REAL"
	VerdictSuspicious = "SUSPICIOUS"
	VerdictFake       = "FAKE"
)

// Confidence thresholds for verdict mapping.
const (
	RealThreshold       = 0.80
	SuspiciousThreshold = 0.50
)

// Severity constants for findings.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Health classification constants.
const (
	HealthCritical = "critical"
	HealthWarning  = "warning"
	HealthHealthy  = "healthy"
)

// CheckResult is the outcome of a single skeptical check.
type CheckResult struct {
	// Name identifies the check (e.g. "duration-floor", "honeypot").
	Name string `json:"name"`

	// Confidence is this check's belief that the evidence is genuine.
	Confidence float64 `json:"confidence"`

	// Passed indicates the check found nothing suspicious.
	Passed bool `json:"passed"`

	// Message explains the outcome in one line.
	Message string `json:"message"`

	// Skipped means the check did not apply to this evidence.
	Skipped bool `json:"skipped,omitempty"`
}

// Finding is a single observation surfaced during verification.
type Finding struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Case     string `json:"case,omitempty"`
}

// Verification is the full result of skeptically verifying one case.
type Verification struct {
	// Case is the scenario case name.
	Case string `json:"case"`

	// Confidence is the arithmetic mean of all applicable check confidences.
	Confidence float64 `json:"confidence"`

	// Verdict is REAL, SUSPICIOUS, or FAKE.
	Verdict string `json:"verdict"`

	// Checks holds the individual check results, in execution order.
	Checks []CheckResult `json:"checks"`

	// Findings holds critical/warning observations.
	Findings []Finding `json:"findings,omitempty"`

	// Evidence is the raw evidence this verification was computed from.
	Evidence evidence.Evidence `json:"evidence"`
}

// Check inspects evidence against an expectation and reports a confidence.
// A check may mark itself Skipped when the expectation does not enable it.
type Check func(ev evidence.Evidence, exp evidence.Expectation) CheckResult
