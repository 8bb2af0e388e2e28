package verify

import (
	"fmt"

	"github.com/boshu2/skeptic/internal/evidence"
)

// criticalConfidence is the cutoff below which a failed check is treated
// as a critical finding rather than a warning.
const criticalConfidence = 0.2

// Verify runs every applicable check against the evidence, averages the
// confidences, and maps the result to a verdict. Any critical finding,
// including a passed honeypot, forces FAKE regardless of the mean.
func Verify(ev evidence.Evidence, exp evidence.Expectation) (*Verification, error) {
	return VerifyWith(ev, exp, DefaultChecks())
}

// VerifyWith is Verify with an explicit check set, for callers that tune
// the battery.
func VerifyWith(ev evidence.Evidence, exp evidence.Expectation, checks []Check) (*Verification, error) {
	v := &Verification{
		Case:     ev.Case,
		Evidence: ev,
	}

	total := 0.0
	applicable := 0
	forceFake := false

	for _, check := range checks {
		result := check(ev, exp)
		if result.Skipped {
			continue
		}
		v.Checks = append(v.Checks, result)
		total += result.Confidence
		applicable++

		if !result.Passed {
			severity := SeverityWarning
			if result.Confidence < criticalConfidence {
				severity = SeverityCritical
				forceFake = true
			}
			v.Findings = append(v.Findings, Finding{
				Severity: severity,
				Category: result.Name,
				Message:  result.Message,
				Case:     ev.Case,
			})
		}
	}

	if applicable == 0 {
		return nil, ErrNoChecks
	}

	v.Confidence = total / float64(applicable)
	v.Verdict = verdictFor(v.Confidence)
	if forceFake {
		v.Verdict = VerdictFake
	}

	return v, nil
}

// verdictFor maps a confidence to a verdict using the package thresholds.
func verdictFor(confidence float64) string {
	switch {
	case confidence >= RealThreshold:
		return VerdictReal
	case confidence >= SuspiciousThreshold:
		return VerdictSuspicious
	default:
		return VerdictFake
	}
}

// ClassifyHealth determines overall health from findings: any critical
// finding makes the whole run critical, any warning makes it warning,
// otherwise healthy.
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

// FormatChecksSummary produces a human-readable one-line-per-check summary.
func FormatChecksSummary(v *Verification) string {
	out := fmt.Sprintf("%s: %.2f (%s)\n", v.Case, v.Confidence, v.Verdict)
	for _, c := range v.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		out += fmt.Sprintf("  %-18s %.2f  [%s]  %s\n", c.Name, c.Confidence, status, c.Message)
	}
	return out
}
