package verify

// SuiteResult aggregates per-case verifications into a suite-level rating.
type SuiteResult struct {
	// Score is 0-100, the mean case confidence scaled.
	Score float64 `json:"score"`

	// Grade is the letter grade for Score (A-F).
	Grade string `json:"grade"`

	// Health is critical/warning/healthy across all findings.
	Health string `json:"health"`

	// Verdicts counts cases by verdict.
	Verdicts map[string]int `json:"verdicts"`

	// Cases holds the individual verifications in suite order.
	Cases []*Verification `json:"cases"`
}

// Summarize folds case verifications into a SuiteResult.
//
// Grade thresholds mirror the corpus rating scale:
//   - A: 80-100
//   - B: 60-79
//   - C: 40-59
//   - D: 20-39
//   - F: 0-19
func Summarize(cases []*Verification) *SuiteResult {
	result := &SuiteResult{
		Verdicts: make(map[string]int),
		Cases:    cases,
	}

	if len(cases) == 0 {
		result.Grade = "F"
		result.Health = HealthHealthy
		return result
	}

	total := 0.0
	var findings []Finding
	for _, v := range cases {
		total += v.Confidence
		result.Verdicts[v.Verdict]++
		findings = append(findings, v.Findings...)
	}

	result.Score = total / float64(len(cases)) * 100
	result.Grade = scoreToGrade(result.Score)
	result.Health = ClassifyHealth(findings)

	// Any fabricated case poisons the whole suite.
	if result.Verdicts[VerdictFake] > 0 {
		result.Grade = "F"
		result.Health = HealthCritical
	}

	return result
}

// Findings returns all case findings flattened in suite order.
func (r *SuiteResult) Findings() []Finding {
	var findings []Finding
	for _, v := range r.Cases {
		findings = append(findings, v.Findings...)
	}
	return findings
}

// scoreToGrade converts a 0-100 score to a letter grade.
func scoreToGrade(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "F"
	}
}
