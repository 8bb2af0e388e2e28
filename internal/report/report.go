// Package report renders verification results for humans and machines.
package report

import (
	"io"
	"time"

	"github.com/boshu2/skeptic/internal/verify"
)

// Report is the persisted outcome of one verification run.
type Report struct {
	// RunID is the unique run identifier (UUID).
	RunID string `json:"run_id"`

	// Suite is the suite name the run verified.
	Suite string `json:"suite"`

	// GeneratedAt is when the report was produced (UTC).
	GeneratedAt time.Time `json:"generated_at"`

	// Score is the 0-100 suite score.
	Score float64 `json:"score"`

	// Grade is the letter grade for Score.
	Grade string `json:"grade"`

	// Health is critical/warning/healthy.
	Health string `json:"health"`

	// Verdicts counts cases by verdict.
	Verdicts map[string]int `json:"verdicts"`

	// Cases holds per-case verifications.
	Cases []*verify.Verification `json:"cases"`
}

// Formatter renders a report to a writer in one output format.
type Formatter interface {
	// Format writes the report.
	Format(w io.Writer, r *Report) error

	// Extension returns the file extension including the dot.
	Extension() string
}

// New assembles a report from a suite result.
func New(runID, suite string, result *verify.SuiteResult) *Report {
	return &Report{
		RunID:       runID,
		Suite:       suite,
		GeneratedAt: time.Now().UTC(),
		Score:       result.Score,
		Grade:       result.Grade,
		Health:      result.Health,
		Verdicts:    result.Verdicts,
		Cases:       result.Cases,
	}
}

// Findings returns all case findings in report order.
func (r *Report) Findings() []verify.Finding {
	var findings []verify.Finding
	for _, v := range r.Cases {
		findings = append(findings, v.Findings...)
	}
	return findings
}
