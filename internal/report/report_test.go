package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/boshu2/skeptic/internal/evidence"
	"github.com/boshu2/skeptic/internal/verify"
)

func makeReport() *Report {
	return &Report{
		RunID:       "5e6f7a80-0000-0000-0000-000000000001",
		Suite:       "api-suite",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Score:       91.5,
		Grade:       "A",
		Health:      verify.HealthHealthy,
		Verdicts:    map[string]int{verify.VerdictReal: 2},
		Cases: []*verify.Verification{
			{
				Case:       "unit",
				Confidence: 0.95,
				Verdict:    verify.VerdictReal,
				Checks: []verify.CheckResult{
					{Name: "duration-floor", Confidence: 1, Passed: true, Message: "ok"},
				},
				Evidence: evidence.Evidence{Duration: 2 * time.Second, ExitCode: 0},
			},
			{
				Case:       "honeypot",
				Confidence: 0.88,
				Verdict:    verify.VerdictReal,
				Evidence:   evidence.Evidence{Duration: time.Second, ExitCode: 1},
			},
		},
	}
}

func TestJSONFormatter_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().Format(&buf, makeReport()); err != nil {
		t.Fatalf("Format: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != makeReport().RunID {
		t.Errorf("run_id = %q", decoded.RunID)
	}
	if len(decoded.Cases) != 2 {
		t.Errorf("cases = %d, want 2", len(decoded.Cases))
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownFormatter().Format(&buf, makeReport()); err != nil {
		t.Fatalf("Format: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "---\n") {
		t.Error("markdown should start with frontmatter")
	}
	for _, want := range []string{"suite: api-suite", "grade: A", "| unit | REAL | 0.95 |", "# Verification Report"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
}

func TestMarkdownFormatter_IncludesFindings(t *testing.T) {
	r := makeReport()
	r.Cases[0].Findings = []verify.Finding{
		{Severity: verify.SeverityCritical, Category: "honeypot", Message: "honeypot PASSED"},
	}

	var buf bytes.Buffer
	if err := NewMarkdownFormatter().Format(&buf, r); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(buf.String(), "**critical** [honeypot]") {
		t.Errorf("markdown missing findings section:\n%s", buf.String())
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, makeReport()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CASE", "VERDICT", "unit", "REAL", "Score: 91.5/100 (A)"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTable_Truncation(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, "NAME")
	table.SetMaxWidth(0, 10)
	table.AddRow("a-very-long-case-name")
	if err := table.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "a-very-...") {
		t.Errorf("expected truncated cell:\n%s", buf.String())
	}
}

func TestNew_CopiesSuiteResult(t *testing.T) {
	sr := &verify.SuiteResult{
		Score:    75,
		Grade:    "B",
		Health:   verify.HealthWarning,
		Verdicts: map[string]int{verify.VerdictSuspicious: 1},
		Cases:    []*verify.Verification{{Case: "x"}},
	}
	r := New("run-1", "s", sr)
	if r.Grade != "B" || r.Score != 75 || r.Suite != "s" {
		t.Errorf("report = %+v", r)
	}
	if r.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}
