package verify

import "testing"

func TestSummarize_Empty(t *testing.T) {
	r := Summarize(nil)
	if r.Grade != "F" {
		t.Errorf("empty suite should grade F, got %s", r.Grade)
	}
	if r.Score != 0 {
		t.Errorf("empty suite should score 0, got %f", r.Score)
	}
}

func TestSummarize_AllReal(t *testing.T) {
	cases := []*Verification{
		{Case: "a", Confidence: 0.95, Verdict: VerdictReal},
		{Case: "b", Confidence: 0.85, Verdict: VerdictReal},
	}
	r := Summarize(cases)
	if r.Grade != "A" {
		t.Errorf("expected grade A, got %s (score %.1f)", r.Grade, r.Score)
	}
	if r.Health != HealthHealthy {
		t.Errorf("expected healthy, got %s", r.Health)
	}
	if r.Verdicts[VerdictReal] != 2 {
		t.Errorf("expected 2 REAL verdicts, got %d", r.Verdicts[VerdictReal])
	}
}

func TestSummarize_FakePoisonsSuite(t *testing.T) {
	cases := []*Verification{
		{Case: "a", Confidence: 0.95, Verdict: VerdictReal},
		{Case: "b", Confidence: 0.95, Verdict: VerdictReal},
		{Case: "hp", Confidence: 0.9, Verdict: VerdictFake, Findings: []Finding{
			{Severity: SeverityCritical, Category: "honeypot"},
		}},
	}
	r := Summarize(cases)
	if r.Grade != "F" {
		t.Errorf("a FAKE case must drop the suite to F, got %s", r.Grade)
	}
	if r.Health != HealthCritical {
		t.Errorf("expected critical health, got %s", r.Health)
	}
}

func TestScoreToGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "A"}, {80, "A"}, {79.9, "B"}, {60, "B"}, {45, "C"}, {25, "D"}, {5, "F"},
	}
	for _, tt := range tests {
		if got := scoreToGrade(tt.score); got != tt.want {
			t.Errorf("scoreToGrade(%.1f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
