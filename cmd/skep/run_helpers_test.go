package main

import (
	"testing"

	"github.com/boshu2/skeptic/internal/config"
	"github.com/boshu2/skeptic/internal/report"
)

func TestFormattersFor(t *testing.T) {
	fs := formattersFor([]string{"json", "markdown"})
	if len(fs) != 2 {
		t.Fatalf("len = %d, want 2", len(fs))
	}
	if fs[0].Extension() != ".json" {
		t.Errorf("first extension = %q, want .json", fs[0].Extension())
	}
	if fs[1].Extension() != ".md" {
		t.Errorf("second extension = %q, want .md", fs[1].Extension())
	}
}

func TestFormattersFor_UnknownFallsBackToJSON(t *testing.T) {
	fs := formattersFor([]string{"xml", "pdf"})
	if len(fs) != 1 {
		t.Fatalf("len = %d, want 1", len(fs))
	}
	if _, ok := fs[0].(*report.JSONFormatter); !ok {
		t.Errorf("fallback formatter = %T, want *report.JSONFormatter", fs[0])
	}
}

func TestResolveToolchain_ConfigValues(t *testing.T) {
	cfg := config.Default()
	cfg.Runner.PytestCommand = "py.test"
	cfg.Runner.Shell = "bash"

	tc, err := resolveToolchain(cfg, nil)
	if err != nil {
		t.Fatalf("resolveToolchain: %v", err)
	}
	if tc.PytestCommand != "py.test" {
		t.Errorf("PytestCommand = %q, want %q", tc.PytestCommand, "py.test")
	}
	if tc.Shell != "bash" {
		t.Errorf("Shell = %q, want %q", tc.Shell, "bash")
	}
	if tc.GoCommand != "go" {
		t.Errorf("GoCommand = %q, want default %q", tc.GoCommand, "go")
	}
}
