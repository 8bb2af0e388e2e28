package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCheckCommand_Missing(t *testing.T) {
	check := checkCommand("pytest", "definitely-not-a-real-binary-xyz", false)
	if check.Status != "warn" {
		t.Errorf("optional missing command Status = %q, want %q", check.Status, "warn")
	}

	check = checkCommand("shell", "definitely-not-a-real-binary-xyz", true)
	if check.Status != "fail" {
		t.Errorf("required missing command Status = %q, want %q", check.Status, "fail")
	}
}

func TestCheckCommand_Found(t *testing.T) {
	// sh exists on any platform the runner supports
	check := checkCommand("shell", "sh", true)
	if check.Status != "pass" {
		t.Errorf("Status = %q, want %q (detail: %s)", check.Status, "pass", check.Detail)
	}
}

func TestCheckBaseDir(t *testing.T) {
	check := checkBaseDir(t.TempDir())
	if check.Status != "pass" {
		t.Errorf("Status = %q, want %q (detail: %s)", check.Status, "pass", check.Detail)
	}
}

func TestSummarizeDoctor(t *testing.T) {
	out := summarizeDoctor([]doctorCheck{
		{Name: "a", Status: "pass"},
		{Name: "b", Status: "pass"},
	})
	if out.Result != "HEALTHY" {
		t.Errorf("Result = %q, want HEALTHY", out.Result)
	}

	out = summarizeDoctor([]doctorCheck{
		{Name: "a", Status: "pass"},
		{Name: "b", Status: "warn"},
	})
	if out.Result != "DEGRADED" {
		t.Errorf("Result = %q, want DEGRADED", out.Result)
	}

	out = summarizeDoctor([]doctorCheck{
		{Name: "a", Status: "fail"},
		{Name: "b", Status: "warn"},
	})
	if out.Result != "UNHEALTHY" {
		t.Errorf("Result = %q, want UNHEALTHY", out.Result)
	}
}

func TestRenderDoctorTable(t *testing.T) {
	var buf bytes.Buffer
	renderDoctorTable(&buf, doctorOutput{
		Checks: []doctorCheck{
			{Name: "shell", Status: "pass", Detail: "/bin/sh"},
			{Name: "pytest", Status: "warn", Detail: "not found"},
		},
		Result:  "DEGRADED",
		Summary: "1 optional tool(s) missing",
	})

	got := buf.String()
	if !strings.Contains(got, "/bin/sh") {
		t.Errorf("output missing detail: %q", got)
	}
	if !strings.Contains(got, "DEGRADED: 1 optional tool(s) missing") {
		t.Errorf("output missing summary line: %q", got)
	}
}
