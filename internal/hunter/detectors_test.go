package hunter

import (
	"strings"
	"testing"
)

func findCategory(findings []Finding, category string) *Finding {
	for i := range findings {
		if findings[i].Category == category {
			return &findings[i]
		}
	}
	return nil
}

func TestDetectMockAbuse_NonTestFile(t *testing.T) {
	content := `from unittest.mock import MagicMock

def get_connection():
    return MagicMock()
`
	findings := DetectMockAbuse("service/db.py", strings.Split(content, "\n"))
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	if findings[0].Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", findings[0].Severity)
	}
	if findings[1].Line != 4 {
		t.Errorf("line = %d, want 4", findings[1].Line)
	}
}

func TestDetectMockAbuse_TestFileIsFine(t *testing.T) {
	content := "from unittest.mock import MagicMock\n"
	if f := DetectMockAbuse("tests/test_db.py", strings.Split(content, "\n")); f != nil {
		t.Errorf("mocks in test files are legitimate, got %v", f)
	}
}

func TestDetectTrivialAssert(t *testing.T) {
	content := `def test_everything():
    assert True
`
	findings := DetectTrivialAssert("tests/test_all.py", strings.Split(content, "\n"))
	f := findCategory(findings, "trivial-assert")
	if f == nil {
		t.Fatal("expected a trivial-assert finding")
	}
	if f.Line != 2 {
		t.Errorf("line = %d, want 2", f.Line)
	}
}

func TestDetectSleepSimulation(t *testing.T) {
	content := `def process_batch(items):
    time.sleep(random.uniform(0.1, 0.5))
    return "done"
`
	findings := DetectSleepSimulation("pipeline/worker.py", strings.Split(content, "\n"))
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Severity != SeverityWarning {
		t.Errorf("severity = %s, want warning", findings[0].Severity)
	}
}

func TestDetectHardcodedSuccess(t *testing.T) {
	lines := []string{
		`print("Processing complete: all tests passed")`,
		`fmt.Println("verification passed")`,
		`log.info("starting run")`,
	}
	findings := DetectHardcodedSuccess("scripts/report.py", lines)
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2: %v", len(findings), findings)
	}
	for _, f := range findings {
		if f.Severity != SeverityCritical {
			t.Errorf("severity = %s, want critical", f.Severity)
		}
	}
}

func TestDetectAssertionFreeTests_Python(t *testing.T) {
	content := `import pytest

def test_empty():
    result = compute()
    print(result)

def test_real():
    assert compute() == 42
`
	findings := DetectAssertionFreeTests("tests/test_compute.py", strings.Split(content, "\n"))
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(findings), findings)
	}
	if !strings.Contains(findings[0].Message, "test_empty") {
		t.Errorf("finding should name the empty test: %s", findings[0].Message)
	}
}

func TestDetectAssertionFreeTests_NestedHelperDoesNotEndBody(t *testing.T) {
	// A helper defined inside the test is part of its body. Asserts after
	// the helper must still count for the enclosing test.
	content := `def test_with_helper():
    def build():
        return compute()

    assert build() == 42

class TestSuite:
    def test_method_helper(self):
        def inner():
            return 1
        assert inner() == 1
`
	findings := DetectAssertionFreeTests("tests/test_helpers.py", strings.Split(content, "\n"))
	if len(findings) != 0 {
		t.Errorf("tests with asserts after nested helpers should be clean, got %v", findings)
	}
}

func TestDetectAssertionFreeTests_Go(t *testing.T) {
	content := `package demo

func TestNothing(t *testing.T) {
	_ = compute()
}

func TestSomething(t *testing.T) {
	if compute() != 42 {
		t.Fatal("wrong answer")
	}
}
`
	findings := DetectAssertionFreeTests("demo_test.go", strings.Split(content, "\n"))
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1: %v", len(findings), findings)
	}
	if !strings.Contains(findings[0].Message, "TestNothing") {
		t.Errorf("finding should name TestNothing: %s", findings[0].Message)
	}
}

func TestDetectAssertionFreeTests_SkipsNonTestFiles(t *testing.T) {
	if f := DetectAssertionFreeTests("main.go", []string{"func TestLike() {}"}); f != nil {
		t.Errorf("non-test file should be skipped, got %v", f)
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"foo_test.go", true},
		{"tests/helper.py", true},
		{"test_api.py", true},
		{"api_test.py", true},
		{"conftest.py", true},
		{"service/api.py", false},
		{"main.go", false},
	}
	for _, tt := range tests {
		if got := isTestFile(tt.path); got != tt.want {
			t.Errorf("isTestFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
