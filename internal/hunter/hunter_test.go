package hunter

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestScan_FindsAndSortsFindings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "service/db.py", "from unittest.mock import MagicMock\n")
	writeFile(t, root, "service/worker.py", "import time\ntime.sleep(2)\n")
	writeFile(t, root, "tests/test_ok.py", "def test_ok():\n    assert compute() == 1\n")
	writeFile(t, root, "README.md", "not scanned\n")

	result, err := Scan(ScanOptions{Root: root})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.FilesScanned != 3 {
		t.Errorf("scanned %d files, want 3", result.FilesScanned)
	}
	if result.Health != HealthCritical {
		t.Errorf("health = %s, want critical (mock abuse present)", result.Health)
	}
	if result.ByCategory["mock-abuse"] != 1 {
		t.Errorf("mock-abuse count = %d, want 1", result.ByCategory["mock-abuse"])
	}
	if result.ByCategory["sleep-simulation"] != 1 {
		t.Errorf("sleep-simulation count = %d, want 1", result.ByCategory["sleep-simulation"])
	}

	// Findings must be sorted by file then line.
	for i := 1; i < len(result.Findings); i++ {
		prev, cur := result.Findings[i-1], result.Findings[i]
		if prev.File > cur.File {
			t.Errorf("findings not sorted: %s before %s", prev.File, cur.File)
		}
	}
}

func TestScan_SkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/dep.py", "time.sleep(1)\n")
	writeFile(t, root, "build/gen.py", "time.sleep(1)\n")
	writeFile(t, root, "src/ok.py", "x = 1\n")

	result, err := Scan(ScanOptions{Root: root, Excludes: []string{"build"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.FilesScanned != 1 {
		t.Errorf("scanned %d files, want 1 (vendor and build skipped)", result.FilesScanned)
	}
	if len(result.Findings) != 0 {
		t.Errorf("expected no findings, got %v", result.Findings)
	}
	if result.Health != HealthHealthy {
		t.Errorf("health = %s, want healthy", result.Health)
	}
}

func TestScan_RootRequired(t *testing.T) {
	if _, err := Scan(ScanOptions{}); err != ErrRootRequired {
		t.Errorf("err = %v, want ErrRootRequired", err)
	}
}
