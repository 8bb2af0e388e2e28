package hunter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boshu2/skeptic/internal/worker"
)

// defaultSkipDirs are directory names never worth scanning.
var defaultSkipDirs = map[string]struct{}{
	".git":         {},
	".skeptic":     {},
	"vendor":       {},
	"node_modules": {},
	"__pycache__":  {},
	".venv":        {},
}

// scannedExtensions are the source file types the detectors understand.
var scannedExtensions = map[string]struct{}{
	".py": {},
	".go": {},
}

// ScanOptions configures a hunt.
type ScanOptions struct {
	// Root is the directory to scan.
	Root string

	// Excludes are additional directory names to skip.
	Excludes []string

	// Concurrency bounds parallel file scanning. Zero means NumCPU.
	Concurrency int
}

// Scan walks the tree, fans file inspection out on the worker pool, and
// aggregates findings into a ScanResult.
func Scan(opts ScanOptions) (*ScanResult, error) {
	if opts.Root == "" {
		return nil, ErrRootRequired
	}

	skip := make(map[string]struct{}, len(defaultSkipDirs)+len(opts.Excludes))
	for name := range defaultSkipDirs {
		skip[name] = struct{}{}
	}
	for _, name := range opts.Excludes {
		skip[strings.TrimSpace(name)] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skipIt := skip[d.Name()]; skipIt && path != opts.Root {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := scannedExtensions[filepath.Ext(path)]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.Root, err)
	}

	pool := worker.NewPool[string, []Finding](opts.Concurrency)
	results := pool.Process(files, func(path string) ([]Finding, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rel, relErr := filepath.Rel(opts.Root, path)
		if relErr != nil {
			rel = path
		}
		return RunDetectors(rel, string(data)), nil
	})

	scan := &ScanResult{
		Root:         opts.Root,
		FilesScanned: len(files),
		ByCategory:   make(map[string]int),
	}
	for _, r := range results {
		if r.Err != nil {
			// Unreadable files are reported, not fatal.
			scan.Findings = append(scan.Findings, Finding{
				Severity: SeverityWarning,
				Category: "unreadable",
				Message:  r.Err.Error(),
			})
			continue
		}
		scan.Findings = append(scan.Findings, r.Value...)
	}

	sort.SliceStable(scan.Findings, func(i, j int) bool {
		if scan.Findings[i].File != scan.Findings[j].File {
			return scan.Findings[i].File < scan.Findings[j].File
		}
		return scan.Findings[i].Line < scan.Findings[j].Line
	})

	for _, f := range scan.Findings {
		scan.ByCategory[f.Category]++
	}
	scan.Health = ClassifyHealth(scan.Findings)

	return scan, nil
}
