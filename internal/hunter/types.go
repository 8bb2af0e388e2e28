// Package hunter scans source trees for fabrication smells: mock leakage,
// assertion-free tests, trivial asserts, sleep-based simulation, and
// hardcoded success output.
package hunter

// Severity constants for findings.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Health classification constants.
const (
	HealthCritical = "critical"
	HealthWarning  = "warning"
	HealthHealthy  = "healthy"
)

// Finding is a single suspicious location in the scanned tree.
type Finding struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// ScanResult is the aggregate outcome of hunting a tree.
type ScanResult struct {
	// Root is the directory that was scanned.
	Root string `json:"root"`

	// FilesScanned is how many source files were inspected.
	FilesScanned int `json:"files_scanned"`

	// Findings holds every suspicious location, ordered by file.
	Findings []Finding `json:"findings,omitempty"`

	// ByCategory counts findings per detector category.
	ByCategory map[string]int `json:"by_category,omitempty"`

	// Health is critical/warning/healthy across all findings.
	Health string `json:"health"`
}

// Detector inspects one file's content and reports findings.
type Detector func(path string, lines []string) []Finding
