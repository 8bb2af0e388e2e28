// Package store persists verification reports and a run index under the
// skeptic base directory. Report files are written atomically; the index is
// an append-only JSONL file with duplicate suppression by run ID.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/boshu2/skeptic/internal/report"
)

const (
	// DefaultBaseDir is the default skeptic data directory.
	DefaultBaseDir = ".skeptic"

	// ReportsDir holds per-run report files.
	ReportsDir = "reports"

	// IndexDir holds the run index.
	IndexDir = "index"

	// IndexFile is the run index filename.
	IndexFile = "runs.jsonl"

	// SlugMaxLength is the maximum length for report filename slugs.
	SlugMaxLength = 50

	// SlugMinWordBoundary is the minimum length before trimming at a word boundary.
	SlugMinWordBoundary = 30
)

// IndexEntry is one row in the run index.
type IndexEntry struct {
	RunID      string    `json:"run_id"`
	Suite      string    `json:"suite"`
	Date       time.Time `json:"date"`
	Score      float64   `json:"score"`
	Grade      string    `json:"grade"`
	Health     string    `json:"health"`
	ReportPath string    `json:"report_path"`
}

// Store writes reports and maintains the run index on the local filesystem.
type Store struct {
	// BaseDir is the root data directory (e.g. .skeptic).
	BaseDir string

	// Formatters produce the report files. The first formatter yields the
	// primary path recorded in the index.
	Formatters []report.Formatter

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithBaseDir sets the base directory.
func WithBaseDir(dir string) Option {
	return func(s *Store) {
		s.BaseDir = dir
	}
}

// WithFormatters sets the report formatters.
func WithFormatters(formatters ...report.Formatter) Option {
	return func(s *Store) {
		s.Formatters = formatters
	}
}

// New creates a store rooted at DefaultBaseDir unless overridden.
func New(opts ...Option) *Store {
	s := &Store{
		BaseDir:    DefaultBaseDir,
		Formatters: []report.Formatter{&report.JSONFormatter{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the required directory structure.
func (s *Store) Init() error {
	dirs := []string{
		filepath.Join(s.BaseDir, ReportsDir),
		filepath.Join(s.BaseDir, IndexDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteReport writes a report with every configured formatter and indexes
// the run. Returns the primary report path.
func (s *Store) WriteReport(r *report.Report) (string, error) {
	if r.RunID == "" {
		return "", fmt.Errorf("run ID is required")
	}
	if len(s.Formatters) == 0 {
		return "", fmt.Errorf("no formatters configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Filename layout: YYYY-MM-DD-{suite-slug}-{runID[:8]}.ext
	slug := generateSlug(r.Suite)
	shortID := r.RunID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	dateStr := r.GeneratedAt.Format("2006-01-02")
	baseName := fmt.Sprintf("%s-%s-%s", dateStr, slug, shortID)

	var primaryPath string
	for i, formatter := range s.Formatters {
		fullPath := filepath.Join(s.BaseDir, ReportsDir, baseName+formatter.Extension())
		if err := s.atomicWrite(fullPath, func(w io.Writer) error {
			return formatter.Format(w, r)
		}); err != nil {
			return "", fmt.Errorf("write %s report: %w", formatter.Extension(), err)
		}
		if i == 0 {
			primaryPath = fullPath
		}
	}

	entry := IndexEntry{
		RunID:      r.RunID,
		Suite:      r.Suite,
		Date:       r.GeneratedAt,
		Score:      r.Score,
		Grade:      r.Grade,
		Health:     r.Health,
		ReportPath: primaryPath,
	}
	if err := s.writeIndex(entry); err != nil {
		return "", err
	}

	return primaryPath, nil
}

// ReadReport loads a previously stored report by run ID. Requires a JSON
// formatter to have been among the writers.
func (s *Store) ReadReport(runID string) (*report.Report, error) {
	entries, err := s.ListRuns()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.RunID != runID {
			continue
		}
		path := entry.ReportPath
		if !strings.HasSuffix(path, ".json") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		}
		return readReportFile(path)
	}
	return nil, fmt.Errorf("run not found: %s", runID)
}

// ListRuns returns all index entries in append order.
func (s *Store) ListRuns() (entries []IndexEntry, err error) {
	f, err := os.Open(s.IndexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry IndexEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // Skip malformed lines
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// IndexPath returns the full path to the run index file.
func (s *Store) IndexPath() string {
	return filepath.Join(s.BaseDir, IndexDir, IndexFile)
}

// ReportsPath returns the full path to the reports directory.
func (s *Store) ReportsPath() string {
	return filepath.Join(s.BaseDir, ReportsDir)
}

// writeIndex appends an entry unless the run is already indexed.
func (s *Store) writeIndex(entry IndexEntry) error {
	indexPath := s.IndexPath()
	if s.hasIndexEntry(indexPath, entry.RunID) {
		return nil
	}
	return s.appendJSONL(indexPath, entry)
}

func (s *Store) hasIndexEntry(indexPath, runID string) bool {
	f, err := os.Open(indexPath)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry IndexEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if entry.RunID == runID {
			return true
		}
	}
	return false
}

// atomicWrite writes to a temp file in the same directory and renames.
func (s *Store) atomicWrite(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := writeFunc(tmpFile); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write content: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}

func (s *Store) appendJSONL(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return f.Sync()
}

func readReportFile(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}

// generateSlug creates a filename-safe slug from a suite name.
func generateSlug(text string) string {
	if text == "" {
		return "run"
	}
	s := slugify(strings.ToLower(text))
	s = truncateSlug(s)
	if s == "" {
		return "run"
	}
	return s
}

// slugify replaces non-alphanumeric runs with single hyphens and trims
// leading/trailing hyphens.
func slugify(input string) string {
	var result strings.Builder
	lastHyphen := false
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			result.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.Trim(result.String(), "-")
}

// truncateSlug limits the slug length, preferring word boundaries.
func truncateSlug(s string) string {
	if len(s) <= SlugMaxLength {
		return s
	}
	s = s[:SlugMaxLength]
	if idx := strings.LastIndex(s, "-"); idx > SlugMinWordBoundary {
		s = s[:idx]
	}
	return s
}
