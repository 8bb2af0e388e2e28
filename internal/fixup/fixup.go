// Package fixup applies declarative regex rewrite rules to source trees:
// mock removal, banner scrubbing, and the other mechanical patches the
// verification workflow calls for.
package fixup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/boshu2/skeptic/internal/worker"
)

// Rule is one rewrite: a file glob, a pattern, and its replacement.
type Rule struct {
	// Name identifies the rule in summaries.
	Name string `yaml:"name"`

	// Glob selects files by base name (path.Match against the basename).
	Glob string `yaml:"glob"`

	// Pattern is the regular expression to replace.
	Pattern string `yaml:"pattern"`

	// Replace is the replacement text ($1-style group references allowed).
	Replace string `yaml:"replace"`

	// MaxPerFile caps replacements per file. Zero means unlimited.
	MaxPerFile int `yaml:"max_per_file,omitempty"`

	re *regexp.Regexp
}

// RuleSet is a parsed, compiled rules file.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Change records the application of one rule to one file.
type Change struct {
	File         string `json:"file"`
	Rule         string `json:"rule"`
	Replacements int    `json:"replacements"`
}

// Summary is the outcome of applying a rule set to a tree.
type Summary struct {
	FilesExamined int      `json:"files_examined"`
	FilesChanged  int      `json:"files_changed"`
	Changes       []Change `json:"changes,omitempty"`
	DryRun        bool     `json:"dry_run"`
}

// LoadRules reads, parses, and compiles a YAML rules file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, ErrNoRules
	}

	for i := range rs.Rules {
		r := &rs.Rules[i]
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: rule %d", ErrRuleNameRequired, i+1)
		}
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %q: %w", r.Name, ErrPatternRequired)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: compile pattern: %w", r.Name, err)
		}
		r.re = re
		if r.Glob == "" {
			r.Glob = "*"
		}
	}

	return &rs, nil
}

// ApplyOptions configures a fixup run.
type ApplyOptions struct {
	// Root is the tree to patch.
	Root string

	// DryRun reports what would change without writing.
	DryRun bool

	// Backup writes <file>.bak beside each modified file.
	Backup bool

	// Concurrency bounds parallel file processing. Zero means NumCPU.
	Concurrency int
}

// Apply runs every rule against every matching file under root.
func (rs *RuleSet) Apply(opts ApplyOptions) (*Summary, error) {
	if opts.Root == "" {
		return nil, ErrRootRequired
	}

	var files []string
	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != opts.Root && (name == ".git" || name == ".skeptic" || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if rs.anyGlobMatches(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", opts.Root, err)
	}

	pool := worker.NewPool[string, []Change](opts.Concurrency)
	results := pool.Process(files, func(path string) ([]Change, error) {
		return rs.applyToFile(path, opts)
	})

	summary := &Summary{FilesExamined: len(files), DryRun: opts.DryRun}
	for i, r := range results {
		if r.Err != nil {
			return nil, fmt.Errorf("patch %s: %w", files[i], r.Err)
		}
		if len(r.Value) > 0 {
			summary.FilesChanged++
			summary.Changes = append(summary.Changes, r.Value...)
		}
	}

	return summary, nil
}

// anyGlobMatches reports whether any rule's glob matches the base name.
func (rs *RuleSet) anyGlobMatches(base string) bool {
	for i := range rs.Rules {
		if ok, _ := filepath.Match(rs.Rules[i].Glob, base); ok {
			return true
		}
	}
	return false
}

// applyToFile runs all matching rules against one file, writing atomically
// unless dry-run.
func (rs *RuleSet) applyToFile(path string, opts ApplyOptions) ([]Change, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := string(data)
	var changes []Change

	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if ok, _ := filepath.Match(rule.Glob, filepath.Base(path)); !ok {
			continue
		}

		replaced := 0
		limit := rule.MaxPerFile
		content = rule.re.ReplaceAllStringFunc(content, func(match string) string {
			if limit > 0 && replaced >= limit {
				return match
			}
			replaced++
			return rule.re.ReplaceAllString(match, rule.Replace)
		})

		if replaced > 0 {
			rel, relErr := filepath.Rel(opts.Root, path)
			if relErr != nil {
				rel = path
			}
			changes = append(changes, Change{File: rel, Rule: rule.Name, Replacements: replaced})
		}
	}

	if len(changes) == 0 || opts.DryRun {
		return changes, nil
	}

	if opts.Backup {
		if err := os.WriteFile(path+".bak", data, 0600); err != nil {
			return nil, fmt.Errorf("write backup: %w", err)
		}
	}
	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return nil, err
	}

	return changes, nil
}

// writeFileAtomic writes via temp file + rename in the target directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-fixup-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := true
	defer func() {
		_ = tmp.Close()
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Preserve the original file's mode.
	if info, statErr := os.Stat(path); statErr == nil {
		if err := tmp.Chmod(info.Mode()); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanup = false
	return nil
}
