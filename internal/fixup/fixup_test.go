package fixup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `rules:
  - name: strip-magicmock-import
    glob: "*.py"
    pattern: '(?m)^from unittest\.mock import .*\n'
    replace: ""
  - name: demote-success-banner
    glob: "*.py"
    pattern: 'print\("all tests passed"\)'
    replace: 'log.info("run finished")'
    max_per_file: 1
`

func writeRules(t *testing.T, content string) *RuleSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	rs, err := LoadRules(path)
	require.NoError(t, err)
	return rs
}

func writeTarget(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadRules_Validation(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("rules: []\n"), 0600))
	_, err := LoadRules(empty)
	assert.ErrorIs(t, err, ErrNoRules)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("rules:\n  - pattern: x\n"), 0600))
	_, err = LoadRules(unnamed)
	assert.ErrorIs(t, err, ErrRuleNameRequired)

	badRe := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badRe, []byte("rules:\n  - name: x\n    pattern: '['\n"), 0600))
	_, err = LoadRules(badRe)
	assert.Error(t, err)
}

func TestApply_RewritesFiles(t *testing.T) {
	rs := writeRules(t, rulesYAML)
	root := t.TempDir()
	target := writeTarget(t, root, "svc/handler.py",
		"from unittest.mock import MagicMock\nprint(\"all tests passed\")\nx = 1\n")

	summary, err := rs.Apply(ApplyOptions{Root: root})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FilesExamined)
	assert.Equal(t, 1, summary.FilesChanged)
	assert.Len(t, summary.Changes, 2)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "log.info(\"run finished\")\nx = 1\n", string(got))
}

func TestApply_DryRunLeavesFilesAlone(t *testing.T) {
	rs := writeRules(t, rulesYAML)
	root := t.TempDir()
	original := "from unittest.mock import MagicMock\n"
	target := writeTarget(t, root, "a.py", original)

	summary, err := rs.Apply(ApplyOptions{Root: root, DryRun: true})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.FilesChanged)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, string(got), "dry-run must not modify files")
}

func TestApply_MaxPerFile(t *testing.T) {
	rs := writeRules(t, `rules:
  - name: capped
    glob: "*.txt"
    pattern: 'aaa'
    replace: 'bbb'
    max_per_file: 2
`)
	root := t.TempDir()
	target := writeTarget(t, root, "x.txt", "aaa aaa aaa\n")

	summary, err := rs.Apply(ApplyOptions{Root: root})
	require.NoError(t, err)
	require.Len(t, summary.Changes, 1)
	assert.Equal(t, 2, summary.Changes[0].Replacements)

	got, _ := os.ReadFile(target)
	assert.Equal(t, "bbb bbb aaa\n", string(got))
}

func TestApply_Backup(t *testing.T) {
	rs := writeRules(t, rulesYAML)
	root := t.TempDir()
	original := "from unittest.mock import MagicMock\nkeep\n"
	target := writeTarget(t, root, "b.py", original)

	_, err := rs.Apply(ApplyOptions{Root: root, Backup: true})
	require.NoError(t, err)

	bak, err := os.ReadFile(target + ".bak")
	require.NoError(t, err)
	assert.Equal(t, original, string(bak))
}

func TestApply_SkipsNonMatchingFiles(t *testing.T) {
	rs := writeRules(t, rulesYAML)
	root := t.TempDir()
	writeTarget(t, root, "notes.md", "from unittest.mock import MagicMock\n")

	summary, err := rs.Apply(ApplyOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.FilesExamined)
}
