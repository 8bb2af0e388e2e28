package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSuiteYAML = `name: api-suite
workdir: /srv/api
parallelism: 2
cases:
  - name: unit
    runner: pytest
    args: ["tests/", "-q"]
    timeout: 60s
    min_duration: 100ms
    min_tests: 10
  - name: honeypot
    runner: pytest
    args: ["tests/honeypot", "-q"]
    honeypot: true
`

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Valid(t *testing.T) {
	suite, err := Load(writeSuite(t, validSuiteYAML))
	require.NoError(t, err)

	assert.Equal(t, "api-suite", suite.Name)
	require.Len(t, suite.Cases, 2)

	spec := suite.Spec(&suite.Cases[0])
	assert.Equal(t, "unit", spec.Case)
	assert.Equal(t, "/srv/api", spec.Workdir)
	assert.Equal(t, 60*time.Second, spec.Timeout)

	exp := suite.Cases[0].Expectation()
	assert.Equal(t, 100*time.Millisecond, exp.MinDuration)
	assert.Equal(t, 10, exp.MinTests)

	assert.True(t, suite.Cases[1].Expectation().Honeypot)
}

func TestLoad_MissingName(t *testing.T) {
	_, err := Load(writeSuite(t, "cases:\n  - name: a\n    honeypot: true\n"))
	assert.Error(t, err)
}

func TestLoad_NoCases(t *testing.T) {
	_, err := Load(writeSuite(t, "name: empty\ncases: []\n"))
	assert.Error(t, err)
}

func TestValidate_DuplicateCaseNames(t *testing.T) {
	suite := &Suite{
		Name: "dupes",
		Cases: []Case{
			{Name: "same", Honeypot: true},
			{Name: "same"},
		},
	}
	err := suite.Validate()
	assert.ErrorIs(t, err, ErrDuplicateCase)
}

func TestValidate_RequiresHoneypot(t *testing.T) {
	suite := &Suite{Name: "trusting", Cases: []Case{{Name: "only"}}}
	err := suite.Validate()
	assert.ErrorIs(t, err, ErrNoHoneypot)

	suite.AllowNoHoneypot = true
	assert.NoError(t, suite.Validate())
}

func TestValidate_BadRunnerKind(t *testing.T) {
	suite := &Suite{
		Name:  "bad",
		Cases: []Case{{Name: "a", Runner: "jest", Honeypot: true}},
	}
	assert.Error(t, suite.Validate())
}

func TestValidate_BadDuration(t *testing.T) {
	suite := &Suite{
		Name:  "bad",
		Cases: []Case{{Name: "a", Timeout: "soon", Honeypot: true}},
	}
	assert.Error(t, suite.Validate())
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
