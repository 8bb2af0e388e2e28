// Package scenario loads and validates YAML suite definitions: the list of
// test cases to run and the claims each one makes about itself.
package scenario

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/boshu2/skeptic/internal/evidence"
	"github.com/boshu2/skeptic/internal/runner"
)

// Suite is a named collection of cases verified together.
type Suite struct {
	// Name identifies the suite in reports and the ledger.
	Name string `yaml:"name" validate:"required"`

	// Workdir is where case commands run. Empty means the current directory.
	Workdir string `yaml:"workdir,omitempty"`

	// Parallelism bounds concurrent case execution. Zero means NumCPU.
	Parallelism int `yaml:"parallelism,omitempty" validate:"gte=0"`

	// AllowNoHoneypot suppresses the honeypot requirement. Suites without
	// a honeypot cannot detect a harness that fabricates results.
	AllowNoHoneypot bool `yaml:"allow_no_honeypot,omitempty"`

	// Cases are the test cases, in execution order.
	Cases []Case `yaml:"cases" validate:"required,min=1,dive"`
}

// Case is one test command plus the expectations it is verified against.
type Case struct {
	Name       string   `yaml:"name" validate:"required"`
	Runner     string   `yaml:"runner,omitempty"`
	Args       []string `yaml:"args,omitempty"`
	Honeypot   bool     `yaml:"honeypot,omitempty"`
	ExpectFail bool     `yaml:"expect_fail,omitempty"`

	// Durations are YAML strings like "200ms" or "30s".
	Timeout     string `yaml:"timeout,omitempty"`
	MinDuration string `yaml:"min_duration,omitempty"`
	MaxDuration string `yaml:"max_duration,omitempty"`

	RequireOutput []string `yaml:"require_output,omitempty"`
	ForbidOutput  []string `yaml:"forbid_output,omitempty"`
	MinTests      int      `yaml:"min_tests,omitempty" validate:"gte=0"`
}

var validate = validator.New()

// Load reads and validates a suite from a YAML file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}

	if err := suite.Validate(); err != nil {
		return nil, err
	}
	return &suite, nil
}

// Validate applies struct tags plus the cross-field rules the tags cannot
// express: unique case names, known runner kinds, parseable durations, and
// the honeypot requirement.
func (s *Suite) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("suite %q: %w", s.Name, err)
	}

	seen := make(map[string]struct{}, len(s.Cases))
	hasHoneypot := false
	for i := range s.Cases {
		c := &s.Cases[i]
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("suite %q: %w: %q", s.Name, ErrDuplicateCase, c.Name)
		}
		seen[c.Name] = struct{}{}

		if err := runner.ValidateKind(c.Runner); err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
		if _, err := c.durations(); err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
		if c.Honeypot {
			hasHoneypot = true
		}
	}

	if !hasHoneypot && !s.AllowNoHoneypot {
		return fmt.Errorf("suite %q: %w", s.Name, ErrNoHoneypot)
	}
	return nil
}

// caseDurations holds the parsed duration fields of a case.
type caseDurations struct {
	timeout time.Duration
	min     time.Duration
	max     time.Duration
}

func (c *Case) durations() (caseDurations, error) {
	var d caseDurations
	var err error
	if d.timeout, err = parseDuration(c.Timeout); err != nil {
		return d, fmt.Errorf("timeout: %w", err)
	}
	if d.min, err = parseDuration(c.MinDuration); err != nil {
		return d, fmt.Errorf("min_duration: %w", err)
	}
	if d.max, err = parseDuration(c.MaxDuration); err != nil {
		return d, fmt.Errorf("max_duration: %w", err)
	}
	return d, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Spec converts a case to a runner spec. Validate must have passed.
func (s *Suite) Spec(c *Case) runner.Spec {
	d, _ := c.durations()
	return runner.Spec{
		Case:    c.Name,
		Kind:    c.Runner,
		Args:    c.Args,
		Workdir: s.Workdir,
		Timeout: d.timeout,
	}
}

// Expectation converts a case to the verifier's expectation.
func (c *Case) Expectation() evidence.Expectation {
	d, _ := c.durations()
	return evidence.Expectation{
		Honeypot:      c.Honeypot,
		ExpectFail:    c.ExpectFail,
		MinDuration:   d.min,
		MaxDuration:   d.max,
		RequireOutput: c.RequireOutput,
		ForbidOutput:  c.ForbidOutput,
		MinTests:      c.MinTests,
	}
}
