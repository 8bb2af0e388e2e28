// Package evidence defines the data structures shared between the runner,
// the verifier, and the report layer. An Evidence value is everything a
// single test execution left behind; an Expectation is what the scenario
// author claimed it should look like.
package evidence

import "time"

// Counts holds the pass/fail/skip/error totals scraped from runner output.
type Counts struct {
	// Passed is the number of tests reported as passing.
	Passed int `json:"passed"`

	// Failed is the number of tests reported as failing.
	Failed int `json:"failed"`

	// Skipped is the number of tests reported as skipped.
	Skipped int `json:"skipped"`

	// Errors is the number of collection or setup errors.
	Errors int `json:"errors"`
}

// Total returns the number of tests accounted for across all buckets.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Errors
}

// Evidence is the observable record of one test case execution.
type Evidence struct {
	// Case is the scenario case name this evidence belongs to.
	Case string `json:"case"`

	// Command is the rendered command line that was executed.
	Command string `json:"command"`

	// ExitCode is the process exit code. -1 means the process never ran
	// or was killed before exiting.
	ExitCode int `json:"exit_code"`

	// Duration is the wall-clock time the process took.
	Duration time.Duration `json:"duration"`

	// Stdout and Stderr are the captured output streams.
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`

	// Counts holds totals scraped from the output, valid only when Parsed.
	Counts Counts `json:"counts"`

	// Parsed indicates whether a parser recognized the output format.
	Parsed bool `json:"parsed"`

	// TimedOut indicates the case hit its timeout and was killed.
	TimedOut bool `json:"timed_out,omitempty"`

	// StartedAt is when the process was spawned (UTC).
	StartedAt time.Time `json:"started_at"`
}

// Expectation describes what a scenario case claims about its own run.
// The verifier checks Evidence against this skeptically.
type Expectation struct {
	// Honeypot marks a case that is designed to fail. A honeypot that
	// passes means the harness under test is fabricating results.
	Honeypot bool `json:"honeypot,omitempty"`

	// ExpectFail means a non-zero exit is the correct outcome.
	ExpectFail bool `json:"expect_fail,omitempty"`

	// MinDuration is the shortest believable run time. Zero disables.
	MinDuration time.Duration `json:"min_duration,omitempty"`

	// MaxDuration is the longest believable run time. Zero disables.
	MaxDuration time.Duration `json:"max_duration,omitempty"`

	// RequireOutput lists substrings that must appear in stdout.
	RequireOutput []string `json:"require_output,omitempty"`

	// ForbidOutput lists regular expressions that must not match stdout.
	ForbidOutput []string `json:"forbid_output,omitempty"`

	// MinTests is the minimum believable number of tests. Zero disables.
	MinTests int `json:"min_tests,omitempty"`
}
