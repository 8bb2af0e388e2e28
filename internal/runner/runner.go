package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/boshu2/skeptic/internal/evidence"
)

// Spec describes one command execution request.
type Spec struct {
	// Case is the scenario case name, carried through to the evidence.
	Case string

	// Kind selects the runner: pytest, gotest, or command.
	Kind string

	// Args are the arguments for the resolved command. For the command
	// kind they form a single shell command line.
	Args []string

	// Workdir is the directory to run in. Empty means inherit.
	Workdir string

	// Timeout kills the process when exceeded. Zero disables.
	Timeout time.Duration
}

// Run executes the spec and returns the evidence it left behind. A non-zero
// exit code is data, not an error: verification decides what it means.
// Errors are reserved for runs that never produced evidence (bad kind,
// unstartable command).
func Run(ctx context.Context, tc Toolchain, spec Spec) (evidence.Evidence, error) {
	command, err := tc.CommandFor(spec.Kind)
	if err != nil {
		return evidence.Evidence{}, err
	}

	argv, err := buildArgv(command, spec)
	if err != nil {
		return evidence.Evidence{}, err
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if spec.Workdir != "" {
		cmd.Dir = spec.Workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now().UTC()
	runErr := cmd.Run()
	duration := time.Since(started)

	ev := evidence.Evidence{
		Case:      spec.Case,
		Command:   strings.Join(argv, " "),
		Duration:  duration,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		StartedAt: started,
		ExitCode:  0,
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		// A killed-on-timeout process also surfaces as an ExitError, so the
		// deadline check has to come first.
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			ev.ExitCode = -1
			ev.TimedOut = true
		case errors.As(runErr, &exitErr):
			ev.ExitCode = exitErr.ExitCode()
		default:
			return evidence.Evidence{}, fmt.Errorf("run %s: %w", spec.Case, runErr)
		}
	}

	ev.Counts, ev.Parsed = ParseOutput(spec.Kind, ev.Stdout)

	return ev, nil
}

// buildArgv assembles the argv for a spec. pytest and gotest kinds exec the
// resolved binary directly; the command kind goes through the shell so that
// pipelines and redirects in scenario files keep working.
func buildArgv(command string, spec Spec) ([]string, error) {
	switch NormalizeKind(spec.Kind) {
	case KindPytest:
		return append([]string{command}, spec.Args...), nil
	case KindGotest:
		return append([]string{command, "test"}, spec.Args...), nil
	case KindCommand:
		line := strings.TrimSpace(strings.Join(spec.Args, " "))
		if line == "" {
			return nil, fmt.Errorf("%w: case %q", ErrEmptyCommand, spec.Case)
		}
		return []string{command, "-c", line}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRunnerKind, spec.Kind)
	}
}
