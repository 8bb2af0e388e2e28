package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrUnknownRunnerKind is returned for a runner kind outside pytest|gotest|command.
	ErrUnknownRunnerKind = errors.New("unknown runner kind")

	// ErrEmptyCommand is returned when a case resolves to an empty command line.
	ErrEmptyCommand = errors.New("empty command")
)
