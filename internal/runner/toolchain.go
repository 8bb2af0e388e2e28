// Package runner executes test commands and scrapes their output into
// evidence the verifier can cross-examine.
package runner

import (
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultPytestCommand is the default pytest invocation.
	DefaultPytestCommand = "pytest"
	// DefaultGoCommand is the default go toolchain command.
	DefaultGoCommand = "go"
	// DefaultPythonCommand is the default python interpreter.
	DefaultPythonCommand = "python3"
	// DefaultShell is the shell used for raw command cases.
	DefaultShell = "sh"
)

// Toolchain contains the effective commands the runner shells out to.
type Toolchain struct {
	PytestCommand string
	GoCommand     string
	PythonCommand string
	Shell         string
}

// ToolchainFlagSet tracks which fields were explicitly set by command-line flags.
type ToolchainFlagSet struct {
	PytestCommand bool
	GoCommand     bool
	PythonCommand bool
	Shell         bool
}

// ResolveToolchainOptions controls deterministic toolchain resolution.
type ResolveToolchainOptions struct {
	// Config contains values loaded from config files.
	Config Toolchain
	// FlagValues contains command-line values.
	FlagValues Toolchain
	// FlagSet indicates which FlagValues were explicitly set by the user.
	FlagSet ToolchainFlagSet
	// EnvLookup returns environment variable values; defaults to os.Getenv.
	EnvLookup func(string) string
}

// ResolveToolchain resolves command configuration with precedence:
// flags > env > config > defaults.
func ResolveToolchain(opts ResolveToolchainOptions) (Toolchain, error) {
	lookup := opts.EnvLookup
	if lookup == nil {
		lookup = os.Getenv
	}

	tc := Toolchain{
		PytestCommand: DefaultPytestCommand,
		GoCommand:     DefaultGoCommand,
		PythonCommand: DefaultPythonCommand,
		Shell:         DefaultShell,
	}

	applyConfigField(&tc.PytestCommand, opts.Config.PytestCommand)
	applyConfigField(&tc.GoCommand, opts.Config.GoCommand)
	applyConfigField(&tc.PythonCommand, opts.Config.PythonCommand)
	applyConfigField(&tc.Shell, opts.Config.Shell)

	if v := strings.TrimSpace(lookup("SKEPTIC_PYTEST_COMMAND")); v != "" {
		tc.PytestCommand = v
	}
	if v := strings.TrimSpace(lookup("SKEPTIC_GO_COMMAND")); v != "" {
		tc.GoCommand = v
	}
	if v := strings.TrimSpace(lookup("SKEPTIC_PYTHON_COMMAND")); v != "" {
		tc.PythonCommand = v
	}
	if v := strings.TrimSpace(lookup("SKEPTIC_SHELL")); v != "" {
		tc.Shell = v
	}

	if opts.FlagSet.PytestCommand {
		tc.PytestCommand = opts.FlagValues.PytestCommand
	}
	if opts.FlagSet.GoCommand {
		tc.GoCommand = opts.FlagValues.GoCommand
	}
	if opts.FlagSet.PythonCommand {
		tc.PythonCommand = opts.FlagValues.PythonCommand
	}
	if opts.FlagSet.Shell {
		tc.Shell = opts.FlagValues.Shell
	}

	tc.PytestCommand = normalizeCommand(tc.PytestCommand, DefaultPytestCommand)
	tc.GoCommand = normalizeCommand(tc.GoCommand, DefaultGoCommand)
	tc.PythonCommand = normalizeCommand(tc.PythonCommand, DefaultPythonCommand)
	tc.Shell = normalizeCommand(tc.Shell, DefaultShell)

	return tc, nil
}

// CommandFor returns the resolved command for a runner kind.
func (tc Toolchain) CommandFor(kind string) (string, error) {
	switch NormalizeKind(kind) {
	case KindPytest:
		return tc.PytestCommand, nil
	case KindGotest:
		return tc.GoCommand, nil
	case KindCommand:
		return tc.Shell, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRunnerKind, kind)
	}
}

// Runner kinds a scenario case can declare.
const (
	KindPytest  = "pytest"
	KindGotest  = "gotest"
	KindCommand = "command"
)

// NormalizeKind canonicalizes a runner kind value.
func NormalizeKind(kind string) string {
	normalized := strings.ToLower(strings.TrimSpace(kind))
	if normalized == "" {
		return KindCommand
	}
	return normalized
}

// ValidateKind validates the runner kind domain.
func ValidateKind(kind string) error {
	switch NormalizeKind(kind) {
	case KindPytest, KindGotest, KindCommand:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: pytest|gotest|command)", ErrUnknownRunnerKind, kind)
	}
}

func applyConfigField(dest *string, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" {
		*dest = trimmed
	}
}

func normalizeCommand(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
