package fixup

import "errors"

// Sentinel errors for the fixup package.
var (
	// ErrNoRules is returned when a rules file contains no rules.
	ErrNoRules = errors.New("rules file contains no rules")

	// ErrRuleNameRequired is returned when a rule has no name.
	ErrRuleNameRequired = errors.New("rule name is required")

	// ErrPatternRequired is returned when a rule has no pattern.
	ErrPatternRequired = errors.New("rule pattern is required")

	// ErrRootRequired is returned when Apply is called without a root directory.
	ErrRootRequired = errors.New("fixup root is required")
)
