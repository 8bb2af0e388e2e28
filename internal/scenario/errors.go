package scenario

import "errors"

// Sentinel errors for the scenario package.
var (
	// ErrDuplicateCase is returned when two cases share a name.
	ErrDuplicateCase = errors.New("duplicate case name")

	// ErrNoHoneypot is returned when a suite declares no honeypot case
	// and does not opt out via allow_no_honeypot.
	ErrNoHoneypot = errors.New("suite has no honeypot case")
)
