package hunter

import "errors"

// Sentinel errors for the hunter package.
var (
	// ErrRootRequired is returned when Scan is called without a root directory.
	ErrRootRequired = errors.New("scan root is required")
)
