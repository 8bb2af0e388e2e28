package verify

import "errors"

// Sentinel errors for the verify package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrNoChecks is returned when Verify is invoked with no applicable checks.
	ErrNoChecks = errors.New("no applicable checks")

	// ErrBadForbidPattern is returned when a forbid_output regexp does not compile.
	ErrBadForbidPattern = errors.New("invalid forbid_output pattern")
)
