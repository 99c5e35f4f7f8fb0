package scanresult

import "errors"

// Domain errors for scan results.
var (
	ErrNotFound = errors.New("scan not found")
	// ErrVersionConflict indicates a replace raced with a concurrent writer;
	// the caller should re-read and retry.
	ErrVersionConflict = errors.New("scan result version conflict")
)
