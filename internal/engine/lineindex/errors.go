package lineindex

import "errors"

// Errors returned by index operations.
var (
	// ErrLineOutOfRange indicates a line number past the last line.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrRangeInvalid indicates an edit range whose end precedes its start.
	ErrRangeInvalid = errors.New("invalid range")
)
