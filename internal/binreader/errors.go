package binreader

import "errors"

// Sentinel errors, grounded on helper.go's var block of errors.New values.
var (
	// ErrOutsideBoundary is returned when a read would extend past the end
	// of the underlying buffer.
	ErrOutsideBoundary = errors.New("pbdump: reading data outside boundary")

	// ErrMagicMismatch is returned by Expect when the observed bytes do
	// not match the required magic sequence.
	ErrMagicMismatch = errors.New("pbdump: magic sequence mismatch")

	// ErrTruncatedEntry is returned when a stream ends before a structure
	// it was committed to producing is fully read.
	ErrTruncatedEntry = errors.New("pbdump: truncated entry stream")
)
