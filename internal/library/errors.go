package library

import "errors"

var (
	// ErrBadMagic is returned when a block's identifying 4-byte magic
	// does not match what the reader at that offset expects. Spec.md
	// §4.2 treats every magic mismatch as fatal (corrupt archive).
	ErrBadMagic = errors.New("pbdump: library block magic mismatch")

	// ErrNotPowerBuilder is returned when the header's marker field
	// matches neither the ASCII nor the UTF-16 "PowerBuilder" encoding.
	ErrNotPowerBuilder = errors.New("pbdump: not a PowerBuilder library file")

	// ErrTruncated is returned on EOF before a read is satisfied.
	ErrTruncated = errors.New("pbdump: truncated library file")

	// ErrEntryNotFound is returned by Find when no entry matches.
	ErrEntryNotFound = errors.New("pbdump: entry not found")
)
