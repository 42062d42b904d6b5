package classgroup

import "errors"

var (
	// ErrUnsupportedVersion is returned when the class-group's compiler
	// version predates PB6, the minimum spec.md §4.4 step 1 requires.
	ErrUnsupportedVersion = errors.New("pbdump: class-group compiler version below PB6")

	// ErrStreamNotExhausted is returned when the decoder finishes
	// reading a class-group but bytes remain in the entry stream.
	ErrStreamNotExhausted = errors.New("pbdump: class-group stream not exhausted after decode")

	// ErrClassCountMismatch is returned when the number of decoded class
	// records does not match the header's class_count.
	ErrClassCountMismatch = errors.New("pbdump: decoded class count does not match header")

	// ErrScriptLinkFailed is returned when a script_header's method_id
	// has no matching short_header entry.
	ErrScriptLinkFailed = errors.New("pbdump: script header has no matching short header")
)
