package datatable

import "errors"

var (
	// ErrNullHandle is returned by LookupPointer/LookupString for the
	// 0xFFFF null sentinel offset.
	ErrNullHandle = errors.New("pbdump: null handle")

	// ErrUnknownStructureType is returned when an indirect-argument
	// resource carries an unrecognised kind. FormatResource itself renders
	// an unknown structure type as hex rather than returning this error.
	ErrUnknownStructureType = errors.New("pbdump: unknown structure type")

	// ErrOffsetOutOfBounds is returned when a resolved handle offset
	// falls outside the owning table's data region (spec invariant #7).
	ErrOffsetOutOfBounds = errors.New("pbdump: handle offset out of bounds")
)

// nullHandle is the 0xFFFF sentinel used throughout the binary format to
// mean "no value", per the GLOSSARY and spec.md §3/§4.3.
const nullHandle = 0xFFFF

// mainTableBit marks an offset as referring to the class-group's main
// table rather than the local table (spec.md §3 Data table).
const mainTableBit = 0x80000000
