// Package disasm simulates the p-code operand stack to recover an
// expression-tree IR and a flat statement list from a script's raw
// code buffer, grounded on original_source/disassemble.c's
// disassemble_script and spec.md §4.6.
package disasm

import "github.com/lakeman/pbdump/internal/opcode"

// DebugLine maps a p-code offset to a 1-based source line number. It
// mirrors classgroup.DebugLine without importing that package, keeping
// disasm usable standalone (spec.md §5's per-arena isolation).
type DebugLine struct {
	LineNumber  uint32
	PCodeOffset uint32
}

// Instruction is one decoded p-code operation plus its resolved operand
// back-edges (spec.md §4.6 step 3's "stack[]").
type Instruction struct {
	Def     opcode.Def
	Offset  uint32
	Args    []uint16
	Operand []*Instruction
	Line    uint32
}

// Statement is a maximal run of instructions between two points where
// the simulated stack is empty (spec.md §4.6 steps 4-5). Classification
// (loop/if/jump/etc) is layered on top by internal/flow.
type Statement struct {
	Begin     *Instruction
	End       *Instruction
	StartLine uint32
	EndLine   uint32
}

// Result is the full decode of one script body.
type Result struct {
	Instructions []*Instruction
	Statements   []*Statement

	// Anomalies collects non-fatal simulation oddities (stack overflow,
	// non-empty stack at termination), per spec.md §4.6's "warn, not
	// crash" policy.
	Anomalies []string
}
