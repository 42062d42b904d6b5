// Package flow reconstructs control-flow structure (loops, conditionals,
// exception blocks, for-loops) from a flat disassembled statement list,
// grounded on original_source/disassemble.c's structuring pass
// (insert_scope, classify_if_then, link_destinations) and spec.md §4.7.
package flow

import "github.com/lakeman/pbdump/internal/disasm"

// Kind classifies one statement's control-flow role. Expressions are the
// default (zero value) per spec.md §4.7.
type Kind int

const (
	KindExpression Kind = iota
	KindGenerated
	KindMemAppend

	KindJumpTrue
	KindJumpFalse
	KindJumpGoto

	KindDoWhile
	KindDoUntil
	KindLoopWhile
	KindLoopUntil
	KindJumpLoop
	KindJumpNext

	KindIfThen
	KindJumpElse
	KindJumpElseif
	KindChooseCase
	KindCaseIf
	KindCaseElse

	KindForInit
	KindForJump
	KindForStep
	KindForTest

	KindExceptionTry
	KindExceptionCatch
	KindExceptionEndTry
	KindExceptionGosub

	KindJumpExit
	KindJumpContinue
)

// Node wraps a disassembled Statement with its control-flow
// classification and jump linkage.
type Node struct {
	Stmt  *disasm.Statement
	Index int
	Kind  Kind

	// Branch is the target statement of a jumping statement, resolved by
	// byte-offset match (Phase A).
	Branch *Node
	// DestinationCount counts incoming jumps to this statement.
	DestinationCount int
}

// Scope is a strictly-nested lexical region over the statement index
// range [Begin, End] (inclusive), carrying the label text the printer
// emits on entry/exit (spec.md §4.8).
type Scope struct {
	Begin, End int
	Label      string
	EndLabel   string

	IsException   bool
	BreakDest     int // statement index; -1 if none
	ContinueDest  int // statement index; -1 if none
}

// Graph is the fully classified control-flow reconstruction of one
// script's statement list.
type Graph struct {
	Nodes  []*Node
	Scopes []*Scope

	byOffset map[uint32]*Node
}
