// Package opcode declares the per-compiler-version p-code instruction
// catalogue, grounded on spec.md §4.5 and original_source/disassemble.c's
// opcode dispatch tables (execute_opcode / describe_opcode).
package opcode

// StackDiscipline tags how an instruction interacts with the
// disassembler's simulated operand stack (spec.md §4.5).
type StackDiscipline int

const (
	DisciplineNone StackDiscipline = iota
	DisciplineUnknown
	DisciplineResult
	DisciplineResultIndirect
	DisciplineAction
	DisciplineActionIndirect
	DisciplinePopN
	DisciplinePopNIndirect
	DisciplineTweak
	DisciplineTweak1
	DisciplineClone
	DisciplinePeekResult
	DisciplinePeekResultIndirect
	DisciplineDotCall
	DisciplineClassCall
)

// Operation classifies an opcode for the control-flow and printer stages
// (spec.md §4.5's "Operation kinds (for later classification)").
type Operation int

const (
	OpOther Operation = iota
	OpEQ
	OpNE
	OpGT
	OpLT
	OpGE
	OpLE
	OpCat
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpPower
	OpNegate
	OpAnd
	OpOr
	OpNot
	OpAssign
	OpAssignIncr
	OpAssignDecr
	OpAssignAdd
	OpAssignSub
	OpAssignMult
	OpConst
	OpConvert
)

// TokenKind tags one element of a print-template (spec.md §4.5).
type TokenKind int

const (
	TokLiteral TokenKind = iota
	TokStack
	TokStackCSV
	TokStackDotCSV
	TokLocal
	TokShared
	TokExt
	TokType
	TokArgInt
	TokArgBool
	TokArgLong
	TokArgLongHex
	TokArgCSV
	TokMethodFlags
	TokFuncClass
	TokRes
	TokResString
	TokResStringConst
	TokEnd
)

// Token is one element of an instruction's print-template.
type Token struct {
	Kind    TokenKind
	Literal string // valid when Kind == TokLiteral
	ArgIdx  int    // index into the instruction's immediate args, where applicable
}

// Def is one opcode's full declarative row (spec.md §4.5).
type Def struct {
	ID          uint16
	Mnemonic    string
	ArgCount    int
	Discipline  StackDiscipline
	StackArg    int
	Precedence  int
	Operation   Operation
	Template    []Token
}

// Table is a compiler-version-specific opcode catalogue, indexed by
// opcode ID.
type Table struct {
	Version int
	byID    map[uint16]Def
}

func newTable(version int, defs []Def) *Table {
	t := &Table{Version: version, byID: make(map[uint16]Def, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t
}

// Lookup returns the Def for id, and whether it was found.
func (t *Table) Lookup(id uint16) (Def, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// Token constructors, for terse catalogue construction below.
func lit(s string) Token           { return Token{Kind: TokLiteral, Literal: s} }
func stack(i int) Token            { return Token{Kind: TokStack, ArgIdx: i} }
func stackCSV() Token              { return Token{Kind: TokStackCSV} }
func stackDotCSV() Token           { return Token{Kind: TokStackDotCSV} }
func local(i int) Token            { return Token{Kind: TokLocal, ArgIdx: i} }
func shared(i int) Token           { return Token{Kind: TokShared, ArgIdx: i} }
func ext(i int) Token              { return Token{Kind: TokExt, ArgIdx: i} }
func typ(i int) Token              { return Token{Kind: TokType, ArgIdx: i} }
func argInt(i int) Token           { return Token{Kind: TokArgInt, ArgIdx: i} }
func argBool(i int) Token          { return Token{Kind: TokArgBool, ArgIdx: i} }
func argLong(i int) Token          { return Token{Kind: TokArgLong, ArgIdx: i} }
func argLongHex(i int) Token       { return Token{Kind: TokArgLongHex, ArgIdx: i} }
func argCSV() Token                { return Token{Kind: TokArgCSV} }
func methodFlags(i int) Token      { return Token{Kind: TokMethodFlags, ArgIdx: i} }
func funcClass() Token             { return Token{Kind: TokFuncClass} }
func res(i int) Token              { return Token{Kind: TokRes, ArgIdx: i} }
func resString(i int) Token        { return Token{Kind: TokResString, ArgIdx: i} }
func resStringConst(i int) Token   { return Token{Kind: TokResStringConst, ArgIdx: i} }
func end() Token                   { return Token{Kind: TokEnd} }
