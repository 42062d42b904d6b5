// Package printer turns a disassembled, flow-classified script body back
// into PowerScript-looking source text, grounded on
// original_source/disassemble.c's printf_instruction/dump_statements and
// original_source/output.c's declaration printers, per spec.md §4.8.
package printer

import "github.com/lakeman/pbdump/internal/log"

// Options configures a Printer, mirroring the teacher's Options-struct
// convention.
type Options struct {
	// IndentWith is repeated once per nesting level. Defaults to a tab.
	IndentWith string

	// IncludeGenerated surfaces compiler-generated statements normally
	// suppressed in emitted source (spec.md §4.8).
	IncludeGenerated bool

	Logger *log.Helper
}

func (o Options) logger() *log.Helper {
	if o.Logger == nil {
		return log.NewHelper(nil)
	}
	return o.Logger
}

func (o Options) indent() string {
	if o.IndentWith == "" {
		return "\t"
	}
	return o.IndentWith
}

// Resolver supplies the display names an instruction's print-template
// needs for local/shared/external variable slots, type indices, and
// resource-table entries. A script's VariableDef/ArgumentDef lists and
// its classgroup.Group are the natural backing store; printer stays
// decoupled from classgroup by only depending on this interface.
type Resolver interface {
	Local(idx int) string
	Shared(idx int) string
	Ext(idx int) string
	Type(idx int) string
	FuncClass(idx int) string
	Resource(idx int) (string, error)
	ResourceString(idx int) (string, error)
	ResourceStringConst(idx int) (string, error)
}

// Printer renders statements and declarations with a shared set of
// options and name resolver.
type Printer struct {
	opts     Options
	resolver Resolver
}

// New constructs a Printer.
func New(opts Options, resolver Resolver) *Printer {
	return &Printer{opts: opts, resolver: resolver}
}
