package printer

import (
	"strings"
	"testing"

	"github.com/lakeman/pbdump/internal/disasm"
	"github.com/lakeman/pbdump/internal/flow"
	"github.com/lakeman/pbdump/internal/opcode"
)

type stubResolver struct{}

func (stubResolver) Local(idx int) string              { return "li_count" }
func (stubResolver) Shared(idx int) string              { return "is_shared" }
func (stubResolver) Ext(idx int) string                 { return "ext_var" }
func (stubResolver) Type(idx int) string                { return "n_customer" }
func (stubResolver) FuncClass(idx int) string           { return "n_customer" }
func (stubResolver) Resource(idx int) (string, error)    { return "res", nil }
func (stubResolver) ResourceString(idx int) (string, error) { return "\"hi\"", nil }
func (stubResolver) ResourceStringConst(idx int) (string, error) {
	return "\"hi\"", nil
}

func push(id uint16, args ...uint16) *disasm.Instruction {
	table := opcode.PB50()
	def, _ := table.Lookup(id)
	return &disasm.Instruction{Def: def, Args: args}
}

func binary(id uint16, left, right *disasm.Instruction) *disasm.Instruction {
	table := opcode.PB50()
	def, _ := table.Lookup(id)
	return &disasm.Instruction{Def: def, Operand: []*disasm.Instruction{left, right}}
}

func TestRenderExpressionSimpleArithmetic(t *testing.T) {
	p := New(Options{}, stubResolver{})
	a := push(1, 2)  // push_int 2
	b := push(1, 3)  // push_int 3
	add := binary(20, a, b)

	got := p.RenderExpression(add)
	if got != "2+3" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderExpressionParenthesizesLowerPrecedenceChild(t *testing.T) {
	p := New(Options{}, stubResolver{})
	a := push(1, 1)
	b := push(1, 2)
	add := binary(20, a, b) // precAddSub

	c := push(1, 3)
	mult := binary(22, add, c) // precMulDiv > precAddSub, left child must be wrapped

	got := p.RenderExpression(mult)
	if got != "(1+2)*3" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderExpressionRightAssociativeTieBreak(t *testing.T) {
	p := New(Options{}, stubResolver{})
	inner := binary(20, push(1, 1), push(1, 2)) // 1+2, precAddSub
	outer := binary(20, push(1, 0), inner)       // 0+(1+2), same precedence on the right

	got := p.RenderExpression(outer)
	if got != "0+(1+2)" {
		t.Fatalf("got %q", got)
	}
}

// namedLocalResolver resolves push_local slots 0-3 to a, b, c, d, for
// scenario S3 below.
type namedLocalResolver struct{ stubResolver }

func (namedLocalResolver) Local(idx int) string {
	return []string{"a", "b", "c", "d"}[idx]
}

// TestScenarioS3ExpressionPrecedence is scenario S3 from the
// specification: a - (b + c) * d, built from PUSH a; PUSH b; PUSH c; ADD;
// PUSH d; MULT; SUB. Expected: parens around (b + c), none around the
// whole right-hand multiplication.
func TestScenarioS3ExpressionPrecedence(t *testing.T) {
	p := New(Options{}, namedLocalResolver{})
	localPush := func(slot uint16) *disasm.Instruction { return push(10, slot) }

	a, b, c, d := localPush(0), localPush(1), localPush(2), localPush(3)
	add := binary(20, b, c)   // b+c, precAddSub
	mult := binary(22, add, d) // (b+c)*d, precMulDiv
	sub := binary(21, a, mult) // a-(b+c)*d, precAddSub

	got := p.RenderExpression(sub)
	if got != "a-(b+c)*d" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderExpressionLocalVariable(t *testing.T) {
	p := New(Options{}, stubResolver{})
	inst := push(10, 0) // push_local
	got := p.RenderExpression(inst)
	if got != "li_count" {
		t.Fatalf("got %q", got)
	}
}

func stmtAt(offset, line uint32, mnemonic string) *disasm.Statement {
	table := opcode.PB50()
	var def opcode.Def
	for _, id := range []uint16{90, 91, 92} {
		d, _ := table.Lookup(id)
		if d.Mnemonic == mnemonic {
			def = d
		}
	}
	inst := &disasm.Instruction{Def: def, Offset: offset, Args: []uint16{0}, Line: line}
	return &disasm.Statement{Begin: inst, End: inst, StartLine: line, EndLine: line}
}

func TestPrintStatementsRendersBlockIf(t *testing.T) {
	stmts := []*disasm.Statement{
		stmtAt(0, 1, "jump_true"),
		stmtAt(10, 2, "jump_true"),
		stmtAt(20, 3, "jump_true"),
	}
	stmts[0].End.Args = []uint16{20}
	g := flow.NewGraph(stmts)
	flow.Classify(g)

	p := New(Options{}, stubResolver{})
	out := p.PrintStatements(g)
	if !strings.Contains(out, "end if") {
		t.Fatalf("expected an end-if label in output, got:\n%s", out)
	}
}
