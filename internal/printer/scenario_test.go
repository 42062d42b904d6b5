package printer

import (
	"strings"
	"testing"

	"github.com/lakeman/pbdump/internal/disasm"
	"github.com/lakeman/pbdump/internal/flow"
	"github.com/lakeman/pbdump/internal/opcode"
)

func defByID(id uint16) opcode.Def {
	d, _ := opcode.PB50().Lookup(id)
	return d
}

func stmtFor(offset, line uint32, inst *disasm.Instruction) *disasm.Statement {
	inst.Offset = offset
	inst.Line = line
	return &disasm.Statement{Begin: inst, End: inst, StartLine: line, EndLine: line}
}

// TestScenarioS4ForLoop is scenario S4 from the specification: a
// same-line [assign][goto][step][test] prologue followed by a body and a
// closing goto back to the test. Expected emission is a single
// "for(<init> <cond>; <step>)" line, with the quadruple's own four
// statements contributing no other lines, and a trailing "next".
func TestScenarioS4ForLoop(t *testing.T) {
	local0 := func() *disasm.Instruction { return &disasm.Instruction{Def: defByID(10), Args: []uint16{0}} }
	intLit := func(v uint16) *disasm.Instruction { return &disasm.Instruction{Def: defByID(1), Args: []uint16{v}} }

	init := &disasm.Instruction{Def: defByID(50), Operand: []*disasm.Instruction{local0(), intLit(1)}}
	step := &disasm.Instruction{Def: defByID(51), Operand: []*disasm.Instruction{local0(), intLit(1)}}
	cond := &disasm.Instruction{Def: defByID(35), Operand: []*disasm.Instruction{local0(), intLit(10)}}
	test := &disasm.Instruction{Def: defByID(90), Args: []uint16{50}, Operand: []*disasm.Instruction{cond}}

	stmts := []*disasm.Statement{
		stmtFor(0, 10, init),
		stmtFor(10, 10, &disasm.Instruction{Def: defByID(92), Args: []uint16{20}}), // goto step
		stmtFor(20, 10, step),
		stmtFor(30, 10, test), // if i<=10 then, branch to offset50 (exit)
		stmtFor(40, 11, &disasm.Instruction{Def: defByID(1), Args: []uint16{7}}),    // body
		stmtFor(41, 12, &disasm.Instruction{Def: defByID(92), Args: []uint16{30}}), // closing goto, back to test
		stmtFor(50, 13, &disasm.Instruction{Def: defByID(1), Args: []uint16{0}}),   // after loop
	}
	g := flow.NewGraph(stmts)
	flow.Classify(g)

	if g.Nodes[0].Kind != flow.KindForInit {
		t.Fatalf("expected quadruple to classify as a for-loop, init Kind = %v", g.Nodes[0].Kind)
	}

	p := New(Options{}, stubResolver{})
	out := p.PrintStatements(g)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	forLines := 0
	for _, l := range lines {
		if strings.Contains(l, "goto") {
			t.Fatalf("ForJump must not render as a bare goto, got line %q in:\n%s", l, out)
		}
		if strings.HasPrefix(strings.TrimSpace(l), "for(") {
			forLines++
			if !strings.Contains(l, "<=") || !strings.Contains(l, ";") {
				t.Fatalf("expected collapsed for(init cond; step) line, got %q", l)
			}
		}
	}
	if forLines != 1 {
		t.Fatalf("expected exactly one collapsed for-loop line, got %d in:\n%s", forLines, out)
	}
	if !strings.Contains(out, "next") {
		t.Fatalf("expected a closing next statement, got:\n%s", out)
	}
}

// TestScenarioS5TryCatchFinally is scenario S5 from the specification: a
// try/catch with a gosub-driven finally block. Expected emission is a
// try/catch(.../finally/end try line sequence, with the guarded body and
// the finally body indented one level deeper than their introducing
// keyword lines.
func TestScenarioS5TryCatchFinally(t *testing.T) {
	endTryDef, _ := opcode.PB105().Lookup(104)

	tryInst := &disasm.Instruction{Def: defByID(100), Args: []uint16{30, 70}} // catch@30, end@70
	catchInst := &disasm.Instruction{Def: defByID(101), Args: []uint16{0}}
	gosubInst := &disasm.Instruction{Def: defByID(103), Args: []uint16{50}} // targets offset 50 (finally body)
	endTryInst := &disasm.Instruction{Def: endTryDef}

	stmts := []*disasm.Statement{
		stmtFor(0, 20, tryInst),
		stmtFor(10, 21, &disasm.Instruction{Def: defByID(1), Args: []uint16{1}}),  // guarded body
		stmtFor(20, 21, &disasm.Instruction{Def: defByID(102)}),                   // pop_try
		stmtFor(30, 22, catchInst),                                                // catch
		stmtFor(40, 23, &disasm.Instruction{Def: defByID(1), Args: []uint16{2}}), // catch body
		stmtFor(50, 24, &disasm.Instruction{Def: defByID(1), Args: []uint16{3}}), // finally body
		stmtFor(60, 25, gosubInst),                                                // gosub finally
		stmtFor(70, 26, endTryInst),                                               // end try
	}
	g := flow.NewGraph(stmts)
	flow.Classify(g)

	p := New(Options{}, stubResolver{})
	out := p.PrintStatements(g)

	tryIdx := strings.Index(out, "try")
	catchIdx := strings.Index(out, "catch (")
	finallyIdx := strings.Index(out, "finally")
	endTryIdx := strings.Index(out, "end try")
	if tryIdx < 0 || catchIdx < 0 || finallyIdx < 0 || endTryIdx < 0 {
		t.Fatalf("expected try/catch/finally/end try all present, got:\n%s", out)
	}
	if !(tryIdx < catchIdx && catchIdx < finallyIdx && finallyIdx < endTryIdx) {
		t.Fatalf("expected try < catch < finally < end try ordering, got:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	indentOf := func(line string) int {
		return len(line) - len(strings.TrimLeft(line, p.opts.indent()))
	}
	var finallyBodyLine, finallyLine string
	for i, l := range lines {
		if strings.TrimSpace(l) == "finally" {
			finallyLine = l
			if i+1 < len(lines) {
				finallyBodyLine = lines[i+1]
			}
		}
	}
	if finallyLine == "" || finallyBodyLine == "" {
		t.Fatalf("could not locate finally block body, got:\n%s", out)
	}
	if indentOf(finallyBodyLine) <= indentOf(finallyLine) {
		t.Fatalf("expected finally body indented deeper than the finally line, got %q then %q", finallyLine, finallyBodyLine)
	}
}
