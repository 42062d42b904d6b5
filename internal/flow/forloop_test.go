package flow

import (
	"testing"

	"github.com/lakeman/pbdump/internal/disasm"
	"github.com/lakeman/pbdump/internal/opcode"
)

// assignStmtTo builds an assignment statement whose lvalue operand is a
// direct push_local reference to slot, for exercising detectForLoop's
// same-variable check.
func assignStmtTo(offset, line uint32, slot uint16) *disasm.Statement {
	lvalue := &disasm.Instruction{Def: opcode.Def{Mnemonic: "push_local"}, Args: []uint16{slot}}
	inst := &disasm.Instruction{
		Def:     opcode.Def{Mnemonic: "assign"},
		Offset:  offset,
		Line:    line,
		Operand: []*disasm.Instruction{lvalue, nil},
	}
	return &disasm.Statement{Begin: inst, End: inst, StartLine: line, EndLine: line}
}

// forLoopQuadruple builds the six-statement shape detectForLoop expects:
// [assign(init)][goto step][assign(step)][if-test][goto closes body back
// to test], with the init and step assignments targeting initSlot and
// stepSlot respectively.
func forLoopQuadruple(initSlot, stepSlot uint16) []*disasm.Statement {
	return []*disasm.Statement{
		assignStmtTo(0, 10, initSlot),
		stmtAt(10, 10, "jump_goto", 20),
		assignStmtTo(20, 10, stepSlot),
		stmtAt(30, 10, "jump_true", 50),
		stmtAt(40, 11, "jump_goto", 30),
		stmtAt(50, 12, "expr"),
	}
}

func TestDetectForLoopSameVariableClassifiesAsForLoop(t *testing.T) {
	g := NewGraph(forLoopQuadruple(0, 0))
	Classify(g)

	if g.Nodes[0].Kind != KindForInit {
		t.Fatalf("expected KindForInit at index 0, got %v", g.Nodes[0].Kind)
	}
	if g.Nodes[1].Kind != KindForJump {
		t.Fatalf("expected KindForJump at index 1, got %v", g.Nodes[1].Kind)
	}
	if g.Nodes[2].Kind != KindForStep {
		t.Fatalf("expected KindForStep at index 2, got %v", g.Nodes[2].Kind)
	}
	if g.Nodes[3].Kind != KindForTest {
		t.Fatalf("expected KindForTest at index 3, got %v", g.Nodes[3].Kind)
	}
	if g.Nodes[4].Kind != KindJumpNext {
		t.Fatalf("expected KindJumpNext at index 4, got %v", g.Nodes[4].Kind)
	}
}

// TestDetectForLoopRejectsDifferentVariable covers spec.md §4.7 Phase B's
// requirement that the prologue's assignment and step act on the same
// variable: a same-line quadruple touching unrelated slots must not be
// classified as a for-loop, even though it shares every other shape.
func TestDetectForLoopRejectsDifferentVariable(t *testing.T) {
	g := NewGraph(forLoopQuadruple(0, 1))
	Classify(g)

	if g.Nodes[3].Kind == KindForTest {
		t.Fatalf("quadruple assigning different variables must not classify as a for-loop")
	}
	if g.Nodes[0].Kind == KindForInit {
		t.Fatalf("init assignment must not be reclassified when the variable check fails")
	}
}
