package flow

import (
	"testing"

	"github.com/lakeman/pbdump/internal/disasm"
	"github.com/lakeman/pbdump/internal/opcode"
)

func stmtAt(offset uint32, line uint32, mnemonic string, args ...uint16) *disasm.Statement {
	inst := &disasm.Instruction{
		Def:    opcode.Def{Mnemonic: mnemonic},
		Offset: offset,
		Args:   args,
		Line:   line,
	}
	return &disasm.Statement{Begin: inst, End: inst, StartLine: line, EndLine: line}
}

func TestClassifyBackwardLoop(t *testing.T) {
	stmts := []*disasm.Statement{
		stmtAt(0, 1, "expr"),
		stmtAt(10, 2, "expr"),
		stmtAt(20, 3, "jump_false", 10),
	}
	g := NewGraph(stmts)
	Classify(g)

	if g.Nodes[2].Kind != KindLoopUntil {
		t.Fatalf("expected loop_until, got %v", g.Nodes[2].Kind)
	}
	if len(g.Scopes) != 1 {
		t.Fatalf("expected 1 scope, got %d", len(g.Scopes))
	}
	s := g.Scopes[0]
	if s.Begin != 1 || s.End != 1 {
		t.Fatalf("unexpected loop body range: %+v", s)
	}
	if s.ContinueDest != 2 {
		t.Fatalf("expected continue dest = 2, got %d", s.ContinueDest)
	}
}

func TestClassifySingleLineIfThen(t *testing.T) {
	stmts := []*disasm.Statement{
		stmtAt(0, 1, "jump_true", 20),
		stmtAt(10, 1, "expr"),
		stmtAt(20, 2, "expr"),
	}
	g := NewGraph(stmts)
	Classify(g)

	if g.Nodes[0].Kind != KindIfThen {
		t.Fatalf("expected if_then, got %v", g.Nodes[0].Kind)
	}
	if len(g.Scopes) != 0 {
		t.Fatalf("single-line if should not need a scope, got %d", len(g.Scopes))
	}
}

func TestClassifyBlockIfEndIf(t *testing.T) {
	stmts := []*disasm.Statement{
		stmtAt(0, 1, "jump_true", 20),
		stmtAt(10, 2, "expr"),
		stmtAt(20, 3, "expr"),
	}
	g := NewGraph(stmts)
	Classify(g)

	if g.Nodes[0].Kind != KindIfThen {
		t.Fatalf("expected if_then, got %v", g.Nodes[0].Kind)
	}
	if len(g.Scopes) != 1 {
		t.Fatalf("expected 1 scope for block if, got %d", len(g.Scopes))
	}
	if g.Scopes[0].EndLabel != "end if" {
		t.Fatalf("expected end-if label, got %q", g.Scopes[0].EndLabel)
	}
}

func TestClassifyGotoInsideLoopBecomesExit(t *testing.T) {
	stmts := []*disasm.Statement{
		stmtAt(0, 1, "expr"),
		stmtAt(10, 2, "jump_goto", 40), // candidate break
		stmtAt(20, 3, "expr"),
		stmtAt(30, 4, "jump_false", 0), // closes the loop, backward
		stmtAt(40, 5, "expr"),
	}
	g := NewGraph(stmts)
	Classify(g)

	if g.Nodes[3].Kind != KindLoopUntil {
		t.Fatalf("expected loop_until at index 3, got %v", g.Nodes[3].Kind)
	}
	if g.Nodes[1].Kind != KindJumpExit {
		t.Fatalf("expected jump_exit at index 1, got %v", g.Nodes[1].Kind)
	}
}
