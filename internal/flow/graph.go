package flow

import "github.com/lakeman/pbdump/internal/disasm"

func isMnemonic(n *Node, names ...string) bool {
	if n == nil || n.Stmt == nil || n.Stmt.End == nil {
		return false
	}
	m := n.Stmt.End.Def.Mnemonic
	for _, want := range names {
		if m == want {
			return true
		}
	}
	return false
}

// NewGraph builds the initial per-statement node list (Kind still
// unclassified except for the raw jump/try shapes every later phase
// dispatches on) and resolves jump targets by pcode-offset match
// (spec.md §4.7 Phase A, statement-linking half).
func NewGraph(stmts []*disasm.Statement) *Graph {
	g := &Graph{
		Nodes:    make([]*Node, len(stmts)),
		byOffset: make(map[uint32]*Node, len(stmts)),
	}
	for i, s := range stmts {
		n := &Node{Stmt: s, Index: i}
		g.Nodes[i] = n
		if s.Begin != nil {
			g.byOffset[s.Begin.Offset] = n
		}
	}

	for _, n := range g.Nodes {
		if n.Stmt.End == nil {
			continue
		}
		switch n.Stmt.End.Def.Mnemonic {
		case "jump_true":
			n.Kind = KindJumpTrue
		case "jump_false":
			n.Kind = KindJumpFalse
		case "jump_goto":
			n.Kind = KindJumpGoto
		case "exception_try":
			n.Kind = KindExceptionTry
		case "exception_end_try":
			n.Kind = KindExceptionEndTry
		}
		if target, ok := jumpTargetOffset(n.Stmt.End); ok {
			if dst := g.byOffset[target]; dst != nil {
				n.Branch = dst
				dst.DestinationCount++
			}
		}
	}
	return g
}

// jumpTargetOffset returns the single-target pcode offset a jump_true /
// jump_false / jump_goto instruction's first immediate encodes.
func jumpTargetOffset(inst *disasm.Instruction) (uint32, bool) {
	switch inst.Def.Mnemonic {
	case "jump_true", "jump_false", "jump_goto", "gosub":
		if len(inst.Args) < 1 {
			return 0, false
		}
		return uint32(inst.Args[0]), true
	}
	return 0, false
}

// exceptionTargets returns an exception_try instruction's
// {catch_offset, end_offset} pair.
func exceptionTargets(inst *disasm.Instruction) (catch, end uint32, ok bool) {
	if inst.Def.Mnemonic != "exception_try" || len(inst.Args) < 2 {
		return 0, 0, false
	}
	return uint32(inst.Args[0]), uint32(inst.Args[1]), true
}

// assignmentTarget identifies the local/shared/external slot an
// assignment instruction's lvalue operand refers to, so callers can
// compare two assignments for "same variable" (spec.md §4.7 Phase B).
// It reports ok=false for anything but a direct slot reference.
func assignmentTarget(inst *disasm.Instruction) (mnemonic string, slot uint16, ok bool) {
	if inst == nil || len(inst.Operand) == 0 || inst.Operand[0] == nil {
		return "", 0, false
	}
	lvalue := inst.Operand[0]
	switch lvalue.Def.Mnemonic {
	case "push_local", "push_shared", "push_ext":
		if len(lvalue.Args) == 0 {
			return "", 0, false
		}
		return lvalue.Def.Mnemonic, lvalue.Args[0], true
	default:
		return "", 0, false
	}
}

func (g *Graph) byIndex(i int) *Node {
	if i < 0 || i >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[i]
}

func (g *Graph) find(offset uint32) *Node { return g.byOffset[offset] }
