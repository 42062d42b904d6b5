package printer

import (
	"fmt"
	"strings"

	"github.com/lakeman/pbdump/internal/flow"
)

// PrintStatements walks g's classified statement list in order, emitting
// keyword syntax per Kind and tracking indent depth via scope entry/exit,
// per spec.md §4.8 stage 2 (original_source/disassemble.c's
// dump_statements).
func (p *Printer) PrintStatements(g *flow.Graph) string {
	var b strings.Builder
	depth := 0
	var lastLine uint32
	haveLine := false

	for i, n := range g.Nodes {
		if n.Kind == flow.KindGenerated && !p.opts.IncludeGenerated {
			continue
		}
		// ForJump/ForStep/ForTest are folded into the ForInit line by
		// renderForLoop; they must still drive scope entry/exit (handled
		// below) but contribute no line of their own.
		if n.Kind == flow.KindForJump || n.Kind == flow.KindForStep || n.Kind == flow.KindForTest {
			depth = p.exitScopesBefore(g, i, depth, &b)
			depth = p.enterScopesAfter(g, i, depth, &b)
			continue
		}

		if haveLine && n.Stmt.StartLine > lastLine+1 {
			b.WriteString("\n")
		}
		lastLine = n.Stmt.EndLine
		haveLine = true

		depth = p.exitScopesBefore(g, i, depth, &b)

		line := p.renderStatement(g, n)
		b.WriteString(strings.Repeat(p.opts.indent(), depth))
		b.WriteString(line)
		b.WriteString("\n")

		depth = p.enterScopesAfter(g, i, depth, &b)
	}
	return b.String()
}

// exitScopesBefore closes any scope whose End precedes index i. Per
// original_source/disassemble.c's dump_statements, the indent depth
// unwinds unconditionally on scope exit; EndLabel text only prints when
// the scope actually carries one (e.g. "end if"); "end try" is printed by
// the exception_end_try statement itself.
func (p *Printer) exitScopesBefore(g *flow.Graph, i, depth int, b *strings.Builder) int {
	for _, s := range g.Scopes {
		if s.End == i-1 {
			depth--
			if depth < 0 {
				depth = 0
			}
			if s.EndLabel != "" {
				b.WriteString(strings.Repeat(p.opts.indent(), depth))
				b.WriteString(s.EndLabel)
				b.WriteString("\n")
			}
		}
	}
	return depth
}

// enterScopesAfter increases depth for any scope that begins immediately
// after index i, printing the scope's Label first (at the pre-increment
// depth) when it carries one — the mechanism a finally block or a
// bottom-of-loop "do" header uses to introduce itself, since the Scope
// itself has no render-as-statement node of its own.
func (p *Printer) enterScopesAfter(g *flow.Graph, i, depth int, b *strings.Builder) int {
	for _, s := range g.Scopes {
		if s.Begin == i+1 {
			if s.Label != "" {
				b.WriteString(strings.Repeat(p.opts.indent(), depth))
				b.WriteString(s.Label)
				b.WriteString("\n")
			}
			depth++
		}
	}
	return depth
}

// renderForLoop collapses the [assign][goto][step][test] quadruple
// detectForLoop matched into one "for(<init> <cond>; <step>)" line, per
// spec.md §4.8 Scenario S4 (original_source/disassemble.c's for_init
// print case: init and step come from their statements' End expression,
// the condition is the test statement's boolean sub-expression, not the
// whole "if...then" wrapper).
func (p *Printer) renderForLoop(g *flow.Graph, n *flow.Node) string {
	init := p.RenderExpression(n.Stmt.End)

	var stepNode, testNode *flow.Node
	if n.Index+3 < len(g.Nodes) {
		stepNode, testNode = g.Nodes[n.Index+2], g.Nodes[n.Index+3]
	}
	if stepNode == nil || testNode == nil || testNode.Stmt.End == nil || len(testNode.Stmt.End.Operand) == 0 {
		return "for(" + init + ")"
	}
	step := p.RenderExpression(stepNode.Stmt.End)
	cond := p.RenderExpression(testNode.Stmt.End.Operand[0])
	return "for(" + init + " " + cond + "; " + step + ")"
}

func (p *Printer) renderStatement(g *flow.Graph, n *flow.Node) string {
	end := n.Stmt.End
	expr := p.RenderExpression(end)

	switch n.Kind {
	case flow.KindDoWhile:
		return "do while " + expr
	case flow.KindDoUntil:
		return "do until " + expr
	case flow.KindLoopWhile:
		return "loop while " + expr
	case flow.KindLoopUntil:
		return "loop until " + expr
	case flow.KindJumpLoop:
		return "loop"
	case flow.KindJumpNext:
		return "next"
	case flow.KindIfThen:
		return expr
	case flow.KindJumpElse:
		return "else"
	case flow.KindJumpElseif:
		return "else" + expr
	case flow.KindJumpExit:
		return "exit"
	case flow.KindJumpContinue:
		return "continue"
	case flow.KindExceptionTry:
		return "try"
	case flow.KindExceptionCatch:
		return "catch (" + expr + ")"
	case flow.KindExceptionEndTry:
		return "end try"
	case flow.KindExceptionGosub:
		return "gosub finally"
	case flow.KindForInit:
		return p.renderForLoop(g, n)
	case flow.KindForJump, flow.KindForStep, flow.KindForTest:
		// Unreachable: PrintStatements never calls renderStatement for
		// these, they are folded into the KindForInit line above.
		return expr
	case flow.KindChooseCase:
		return "choose case " + expr
	case flow.KindCaseIf:
		return "case " + expr
	case flow.KindCaseElse:
		return "case else"
	case flow.KindGenerated:
		return "/* generated */ " + expr
	default:
		if expr == "" {
			return fmt.Sprintf("// offset_%d:", n.Stmt.Begin.Offset)
		}
		return expr
	}
}
