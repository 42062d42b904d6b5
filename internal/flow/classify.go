package flow

// Classify runs the full structuring pass (spec.md §4.7 Phases A-E) over
// a graph already built by NewGraph.
func Classify(g *Graph) {
	linkExceptionScopes(g)
	classifyConditionals(g)
	tailClassification(g)
	reclassifyFreeGotos(g)
	markGenerated(g)
}

// linkExceptionScopes completes Phase A for exception_try statements:
// locate the catch statement, the end statement (possibly preceded by a
// gosub to a finally block), and the last pop_try, then insert the
// guarded-region scope and an optional "finally" scope.
func linkExceptionScopes(g *Graph) {
	for _, n := range g.Nodes {
		if n.Kind != KindExceptionTry || n.Stmt.End == nil {
			continue
		}
		catchOff, endOff, ok := exceptionTargets(n.Stmt.End)
		if !ok {
			continue
		}
		catchNode := g.find(catchOff)
		endNode := g.find(endOff)
		if catchNode == nil || endNode == nil || endNode.Index <= n.Index {
			continue
		}

		lastPopTry := -1
		for i := n.Index + 1; i < endNode.Index; i++ {
			if isMnemonic(g.Nodes[i], "pop_try") {
				lastPopTry = i
			}
		}
		guardEnd := endNode.Index - 1
		if lastPopTry >= 0 {
			guardEnd = lastPopTry
		}

		finallyStart := -1
		if prev := g.byIndex(endNode.Index - 1); prev != nil && isMnemonic(prev, "gosub") && prev.Branch != nil {
			finallyStart = prev.Branch.Index
		}

		// Guard-scope Label/EndLabel stay empty: KindExceptionTry and
		// KindExceptionEndTry already print their own "try"/"end try"
		// lines, so a Scope.Label here would duplicate them once scope
		// labels are emitted on entry/exit.
		if _, ok := g.insertScope(n.Index+1, guardEnd, "", "", -1, -1, true); ok {
			catchNode.Kind = KindExceptionCatch
			if finallyStart >= 0 && finallyStart > guardEnd {
				// end_finally, per original_source/disassemble.c's
				// exception_try case, is the statement just before the
				// gosub-to-finally trampoline (endNode.Index-1), not the
				// end-try statement itself.
				finallyEnd := endNode.Index - 2
				if finallyEnd >= finallyStart {
					g.insertScope(finallyStart, finallyEnd, "finally", "", -1, -1, true)
				}
			}
		}
	}
}

// classifyConditionals implements Phase B: backward conditionals close a
// do...loop; forward conditionals bracketed by a matching backward goto
// open a do...loop or for...next; all other forward conditionals are
// if-tests (further shaped by classifyIfShape).
func classifyConditionals(g *Graph) {
	for _, n := range g.Nodes {
		if n.Kind != KindJumpTrue && n.Kind != KindJumpFalse {
			continue
		}
		target := n.Branch
		if target == nil {
			continue
		}

		if target.Index <= n.Index {
			bodyBegin, bodyEnd := target.Index, n.Index-1
			breakDest, continueDest := n.Index+1, n.Index
			// Label "do" introduces the body: this is the bottom-tested
			// do...loop while/until form, so unlike the top-tested
			// do while/until form there is no statement node of its own
			// to render the opening keyword.
			if _, ok := g.insertScope(bodyBegin, bodyEnd, "do", "", breakDest, continueDest, false); ok {
				if n.Kind == KindJumpTrue {
					n.Kind = KindLoopWhile
				} else {
					n.Kind = KindLoopUntil
				}
			}
			continue
		}

		priorIdx := target.Index - 1
		prior := g.byIndex(priorIdx)
		if prior != nil && prior.Kind == KindJumpGoto && prior.Branch == n {
			if detectForLoop(g, n, prior) {
				continue
			}
			bodyBegin, bodyEnd := n.Index+1, priorIdx
			breakDest, continueDest := target.Index, n.Index
			if _, ok := g.insertScope(bodyBegin, bodyEnd, "", "", breakDest, continueDest, false); ok {
				if n.Kind == KindJumpTrue {
					n.Kind = KindDoUntil
				} else {
					n.Kind = KindDoWhile
				}
				prior.Kind = KindJumpLoop
			}
			continue
		}

		classifyIfShape(g, n)
	}
}

// detectForLoop matches the rigid four-statement prologue
// [assign][goto][incr/step][if-test=n] on one source line, where goto
// targets the step statement (spec.md §4.7 Phase B).
func detectForLoop(g *Graph, n, closingGoto *Node) bool {
	if n.Index < 3 {
		return false
	}
	stepNode := g.byIndex(n.Index - 1)
	gotoNode := g.byIndex(n.Index - 2)
	assignNode := g.byIndex(n.Index - 3)
	if stepNode == nil || gotoNode == nil || assignNode == nil {
		return false
	}
	if gotoNode.Kind != KindJumpGoto || gotoNode.Branch != stepNode {
		return false
	}
	line := n.Stmt.StartLine
	if assignNode.Stmt.StartLine != line || gotoNode.Stmt.StartLine != line || stepNode.Stmt.StartLine != line {
		return false
	}

	// spec.md §4.7 Phase B requires the prologue's assignment and step to
	// act on the same variable; without this check any same-line
	// [assign][goto][assign][if] quadruple targeting unrelated variables
	// would be misclassified as a for-loop.
	assignMnemonic, assignSlot, assignOK := assignmentTarget(assignNode.Stmt.End)
	stepMnemonic, stepSlot, stepOK := assignmentTarget(stepNode.Stmt.End)
	if !assignOK || !stepOK || assignMnemonic != stepMnemonic || assignSlot != stepSlot {
		return false
	}

	target := n.Branch
	bodyBegin, bodyEnd := n.Index+1, closingGoto.Index
	breakDest, continueDest := target.Index, stepNode.Index
	if _, ok := g.insertScope(bodyBegin, bodyEnd, "", "", breakDest, continueDest, false); !ok {
		return false
	}
	assignNode.Kind = KindForInit
	gotoNode.Kind = KindForJump
	stepNode.Kind = KindForStep
	n.Kind = KindForTest
	closingGoto.Kind = KindJumpNext
	return true
}

// classifyIfShape implements Phase B's if-test shape detection: a
// single-line if-then, a catch-style condition, or a block if...end if.
func classifyIfShape(g *Graph, n *Node) {
	target := n.Branch
	if target == nil {
		return
	}
	singleLine := true
	for i := n.Index; i < target.Index; i++ {
		if g.Nodes[i].Stmt.StartLine != n.Stmt.StartLine {
			singleLine = false
			break
		}
	}
	if singleLine {
		n.Kind = KindIfThen
		return
	}

	if end := n.Stmt.End; end != nil && len(end.Operand) > 0 && end.Operand[0] != nil && end.Operand[0].Def.Mnemonic == "catch_exception" {
		n.Kind = KindExceptionCatch
		return
	}

	if _, ok := g.insertScope(n.Index+1, target.Index-1, "", "end if", -1, -1, false); ok {
		n.Kind = KindIfThen
	}
}

// tailClassification implements Phase C: walking backwards, promote
// trailing jump_goto statements inside an if scope into else/elseif.
func tailClassification(g *Graph) {
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		n := g.Nodes[i]
		if n.Kind != KindJumpGoto {
			continue
		}
		target := n.Branch
		if target == nil {
			continue
		}
		next := g.byIndex(i + 1)

		if next != nil && next.Kind == KindIfThen && next.Branch == target {
			if prevOfTarget := g.byIndex(target.Index - 1); prevOfTarget != nil &&
				(prevOfTarget.Kind == KindJumpElse || prevOfTarget.Kind == KindJumpElseif) &&
				prevOfTarget.Branch == target {
				n.Kind = KindJumpElseif
				clearParentEndLabel(g, i)
				continue
			}
			n.Kind = KindJumpElseif
			clearParentEndLabel(g, i)
			continue
		}

		if target.Index == i+1 {
			n.Kind = KindJumpElse
			if s := g.enclosingScope(i); s != nil {
				shrinkScope(s, i-1)
				s.EndLabel = ""
			}
			continue
		}

		if _, ok := g.insertScope(i+1, target.Index-1, "", "end if", -1, -1, false); ok {
			n.Kind = KindJumpElse
			clearParentEndLabel(g, i)
		}
	}
}

func clearParentEndLabel(g *Graph, i int) {
	if s := g.enclosingScope(i); s != nil {
		s.EndLabel = ""
	}
}

// reclassifyFreeGotos implements Phase D: a goto that targets the
// innermost enclosing loop's break/continue destination is an exit or
// continue statement rather than a plain goto.
func reclassifyFreeGotos(g *Graph) {
	for _, n := range g.Nodes {
		if n.Kind != KindJumpGoto || n.Branch == nil {
			continue
		}
		for _, s := range g.enclosingScopes(n.Index) {
			if s.IsException {
				if s.Begin <= n.Index && isMnemonic(g.byIndex(s.Begin), "pop_try") {
					g.byIndex(s.Begin).Kind = KindGenerated
				}
				continue
			}
			if s.BreakDest >= 0 && n.Branch.Index == s.BreakDest {
				n.Kind = KindJumpExit
				break
			}
			if s.ContinueDest >= 0 && n.Branch.Index == s.ContinueDest {
				n.Kind = KindJumpContinue
				break
			}
			if s.BreakDest >= 0 || s.ContinueDest >= 0 {
				break
			}
		}
	}
}

// markGenerated implements Phase E: returns and gotos-to-returns are
// compiler-emitted, as is a late same-line event-tail cleanup jump.
func markGenerated(g *Graph) {
	for _, n := range g.Nodes {
		if isMnemonic(n, "return", "return_sub") {
			n.Kind = KindGenerated
			continue
		}
		if n.Kind == KindJumpGoto && n.Branch != nil && isMnemonic(n.Branch, "return", "return_sub") {
			n.Kind = KindGenerated
		}
	}

	if len(g.Nodes) == 0 {
		return
	}
	last := g.Nodes[len(g.Nodes)-1]
	if last.Kind != KindJumpTrue {
		return
	}
	line := last.Stmt.StartLine
	allSameLine := last.Stmt.StartLine == last.Stmt.EndLine
	for i := 0; i < last.Index; i++ {
		s := g.Nodes[i].Stmt
		if s.StartLine == line && s.EndLine != line {
			allSameLine = false
		}
	}
	if allSameLine {
		last.Kind = KindGenerated
	}
}
