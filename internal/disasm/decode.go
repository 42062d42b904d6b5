package disasm

import (
	"encoding/binary"
	"fmt"

	"github.com/lakeman/pbdump/internal/log"
	"github.com/lakeman/pbdump/internal/opcode"
)

// Decode simulates the operand stack over code, producing the IR
// instruction list and the flat statement list, per spec.md §4.6.
// debugLines need not be sorted; Decode sorts a copy internally.
func Decode(code []byte, debugLines []DebugLine, table *opcode.Table, logger *log.Helper) (*Result, error) {
	lines := append([]DebugLine(nil), debugLines...)
	sortDebugLines(lines)

	res := &Result{}
	stack := &simStack{}
	var cur *Statement

	offset := uint32(0)
	for offset+2 <= uint32(len(code)) {
		id := binary.LittleEndian.Uint16(code[offset:])
		def, ok := table.Lookup(id)
		if !ok {
			res.Anomalies = append(res.Anomalies, fmt.Sprintf("offset %d: unknown opcode %d", offset, id))
			def = opcode.Def{ID: id, Mnemonic: "unknown", Discipline: opcode.DisciplineNone}
		}

		argCount := def.ArgCount
		total := uint32(1+argCount) * 2
		if offset+total > uint32(len(code)) {
			res.Anomalies = append(res.Anomalies, fmt.Sprintf("offset %d: truncated instruction (opcode %d needs %d args)", offset, id, argCount))
			break
		}
		args := make([]uint16, argCount)
		for i := 0; i < argCount; i++ {
			args[i] = binary.LittleEndian.Uint16(code[offset+2+uint32(i)*2:])
		}

		inst := &Instruction{
			Def:    def,
			Offset: offset,
			Args:   args,
			Line:   lineFor(lines, offset),
		}
		res.Instructions = append(res.Instructions, inst)

		applyDiscipline(stack, inst, logger)

		if cur == nil {
			cur = &Statement{Begin: inst, StartLine: inst.Line}
			res.Statements = append(res.Statements, cur)
		}
		cur.End = inst
		if inst.Line > cur.EndLine {
			cur.EndLine = inst.Line
		}
		if stack.empty() {
			cur = nil
		}

		offset += total
	}

	if stack.overflows > 0 {
		res.Anomalies = append(res.Anomalies, fmt.Sprintf("operand stack exceeded %d items %d time(s)", maxStackDepth, stack.overflows))
		logger.Warnf("operand stack exceeded %d items %d time(s)", maxStackDepth, stack.overflows)
	}
	if !stack.empty() {
		res.Anomalies = append(res.Anomalies, fmt.Sprintf("operand stack not empty at script end: %d item(s) left", stack.len()))
		logger.Warnf("operand stack not empty at script end: %d item(s) left", stack.len())
	}

	return res, nil
}

// resolveN computes the operand count N a discipline's stack_arg field
// names: a literal constant for direct disciplines, or an immediate
// lookup (args[stack_arg]) for _indirect disciplines (spec.md §4.5).
func resolveN(inst *Instruction, indirect bool) int {
	if indirect {
		if inst.Def.StackArg < 0 || inst.Def.StackArg >= len(inst.Args) {
			return 0
		}
		return int(inst.Args[inst.Def.StackArg])
	}
	return inst.Def.StackArg
}

func popOperands(stack *simStack, n int) []*Instruction {
	ops := make([]*Instruction, n)
	for i := n - 1; i >= 0; i-- {
		ops[i] = stack.pop()
	}
	return ops
}

func applyDiscipline(stack *simStack, inst *Instruction, logger *log.Helper) {
	switch inst.Def.Discipline {
	case opcode.DisciplineNone, opcode.DisciplineUnknown:
		// No stack effect recorded.

	case opcode.DisciplineResult:
		n := resolveN(inst, false)
		inst.Operand = popOperands(stack, n)
		stack.push(inst)

	case opcode.DisciplineResultIndirect:
		n := resolveN(inst, true)
		inst.Operand = popOperands(stack, n)
		stack.push(inst)

	case opcode.DisciplineAction:
		n := resolveN(inst, false)
		inst.Operand = popOperands(stack, n)

	case opcode.DisciplineActionIndirect:
		n := resolveN(inst, true)
		inst.Operand = popOperands(stack, n)

	case opcode.DisciplinePopN:
		// Per original_source/disassemble.c's stack_popn falling through
		// to stack_result: the top is preserved (re-pushed so a chained
		// assignment can consume it) but the n operands underneath are
		// still captured for display, not discarded.
		n := resolveN(inst, false)
		top := stack.pop()
		discarded := popOperands(stack, n)
		if top != nil {
			stack.push(top)
		}
		inst.Operand = append(discarded, top)

	case opcode.DisciplinePopNIndirect:
		n := resolveN(inst, true)
		top := stack.pop()
		discarded := popOperands(stack, n)
		if top != nil {
			stack.push(top)
		}
		inst.Operand = append(discarded, top)

	case opcode.DisciplineTweak, opcode.DisciplineTweak1:
		n := resolveN(inst, true)
		if n <= 0 {
			n = 1
		}
		inst.Operand = []*Instruction{stack.peekFromTop(n - 1)}
		stack.replaceFromTop(n-1, inst)

	case opcode.DisciplineClone:
		n := resolveN(inst, true)
		if n <= 0 {
			n = 1
		}
		dup := stack.peekFromTop(n - 1)
		top := stack.pop()
		stack.push(dup)
		if top != nil {
			stack.push(top)
		}

	case opcode.DisciplinePeekResult:
		n := resolveN(inst, false)
		inst.Operand = peekOperands(stack, n)
		stack.push(inst)

	case opcode.DisciplinePeekResultIndirect:
		n := resolveN(inst, true)
		inst.Operand = peekOperands(stack, n)
		stack.push(inst)

	case opcode.DisciplineDotCall:
		n := resolveN(inst, false)
		args := popOperands(stack, n)
		receiver := stack.pop()
		inst.Operand = append([]*Instruction{receiver}, args...)
		stack.push(inst)

	case opcode.DisciplineClassCall:
		n := resolveN(inst, false)
		classRef := stack.pop()
		args := popOperands(stack, n)
		inst.Operand = append([]*Instruction{classRef}, args...)
		stack.push(inst)

	default:
		logger.Warnf("offset %d: opcode %q has unrecognised stack discipline %d", inst.Offset, inst.Def.Mnemonic, inst.Def.Discipline)
	}
}

func peekOperands(stack *simStack, n int) []*Instruction {
	ops := make([]*Instruction, n)
	for i := 0; i < n; i++ {
		ops[i] = stack.peekFromTop(n - 1 - i)
	}
	return ops
}

func sortDebugLines(lines []DebugLine) {
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j].PCodeOffset < lines[j-1].PCodeOffset; j-- {
			lines[j], lines[j-1] = lines[j-1], lines[j]
		}
	}
}

// lineFor returns the line_number of the greatest debug-line record
// whose pcode_offset <= offset, per spec.md §4.6 step 2.
func lineFor(sortedLines []DebugLine, offset uint32) uint32 {
	var line uint32
	for _, dl := range sortedLines {
		if dl.PCodeOffset > offset {
			break
		}
		line = dl.LineNumber
	}
	return line
}
