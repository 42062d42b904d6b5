package printer

import (
	"strconv"
	"strings"

	"github.com/lakeman/pbdump/internal/disasm"
	"github.com/lakeman/pbdump/internal/opcode"
)

// RenderExpression walks inst's print-template (spec.md §4.8 stage 1),
// recursing into operands and wrapping a child in parentheses whenever
// its precedence is lower than the parent's, mirroring
// original_source/disassemble.c's printf_instruction.
func (p *Printer) RenderExpression(inst *disasm.Instruction) string {
	return p.render(inst, 0)
}

func (p *Printer) render(inst *disasm.Instruction, minPrecedence int) string {
	if inst == nil {
		return ""
	}
	var b strings.Builder
	for _, tok := range inst.Def.Template {
		p.renderToken(&b, inst, tok)
	}
	s := b.String()
	if inst.Def.Precedence < minPrecedence {
		return "(" + s + ")"
	}
	return s
}

func (p *Printer) renderToken(b *strings.Builder, inst *disasm.Instruction, tok opcode.Token) {
	switch tok.Kind {
	case opcode.TokLiteral:
		b.WriteString(tok.Literal)
	case opcode.TokStack:
		// The second (rightmost) operand of a binary template recurses
		// with a one-higher precedence floor so an equal-precedence
		// operator on the right still gets parenthesized, per spec.md
		// §4.8's left-to-right disambiguation (original_source/
		// disassemble.c's i==0 check).
		budget := inst.Def.Precedence
		if tok.ArgIdx > 0 {
			budget++
		}
		b.WriteString(p.renderOperand(inst, tok.ArgIdx, budget))
	case opcode.TokStackCSV:
		b.WriteString(p.joinOperands(inst, ", "))
	case opcode.TokStackDotCSV:
		b.WriteString(p.joinOperands(inst, "."))
	case opcode.TokLocal:
		b.WriteString(p.resolver.Local(argAt(inst, tok.ArgIdx)))
	case opcode.TokShared:
		b.WriteString(p.resolver.Shared(argAt(inst, tok.ArgIdx)))
	case opcode.TokExt:
		b.WriteString(p.resolver.Ext(argAt(inst, tok.ArgIdx)))
	case opcode.TokType:
		b.WriteString(p.resolver.Type(argAt(inst, tok.ArgIdx)))
	case opcode.TokArgInt:
		b.WriteString(strconv.Itoa(int(int16(argAt(inst, tok.ArgIdx)))))
	case opcode.TokArgBool:
		if argAt(inst, tok.ArgIdx) != 0 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case opcode.TokArgLong:
		b.WriteString(strconv.FormatInt(int64(int32(argAt(inst, tok.ArgIdx))), 10))
	case opcode.TokArgLongHex:
		b.WriteString("0x" + strconv.FormatUint(uint64(argAt(inst, tok.ArgIdx)), 16))
	case opcode.TokArgCSV:
		b.WriteString(joinArgs(inst.Args))
	case opcode.TokMethodFlags:
		b.WriteString(methodName(inst, tok.ArgIdx))
	case opcode.TokFuncClass:
		b.WriteString(p.resolver.FuncClass(argAt(inst, 0)))
	case opcode.TokRes:
		b.WriteString(mustResolve(p.resolver.Resource(argAt(inst, tok.ArgIdx))))
	case opcode.TokResString:
		b.WriteString(mustResolve(p.resolver.ResourceString(argAt(inst, tok.ArgIdx))))
	case opcode.TokResStringConst:
		b.WriteString(mustResolve(p.resolver.ResourceStringConst(argAt(inst, tok.ArgIdx))))
	case opcode.TokEnd:
		// sentinel; contributes no text
	}
}

func (p *Printer) renderOperand(inst *disasm.Instruction, idx, parentPrecedence int) string {
	if idx < 0 || idx >= len(inst.Operand) {
		return ""
	}
	return p.render(inst.Operand[idx], parentPrecedence)
}

func (p *Printer) joinOperands(inst *disasm.Instruction, sep string) string {
	parts := make([]string, 0, len(inst.Operand))
	for _, op := range inst.Operand {
		parts = append(parts, p.render(op, 0))
	}
	return strings.Join(parts, sep)
}

func joinArgs(args []uint16) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, strconv.Itoa(int(a)))
	}
	return strings.Join(parts, ", ")
}

// methodName resolves a call instruction's method-flags argument into a
// display name. Resolver has no method-name lookup, so the raw numeric id
// is always rendered as the placeholder name method_<id>.
func methodName(inst *disasm.Instruction, idx int) string {
	return "method_" + strconv.Itoa(argAt(inst, idx))
}

func argAt(inst *disasm.Instruction, idx int) int {
	if idx < 0 || idx >= len(inst.Args) {
		return 0
	}
	return int(inst.Args[idx])
}

func mustResolve(s string, err error) string {
	if err != nil {
		return "/* " + err.Error() + " */"
	}
	return s
}
