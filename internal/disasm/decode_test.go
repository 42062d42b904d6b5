package disasm

import (
	"testing"

	"github.com/lakeman/pbdump/internal/log"
	"github.com/lakeman/pbdump/internal/opcode"
)

func encodeInstr(id uint16, args ...uint16) []byte {
	buf := make([]byte, 0, (1+len(args))*2)
	put := func(v uint16) { buf = append(buf, byte(v), byte(v>>8)) }
	put(id)
	for _, a := range args {
		put(a)
	}
	return buf
}

func TestDecodeClosesStatementWhenStackEmpties(t *testing.T) {
	var code []byte
	code = append(code, encodeInstr(1, 5)...)  // push_int 5
	code = append(code, encodeInstr(72, 7)...) // call_function, pops 1

	res, err := Decode(code, nil, opcode.PB50(), log.NewHelper(nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(res.Instructions))
	}
	if len(res.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(res.Statements))
	}
	stmt := res.Statements[0]
	if stmt.Begin != res.Instructions[0] || stmt.End != res.Instructions[1] {
		t.Fatalf("statement bounds wrong: %+v", stmt)
	}
	if len(res.Anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", res.Anomalies)
	}
}

func TestDecodeFlagsNonEmptyStackAtEnd(t *testing.T) {
	var code []byte
	code = append(code, encodeInstr(1, 1)...)  // push_int 1
	code = append(code, encodeInstr(1, 2)...)  // push_int 2
	code = append(code, encodeInstr(20)...)    // add: pops 2, pushes 1

	res, err := Decode(code, nil, opcode.PB50(), log.NewHelper(nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Anomalies) == 0 {
		t.Fatalf("expected a non-empty-stack anomaly")
	}
	add := res.Instructions[2]
	if len(add.Operand) != 2 {
		t.Fatalf("expected add to capture 2 operands, got %d", len(add.Operand))
	}
	if add.Operand[0] != res.Instructions[0] || add.Operand[1] != res.Instructions[1] {
		t.Fatalf("add operand back-edges wrong: %+v", add.Operand)
	}
}

func TestDecodeAssignsDebugLines(t *testing.T) {
	var code []byte
	code = append(code, encodeInstr(1, 1)...)
	code = append(code, encodeInstr(1, 2)...)
	lines := []DebugLine{{LineNumber: 10, PCodeOffset: 0}, {LineNumber: 11, PCodeOffset: 4}}

	res, err := Decode(code, lines, opcode.PB50(), log.NewHelper(nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Instructions[0].Line != 10 || res.Instructions[1].Line != 11 {
		t.Fatalf("unexpected line assignment: %d, %d", res.Instructions[0].Line, res.Instructions[1].Line)
	}
}

func TestDecodeWarnsOnTruncatedInstruction(t *testing.T) {
	code := []byte{1, 0} // push_int opcode with no immediate argument byte
	res, err := Decode(code, nil, opcode.PB50(), log.NewHelper(nil))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Anomalies) == 0 {
		t.Fatalf("expected a truncated-instruction anomaly")
	}
}
