package opcode

import "testing"

func TestForVersionSelectsTier(t *testing.T) {
	cases := []struct {
		version int
		want    int
	}{
		{49, 50}, {50, 50}, {79, 50}, {80, 80}, {89, 80}, {90, 90},
		{99, 90}, {100, 100}, {104, 100}, {105, 105}, {119, 105}, {120, 120}, {999, 120},
	}
	for _, c := range cases {
		if got := ForVersion(c.version).Version; got != c.want {
			t.Errorf("ForVersion(%d).Version = %d, want %d", c.version, got, c.want)
		}
	}
}

func TestCoreOpcodesPresentInEveryTier(t *testing.T) {
	tables := []*Table{PB50(), PB80(), PB90(), PB100(), PB105(), PB120()}
	for _, tbl := range tables {
		if _, ok := tbl.Lookup(20); !ok {
			t.Errorf("version %d missing add opcode", tbl.Version)
		}
		if _, ok := tbl.Lookup(50); !ok {
			t.Errorf("version %d missing assign opcode", tbl.Version)
		}
	}
}

func TestPB105AddsEndTry(t *testing.T) {
	if _, ok := PB100().Lookup(104); ok {
		t.Fatalf("PB100 unexpectedly has exception_end_try")
	}
	d, ok := PB105().Lookup(104)
	if !ok || d.Mnemonic != "exception_end_try" {
		t.Fatalf("PB105 missing exception_end_try, got %+v", d)
	}
}

func TestPB120AddsLongLongConst(t *testing.T) {
	d, ok := PB120().Lookup(120)
	if !ok || d.Operation != OpConst {
		t.Fatalf("PB120 missing push_longlong, got %+v", d)
	}
}

func TestPrecedenceGapsAllowLeftToRightDisambiguation(t *testing.T) {
	add, _ := PB50().Lookup(20)
	sub, _ := PB50().Lookup(21)
	mult, _ := PB50().Lookup(22)
	if add.Precedence != sub.Precedence {
		t.Fatalf("add/sub should share a precedence level")
	}
	if mult.Precedence <= add.Precedence {
		t.Fatalf("mult should bind tighter than add/sub")
	}
	if mult.Precedence-add.Precedence < 2 {
		t.Fatalf("expected a precedence gap of at least 2, got %d", mult.Precedence-add.Precedence)
	}
}
