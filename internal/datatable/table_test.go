package datatable

import (
	"testing"

	"github.com/lakeman/pbdump/internal/binreader"
)

func buildTable(data []byte, records []RecordInfo) []byte {
	buf := []byte{}
	put32 := func(v uint32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	put16 := func(v uint16) {
		buf = append(buf, byte(v), byte(v>>8))
	}
	put32(uint32(len(data)))
	put32(uint32(len(records)))
	buf = append(buf, data...)
	for _, rec := range records {
		put32(rec.Offset)
		put16(uint16(rec.StructureType))
		put16(rec.Count)
	}
	return buf
}

func TestReadTableRoundTrip(t *testing.T) {
	data := []byte("hello\x00world\x00")
	records := []RecordInfo{{Offset: 0, StructureType: StructureInt, Count: 1}}
	raw := buildTable(data, records)

	tbl, err := ReadTable(binreader.New(raw))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if string(tbl.Data) != string(data) {
		t.Fatalf("data mismatch: %q", tbl.Data)
	}
	if len(tbl.Records) != 1 || tbl.Records[0].StructureType != StructureInt {
		t.Fatalf("records mismatch: %+v", tbl.Records)
	}
}

func TestLookupPointerNullHandle(t *testing.T) {
	tbl := &Table{Data: []byte{1, 2, 3}}
	if _, err := tbl.LookupPointer(nullHandle, nil); err != ErrNullHandle {
		t.Fatalf("expected ErrNullHandle, got %v", err)
	}
}

func TestLookupPointerMainTableBit(t *testing.T) {
	main := &Table{Data: []byte{0xAA, 0xBB, 0xCC}}
	local := &Table{Data: []byte{0x11, 0x22}}

	ptr, err := local.LookupPointer(mainTableBit|1, main)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ptr[0] != 0xBB {
		t.Fatalf("expected to resolve against main table, got %x", ptr[0])
	}
}

func TestLookupPointerOutOfBounds(t *testing.T) {
	tbl := &Table{Data: []byte{1, 2}}
	if _, err := tbl.LookupPointer(100, nil); err != ErrOffsetOutOfBounds {
		t.Fatalf("expected ErrOffsetOutOfBounds, got %v", err)
	}
}

func TestLookupStringASCII(t *testing.T) {
	tbl := &Table{Data: []byte("abc\x00def")}
	s, err := tbl.LookupString(0, nil, VersionPB80, nil)
	if err != nil || s != "abc" {
		t.Fatalf("got %q, %v", s, err)
	}
}

func TestLookupStringUTF16(t *testing.T) {
	wide := []byte{'a', 0, 'b', 0, 0, 0}
	tbl := &Table{Data: wide}
	dup := func(b []byte) string { return string(b) } // identity stand-in; real decode is arena's job
	_, err := tbl.LookupString(0, nil, VersionPB120, dup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormatResourceInt(t *testing.T) {
	data := make([]byte, 4)
	data[0], data[1], data[2], data[3] = 0xFF, 0xFF, 0xFF, 0xFF // -1 as int32
	tbl := &Table{Data: data}
	info := &RecordInfo{Offset: 0, StructureType: StructureInt}
	s, err := tbl.FormatResource(info, nil, VersionPB120, nil, tbl.FormatScalar2(nil, VersionPB120, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "-1" {
		t.Fatalf("got %q", s)
	}
}

func TestFormatResourceUnknownFallsBackToHex(t *testing.T) {
	tbl := &Table{Data: []byte{0, 0, 0, 0}}
	info := &RecordInfo{Offset: 0, StructureType: StructureType(9999)}
	s, err := tbl.FormatResource(info, nil, VersionPB120, nil, tbl.FormatScalar2(nil, VersionPB120, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == "" {
		t.Fatalf("expected a hex fallback string")
	}
}

func TestDateTimeStringDateOnly(t *testing.T) {
	dt := DateTime{Year: 2024, Month: 1, Day: 15}
	if dt.String() != "2024-01-15" {
		t.Fatalf("got %q", dt.String())
	}
}

func TestDateTimeStringTimeOnly(t *testing.T) {
	dt := DateTime{Year: timeOnlySentinelYear, Month: timeOnlySentinelMonth, Hour: 13, Minute: 5, Second: 9}
	got := dt.String()
	want := "13:05:09.000000"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
