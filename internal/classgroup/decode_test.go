package classgroup

import (
	"testing"

	"github.com/lakeman/pbdump/internal/binreader"
)

type byteBuilder struct {
	buf []byte
}

func (b *byteBuilder) u16(v uint16) { b.buf = append(b.buf, byte(v), byte(v>>8)) }
func (b *byteBuilder) u32(v uint32) {
	b.buf = append(b.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func (b *byteBuilder) bytes(v []byte) { b.buf = append(b.buf, v...) }

// emptyTable appends a zero-length data_table (spec.md §3's generic
// {data_length, metadata_count, data, metadata[]} layout with both
// counts zero).
func (b *byteBuilder) emptyTable() {
	b.u32(0)
	b.u32(0)
}

// dataTable appends a data_table carrying data but no metadata records.
func (b *byteBuilder) dataTable(data []byte) {
	b.u32(uint32(len(data)))
	b.u32(0)
	b.bytes(data)
}

// buildMinimalGroup assembles a synthetic class-group buffer: PB6, no
// external refs, a main table holding one ASCII name, no globals, one
// enum type with no values and no classes.
func buildMinimalGroup() []byte {
	b := &byteBuilder{}
	b.u32(60)       // CompilerVersion = PB6
	b.u16(0)        // SystemType
	b.u32(0)        // Timestamp
	b.u32(0)        // external ref count
	b.dataTable([]byte("Colors\x00")) // main table
	b.bytes(checkpointAfterGlobals)
	b.emptyTable() // global type-def list's table
	b.u32(0)       // global type-def count
	b.u32(1)       // type count
	b.u32(0)       // class count
	b.emptyTable() // function name table
	b.emptyTable() // arguments table
	b.bytes(checkpointAfterArgs)
	b.u32(0) // type list offset[0] -> "Colors"
	b.bytes(checkpointAfterTypes)
	b.emptyTable() // enum value table
	b.u16(0)       // type header 0: Kind = KindEnum
	b.u32(0)       // NameOffset -> "Colors"
	b.u16(0)       // ValuesCount
	return b.buf
}

func TestDecodeMinimalGroup(t *testing.T) {
	g, err := Decode(binreader.New(buildMinimalGroup()), Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(g.Anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", g.Anomalies)
	}
	if len(g.Types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(g.Types))
	}
	ty := g.Types[0]
	if ty.Kind != KindEnum || ty.Name != "Colors" {
		t.Fatalf("unexpected type: %+v", ty)
	}
	if ty.Enum == nil || len(ty.Enum.Values) != 0 {
		t.Fatalf("expected empty enum values, got %+v", ty.Enum)
	}
}

func TestDecodeRejectsOldVersion(t *testing.T) {
	b := &byteBuilder{}
	b.u32(50) // PB5, below the PB6 floor
	b.u16(0)
	b.u32(0)
	if _, err := Decode(binreader.New(b.buf), Options{}); err != ErrUnsupportedVersion {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestDecodeTruncatedStreamFails(t *testing.T) {
	full := buildMinimalGroup()
	truncated := full[:len(full)-5]
	if _, err := Decode(binreader.New(truncated), Options{}); err == nil {
		t.Fatalf("expected an error on truncated input")
	}
}
