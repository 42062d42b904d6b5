package datatable

import (
	"github.com/lakeman/pbdump/internal/binreader"
)

// Table is a block of raw bytes plus an array of typed record
// descriptors, grounded on original_source/class_private.h's
// struct data_table and class.c's read_table.
type Table struct {
	Data    []byte
	Records []RecordInfo
}

// ReadTable parses the repeated (payload, metadata) layout: a uint32
// data length, a uint32 metadata record count, the raw data bytes, then
// the metadata records themselves. Grounded on class.c's read_table.
func ReadTable(r *binreader.Reader) (*Table, error) {
	dataLen, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	metaCount, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes(dataLen)
	if err != nil {
		return nil, err
	}
	records := make([]RecordInfo, metaCount)
	for i := range records {
		offset, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		structureType, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		count, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		records[i] = RecordInfo{Offset: offset, StructureType: StructureType(structureType), Count: count}
	}
	return &Table{Data: data, Records: records}, nil
}

// LookupPointer resolves a typed handle to a byte slice into the backing
// data, honouring the main-table high bit and the 0xFFFF null sentinel.
// main is the class-group's main table, consulted when the high bit is
// set; it may be nil if this table IS the main table.
func (t *Table) LookupPointer(offset uint32, main *Table) ([]byte, error) {
	if offset&0xFFFF == nullHandle && offset&^0xFFFF == 0 {
		return nil, ErrNullHandle
	}
	if offset&mainTableBit != 0 {
		if main == nil {
			return nil, ErrOffsetOutOfBounds
		}
		return main.LookupPointer(offset&^mainTableBit, nil)
	}
	if offset >= uint32(len(t.Data)) {
		return nil, ErrOffsetOutOfBounds
	}
	return t.Data[offset:], nil
}

// LookupInfo returns the metadata descriptor whose Offset matches offset.
// A linear scan suffices per spec.md §4.3 ("binary search is permitted
// when the table is large" — not required).
func (t *Table) LookupInfo(offset uint32) (*RecordInfo, bool) {
	base := offset &^ mainTableBit
	for i := range t.Records {
		if t.Records[i].Offset == base {
			return &t.Records[i], true
		}
	}
	return nil, false
}

// LookupString returns an owned UTF-8 string at offset: a direct ASCII
// view for pre-PB100 (pre-PB10) files, or a UTF-16 transcode for PB100+,
// grounded on class.c's get_table_string version dispatch.
func (t *Table) LookupString(offset uint32, main *Table, version int, dup func([]byte) string) (string, error) {
	ptr, err := t.LookupPointer(offset, main)
	if err != nil {
		return "", err
	}
	if version < VersionPB100 {
		end := 0
		for end < len(ptr) && ptr[end] != 0 {
			end++
		}
		return string(ptr[:end]), nil
	}
	end := 0
	for end+1 < len(ptr) && !(ptr[end] == 0 && ptr[end+1] == 0) {
		end += 2
	}
	return dup(ptr[:end]), nil
}

// VersionPBxx are the compiler version thresholds used throughout the
// decoder, named after the opcode-catalogue tiers in spec.md §4.5
// (PB50/PB80/PB90/PB100/PB105/PB120), themselves version*10.
const (
	VersionPB50  = 50
	VersionPB60  = 60
	VersionPB80  = 80
	VersionPB90  = 90
	VersionPB100 = 100
	VersionPB105 = 105
	VersionPB120 = 120
)
