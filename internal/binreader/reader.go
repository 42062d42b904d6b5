// Package binreader provides endian-aware, bounds-checked fixed-width
// decoding over an in-memory byte buffer, plus "expect magic" assertions
// and struct unpacking. It generalizes the teacher's helper.go primitives
// (ReadUint8/16/32/64, structUnpack, ReadBytesAtOffset) from a single
// memory-mapped PE image to any byte-sliced class-group or library entry
// stream, and adds the sequential-cursor style original_source/class.c's
// class_parse decode needs (read_type/read_block/read_array macros).
package binreader

import (
	"bytes"
	"encoding/binary"
)

// Reader decodes sequentially from an in-memory buffer, tracking a cursor.
// It is the Go analogue of the original's raw pointer-plus-remaining-bytes
// decode style in class.c, but bounds-checked throughout.
type Reader struct {
	data []byte
	pos  uint32
}

// New wraps data for sequential, bounds-checked decoding.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total buffer size.
func (r *Reader) Len() uint32 { return uint32(len(r.data)) }

// Pos returns the current read cursor.
func (r *Reader) Pos() uint32 { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() uint32 { return r.Len() - r.pos }

// Seek repositions the cursor to an absolute offset.
func (r *Reader) Seek(offset uint32) error {
	if offset > r.Len() {
		return ErrOutsideBoundary
	}
	r.pos = offset
	return nil
}

// ReadU8 reads one byte and advances the cursor.
func (r *Reader) ReadU8() (uint8, error) {
	if r.pos+1 > r.Len() {
		return 0, ErrOutsideBoundary
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadU16 reads a little-endian uint16 and advances the cursor.
func (r *Reader) ReadU16() (uint16, error) {
	if r.pos+2 > r.Len() {
		return 0, ErrOutsideBoundary
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32 and advances the cursor.
func (r *Reader) ReadU32() (uint32, error) {
	if r.pos+4 > r.Len() {
		return 0, ErrOutsideBoundary
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64 and advances the cursor.
func (r *Reader) ReadU64() (uint64, error) {
	if r.pos+8 > r.Len() {
		return 0, ErrOutsideBoundary
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes reads n raw bytes and advances the cursor.
func (r *Reader) ReadBytes(n uint32) ([]byte, error) {
	if r.pos+n < r.pos || r.pos+n > r.Len() {
		return nil, ErrOutsideBoundary
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU16Array reads n little-endian uint16s.
func (r *Reader) ReadU16Array(n uint32) ([]uint16, error) {
	out := make([]uint16, n)
	for i := range out {
		v, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadU32Array reads n little-endian uint32s.
func (r *Reader) ReadU32Array(n uint32) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		v, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Expect reads len(magic) bytes and requires they match exactly, the
// bounds-checked Go equivalent of original_source/class.c's
// read_expecting magic-triple assertion used at the §4.4 step boundaries.
func (r *Reader) Expect(magic []byte) error {
	got, err := r.ReadBytes(uint32(len(magic)))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, magic) {
		return ErrMagicMismatch
	}
	return nil
}

// Unpack decodes a fixed-layout struct (exported fields, fixed-width types
// only) at the current cursor using encoding/binary, advancing the cursor
// by binary.Size(iface). This is the sequential-cursor counterpart to the
// teacher's offset-based structUnpack in helper.go.
func (r *Reader) Unpack(iface interface{}) error {
	size := binary.Size(iface)
	if size < 0 {
		return ErrOutsideBoundary
	}
	buf, err := r.ReadBytes(uint32(size))
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, iface)
}

// Uint16At reads a little-endian uint16 at an absolute offset into data
// without touching the cursor, the random-access counterpart used by
// internal/datatable for resolving typed handles into a retained buffer.
func Uint16At(data []byte, offset uint32) (uint16, error) {
	if offset+2 > uint32(len(data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(data[offset:]), nil
}

// Uint32At reads a little-endian uint32 at an absolute offset into data.
func Uint32At(data []byte, offset uint32) (uint32, error) {
	if offset+4 > uint32(len(data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

// Uint64At reads a little-endian uint64 at an absolute offset into data.
func Uint64At(data []byte, offset uint32) (uint64, error) {
	if offset+8 > uint32(len(data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint64(data[offset:]), nil
}

// BytesAt returns a size-byte slice of data at offset, bounds-checked,
// mirroring helper.go's ReadBytesAtOffset.
func BytesAt(data []byte, offset, size uint32) ([]byte, error) {
	total := offset + size
	if (total > offset) != (size > 0) {
		return nil, ErrOutsideBoundary
	}
	if offset >= uint32(len(data)) && size > 0 {
		return nil, ErrOutsideBoundary
	}
	if total > uint32(len(data)) {
		return nil, ErrOutsideBoundary
	}
	return data[offset : offset+size], nil
}
