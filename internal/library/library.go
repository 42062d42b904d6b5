// Package library reads PowerBuilder .PBL/.PBD container files: a
// block-granular B-tree directory of named entries backed by chained
// data blocks, grounded on spec.md §4.2/§6.1 and memory-mapped with
// github.com/edsrzf/mmap-go the way the teacher's file.go memory-maps a
// PE image for zero-copy parsing.
package library

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
)

// Library is an open container file: its memory-mapped bytes plus the
// parsed header and root directory node offset.
type Library struct {
	f      *os.File
	mapped mmap.MMap
	Header Header

	rootOffset uint32
}

// Open memory-maps path and parses its header block, per spec.md §4.2's
// open(path) → Library.
func Open(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	lib := &Library{f: f, mapped: m}
	hdr, err := parseHeader(m)
	if err != nil {
		lib.Close()
		return nil, err
	}
	lib.Header = hdr
	if hdr.Wide {
		lib.rootOffset = rootOffsetWide
	} else {
		lib.rootOffset = rootOffsetASCII
	}
	return lib, nil
}

// Close unmaps the file and releases its descriptor.
func (l *Library) Close() error {
	var err error
	if l.mapped != nil {
		err = l.mapped.Unmap()
	}
	if l.f != nil {
		if cerr := l.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Enumerate performs an in-order traversal of the directory tree,
// invoking fn for each entry in sorted name order (spec.md §4.2).
func (l *Library) Enumerate(fn func(Entry) error) error {
	return l.walk(l.rootOffset, fn)
}

func (l *Library) walk(offset uint32, fn func(Entry) error) error {
	if offset == 0 {
		return nil
	}
	node, err := l.readDirNode(offset)
	if err != nil {
		return err
	}
	if err := l.walk(node.left, fn); err != nil {
		return err
	}
	for _, e := range node.entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return l.walk(node.right, fn)
}

// Find performs the binary-search descent spec.md §4.2 describes:
// entries within a node are sorted; descend left/right by lexicographic
// compare against the node's first/last keys.
func (l *Library) Find(name string) (Entry, error) {
	offset := l.rootOffset
	for offset != 0 {
		node, err := l.readDirNode(offset)
		if err != nil {
			return Entry{}, err
		}
		switch {
		case len(node.entries) == 0:
			return Entry{}, ErrEntryNotFound
		case name < node.firstKey:
			offset = node.left
		case name > node.lastKey:
			offset = node.right
		default:
			idx := sort.Search(len(node.entries), func(i int) bool { return node.entries[i].Name >= name })
			if idx < len(node.entries) && node.entries[idx].Name == name {
				return node.entries[idx], nil
			}
			return Entry{}, ErrEntryNotFound
		}
	}
	return Entry{}, ErrEntryNotFound
}

// Read follows entry's data-block chain and returns its payload bytes,
// skipping the embedded comment prefix stored ahead of the real data in
// the first block (spec.md §4.2).
func (l *Library) Read(e Entry) ([]byte, error) {
	out := make([]byte, 0, e.Length)
	offset := e.FirstBlock
	skip := uint32(e.CommentLength)
	remaining := e.Length

	for offset != 0 && remaining > 0 {
		if offset+12 > uint32(len(l.mapped)) {
			return nil, ErrTruncated
		}
		block := l.mapped[offset:]
		if !bytes.Equal(block[:4], magicData[:]) {
			return nil, ErrBadMagic
		}
		next := binary.LittleEndian.Uint32(block[4:8])
		payloadLen := binary.LittleEndian.Uint32(block[8:12])
		if payloadLen > maxDataPayload || 12+payloadLen > uint32(len(block)) {
			return nil, ErrTruncated
		}
		payload := block[12 : 12+payloadLen]

		if skip > 0 {
			if skip >= uint32(len(payload)) {
				skip -= uint32(len(payload))
				payload = nil
			} else {
				payload = payload[skip:]
				skip = 0
			}
		}
		if uint32(len(payload)) > remaining {
			payload = payload[:remaining]
		}
		out = append(out, payload...)
		remaining -= uint32(len(payload))
		offset = next
	}
	if remaining > 0 {
		return nil, ErrTruncated
	}
	return out, nil
}

func (l *Library) readDirNode(offset uint32) (*dirNode, error) {
	if offset+20 > uint32(len(l.mapped)) {
		return nil, ErrTruncated
	}
	block := l.mapped[offset:]
	if !bytes.Equal(block[:4], magicDir[:]) {
		return nil, ErrBadMagic
	}
	left := binary.LittleEndian.Uint32(block[4:8])
	parent := binary.LittleEndian.Uint32(block[8:12])
	right := binary.LittleEndian.Uint32(block[12:16])
	_ = binary.LittleEndian.Uint32(block[16:20]) // remaining-bytes counter; unused by this reader
	pos := uint32(28)                            // skip the remaining-bytes counter plus first/last key offset placeholders

	var entries []Entry
	for pos+4 <= uint32(len(block)) && bytes.Equal(block[pos:pos+4], magicEntry[:]) {
		e, n, err := parseEntry(block[pos:], l.Header.Wide)
		if err != nil {
			break
		}
		entries = append(entries, e)
		pos += n
	}

	node := &dirNode{left: left, parent: parent, right: right, entries: entries}
	if len(entries) > 0 {
		node.firstKey = entries[0].Name
		node.lastKey = entries[len(entries)-1].Name
	}
	return node, nil
}

func parseEntry(b []byte, wide bool) (Entry, uint32, error) {
	const fixed = 4 + 4 + 4 + 4 + 4 + 2 + 2
	if uint32(len(b)) < fixed {
		return Entry{}, 0, ErrTruncated
	}
	version := binary.LittleEndian.Uint32(b[4:8])
	firstBlock := binary.LittleEndian.Uint32(b[8:12])
	length := binary.LittleEndian.Uint32(b[12:16])
	timestamp := binary.LittleEndian.Uint32(b[16:20])
	commentLen := binary.LittleEndian.Uint16(b[20:22])
	nameLen := binary.LittleEndian.Uint16(b[22:24])

	charWidth := uint32(1)
	if wide {
		charWidth = 2
	}
	nameBytes := uint32(nameLen) * charWidth
	if fixed+nameBytes > uint32(len(b)) {
		return Entry{}, 0, ErrTruncated
	}
	name := decodeFixedString(b[fixed:fixed+nameBytes], wide)

	return Entry{
		Name:          name,
		Version:       version,
		FirstBlock:    firstBlock,
		Length:        length,
		Timestamp:     timestamp,
		CommentLength: commentLen,
	}, fixed + nameBytes, nil
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < blockSize {
		return Header{}, ErrTruncated
	}
	if !bytes.Equal(data[:4], magicHeader[:]) {
		return Header{}, ErrBadMagic
	}
	pos := 4

	wide, err := detectWidth(data[pos:])
	if err != nil {
		return Header{}, err
	}
	charWidth := 1
	if wide {
		charWidth = 2
	}

	pos += 14 * charWidth // marker field
	version := decodeFixedString(data[pos:pos+14*charWidth], wide)
	pos += 14 * charWidth

	timestamp := binary.LittleEndian.Uint32(data[pos:])
	pos += 4
	filetype := binary.LittleEndian.Uint16(data[pos:])
	pos += 2

	comment := decodeFixedString(data[pos:pos+256*charWidth], wide)
	pos += 256 * charWidth

	sccInfo := binary.LittleEndian.Uint32(data[pos:])
	pos += 4
	sccLength := binary.LittleEndian.Uint32(data[pos:])
	pos += 4

	return Header{
		Wide:      wide,
		Version:   version,
		Timestamp: timestamp,
		FileType:  filetype,
		Comment:   comment,
		SCCInfo:   sccInfo,
		SCCLength: sccLength,
	}, nil
}

// detectWidth compares the marker field against ASCII and UTF-16
// "PowerBuilder", failing hard on neither (spec.md §4.2).
func detectWidth(field []byte) (bool, error) {
	if len(field) >= len(markerASCII) && bytes.Equal(field[:len(markerASCII)], markerASCII) {
		return false, nil
	}
	if len(field) >= len(markerWide) && bytes.Equal(field[:len(markerWide)], markerWide) {
		return true, nil
	}
	return false, ErrNotPowerBuilder
}

func decodeFixedString(b []byte, wide bool) string {
	if !wide {
		end := bytes.IndexByte(b, 0)
		if end < 0 {
			end = len(b)
		}
		return string(b[:end])
	}
	end := 0
	for end+1 < len(b) && !(b[end] == 0 && b[end+1] == 0) {
		end += 2
	}
	units := make([]uint16, 0, end/2)
	for i := 0; i+1 < end+2 && i < end; i += 2 {
		units = append(units, binary.LittleEndian.Uint16(b[i:]))
	}
	return string(utf16ToRunes(units))
}

func utf16ToRunes(units []uint16) []rune {
	out := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		r := units[i]
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(units) {
			r2 := units[i+1]
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				out = append(out, rune((uint32(r)-0xD800)<<10+(uint32(r2)-0xDC00)+0x10000))
				i++
				continue
			}
		}
		out = append(out, rune(r))
	}
	return out
}

// String renders a diagnostic one-line summary of an entry.
func (e Entry) String() string {
	return fmt.Sprintf("%s (v%d, %d bytes)", e.Name, e.Version, e.Length)
}
