// Package arena implements the bump/chain allocator the decoded object
// model is built on, grounded on original_source/pool_alloc.c. Go's GC
// makes per-object frees unnecessary, so the allocator's job here is not
// memory safety. Slices returned by Alloc share the arena's buffers and
// Release drops those buffers at once. The string helpers (DupASCII,
// DupUTF16, Sprintf) stage their bytes in the arena but return ordinary
// Go strings, which stay valid after Release.
package arena

import (
	"fmt"
	"unicode/utf16"
)

// baseBlockSize mirrors pool_alloc.c's BLOCK_SIZE (0x10000).
const baseBlockSize = 0x10000

// Arena is a chained bump allocator. The zero value is ready to use.
type Arena struct {
	buffers [][]byte
	cur     int // index into buffers of the buffer currently being filled
}

// New returns a ready-to-use Arena.
func New() *Arena {
	return &Arena{}
}

// Alloc returns a zeroed byte slice of the requested size, aligned to
// align (which must be a power of two). Grounded on pool_alloc's
// pool_alloc: round up the current pointer to satisfy alignment, and
// extend the buffer chain when the current buffer cannot satisfy the
// request.
func (a *Arena) Alloc(size int, align int) []byte {
	if size == 0 {
		return nil
	}
	if align <= 0 {
		align = 1
	}
	if len(a.buffers) == 0 {
		a.newBuffer(size)
	}
	buf := a.buffers[a.cur]
	used := len(buf)
	aligned := alignUp(used, align)
	if aligned+size > cap(buf) {
		a.newBuffer(size)
		buf = a.buffers[a.cur]
		aligned = 0
	}
	buf = buf[:aligned+size]
	a.buffers[a.cur] = buf
	return buf[aligned : aligned+size]
}

func alignUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

// newBuffer appends a fresh backing buffer sized to fit at least
// requested bytes, rounded up to the next multiple of baseBlockSize —
// the same sizing rule pool_create/pool_alloc use when the current buffer
// is exhausted or the request is oversized.
func (a *Arena) newBuffer(requested int) {
	size := baseBlockSize
	for size < requested {
		size += baseBlockSize
	}
	a.buffers = append(a.buffers, make([]byte, 0, size))
	a.cur = len(a.buffers) - 1
}

// DupASCII copies s into the arena and returns it as a Go string, which
// is a separate copy of the arena bytes, grounded on pool_alloc.c's
// pool_dup/pool_dupn.
func (a *Arena) DupASCII(s string) string {
	buf := a.Alloc(len(s), 1)
	copy(buf, s)
	return string(buf)
}

// DupUTF16 transcodes a little-endian UTF-16 byte sequence into a UTF-8
// string via DupASCII. The original (pool_dupn_u/pool_dup_u) uses ICU's
// u_strToUTF8; no ICU binding exists anywhere in the example pack, so this
// uses the stdlib unicode/utf16 + unicode/utf8 transcode instead (see
// DESIGN.md).
func (a *Arena) DupUTF16(wide []byte) string {
	n := len(wide) / 2
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = uint16(wide[2*i]) | uint16(wide[2*i+1])<<8
	}
	// Trim at the first NUL code unit, matching the null-terminated
	// semantics of the original's wide-char string fields.
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	decoded := string(utf16.Decode(units))
	return a.DupASCII(decoded)
}

// Sprintf formats into a string copied through DupASCII, grounded on
// pool_alloc.c's pool_sprintf.
func (a *Arena) Sprintf(format string, args ...interface{}) string {
	return a.DupASCII(fmt.Sprintf(format, args...))
}

// Release drops every backing buffer. Arena must not be used afterwards.
func (a *Arena) Release() {
	a.buffers = nil
	a.cur = 0
}
