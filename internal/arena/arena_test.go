package arena

import "testing"

func TestAllocZeroedAndSized(t *testing.T) {
	a := New()
	b := a.Alloc(10, 1)
	if len(b) != 10 {
		t.Fatalf("expected 10 bytes, got %d", len(b))
	}
	for _, v := range b {
		if v != 0 {
			t.Fatalf("expected zeroed allocation")
		}
	}
}

func TestAllocAlignment(t *testing.T) {
	a := New()
	a.Alloc(3, 1)
	b := a.Alloc(8, 8)
	// b must start at an 8-byte aligned offset within the backing buffer.
	buf := a.buffers[a.cur]
	off := len(buf) - len(b)
	if off%8 != 0 {
		t.Fatalf("expected 8-byte alignment, got offset %d", off)
	}
}

func TestNewBufferOnOverflow(t *testing.T) {
	a := New()
	a.Alloc(baseBlockSize-1, 1)
	before := len(a.buffers)
	a.Alloc(100, 1)
	if len(a.buffers) != before+1 {
		t.Fatalf("expected a new buffer to be chained in")
	}
}

func TestDupASCII(t *testing.T) {
	a := New()
	s := a.DupASCII("hello")
	if s != "hello" {
		t.Fatalf("got %q", s)
	}
}

func TestDupUTF16(t *testing.T) {
	a := New()
	// "ab" in little-endian UTF-16, NUL terminated.
	wide := []byte{'a', 0, 'b', 0, 0, 0}
	s := a.DupUTF16(wide)
	if s != "ab" {
		t.Fatalf("got %q", s)
	}
}

func TestSprintf(t *testing.T) {
	a := New()
	s := a.Sprintf("%s_%d", "x", 7)
	if s != "x_7" {
		t.Fatalf("got %q", s)
	}
}

func TestReleaseClearsBuffers(t *testing.T) {
	a := New()
	a.Alloc(10, 1)
	a.Release()
	if len(a.buffers) != 0 {
		t.Fatalf("expected buffers to be cleared")
	}
}
