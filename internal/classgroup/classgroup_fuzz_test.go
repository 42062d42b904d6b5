package classgroup

import (
	"testing"

	"github.com/lakeman/pbdump/internal/binreader"
)

// FuzzDecode replaces the teacher's legacy go-fuzz-style func Fuzz(data
// []byte) int harness (original_source's equivalent intent: a
// NewBytes(data, opts).Parse() round-trip) with the stdlib testing.F API,
// seeded from the same synthetic fixtures buildMinimalGroup produces.
// Decode must never panic on arbitrary input; a decode error is an
// expected, non-fatal outcome for malformed data.
func FuzzDecode(f *testing.F) {
	f.Add(buildMinimalGroup())

	truncated := buildMinimalGroup()
	f.Add(truncated[:len(truncated)-5])

	oldVersion := &byteBuilder{}
	oldVersion.u32(50)
	oldVersion.u16(0)
	oldVersion.u32(0)
	f.Add(oldVersion.buf)

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Decode panicked on input %x: %v", data, r)
			}
		}()
		_, _ = Decode(binreader.New(data), Options{})
	})
}
