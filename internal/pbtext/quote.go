// Package pbtext implements the PowerScript string-quoting convention:
// the tilde-escape alphabet PowerBuilder itself uses for string literals.
// Grounded line-for-line on original_source/class.c's quote_escape_string.
package pbtext

import "strings"

// Quote wraps s in double quotes and applies the tilde-escape alphabet:
// ~b ~f ~v ~r ~n ~t for the corresponding control characters, ~~ for a
// literal tilde, ~" for a literal double quote, and ~hNN (lowercase hex)
// for any other byte below 0x1f or equal to 0x7f (0x1f itself is copied
// unescaped). The length is
// effectively precomputed by the single builder pass below, mirroring the
// original's two-pass size-then-emit discipline without a second pass
// being observable to callers.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\b':
			b.WriteString("~b")
		case '\f':
			b.WriteString("~f")
		case '\v':
			b.WriteString("~v")
		case '\r':
			b.WriteString("~r")
		case '\n':
			b.WriteString("~n")
		case '\t':
			b.WriteString("~t")
		case '~':
			b.WriteString("~~")
		case '"':
			b.WriteString(`~"`)
		default:
			if c < 0x1f || c == 0x7f {
				b.WriteString("~h")
				writeHexByte(&b, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

const hexDigits = "0123456789abcdef"

func writeHexByte(b *strings.Builder, c byte) {
	b.WriteByte(hexDigits[c>>4])
	b.WriteByte(hexDigits[c&0xf])
}
