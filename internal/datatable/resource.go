package datatable

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lakeman/pbdump/internal/binreader"
)

// DateTime is the Go shape of original_source/pb_class_types.h's
// pb_datetime: {millisecond uint32, year uint16, month, day, hour,
// minute, second, day_of_week uint8}.
type DateTime struct {
	Millisecond uint32
	Year        uint16
	Month       uint8
	Day         uint8
	Hour        uint8
	Minute      uint8
	Second      uint8
	DayOfWeek   uint8
}

// timeOnlySentinel is the year/month combination original_source/class.c's
// get_table_resource checks to decide whether a datetime record carries a
// time-only value (spec.md §4.3: "if year = 63636 and month = 255").
const (
	timeOnlySentinelYear  = 63636
	timeOnlySentinelMonth = 255
)

func decodeDateTime(r *binreader.Reader) (DateTime, error) {
	var dt DateTime
	var err error
	if dt.Millisecond, err = r.ReadU32(); err != nil {
		return dt, err
	}
	if dt.Year, err = r.ReadU16(); err != nil {
		return dt, err
	}
	for _, field := range []*uint8{&dt.Month, &dt.Day, &dt.Hour, &dt.Minute, &dt.Second, &dt.DayOfWeek} {
		b, err := r.ReadU8()
		if err != nil {
			return dt, err
		}
		*field = b
	}
	return dt, nil
}

// String renders a DateTime the way spec.md §4.3/§4.4.2 describes: a
// time-only "HH:MM:SS.uuuuuu" when the sentinel year/month are set,
// otherwise a date "YYYY-MM-DD".
func (dt DateTime) String() string {
	if dt.Year == timeOnlySentinelYear && dt.Month == timeOnlySentinelMonth {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", dt.Hour, dt.Minute, dt.Second, dt.Millisecond*1000)
	}
	return fmt.Sprintf("%04d-%02d-%02d", dt.Year, dt.Month, dt.Day)
}

// Decimal is the post-PB10 on-disk decimal shape: a 14-byte BCD-ish
// magnitude, a sign byte, and an exponent byte.
type Decimal struct {
	Magnitude [14]byte
	Sign      byte
	Exponent  byte
}

// OldDecimal is the pre-PB10 on-disk decimal shape: sign and exponent
// precede a 10-byte magnitude.
type OldDecimal struct {
	Sign      byte
	Exponent  byte
	Magnitude [10]byte
}

func decimalDigits(magnitude []byte) string {
	var b strings.Builder
	for _, by := range magnitude {
		hi, lo := by>>4, by&0xf
		if hi <= 9 {
			b.WriteByte('0' + hi)
		}
		if lo <= 9 {
			b.WriteByte('0' + lo)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		digits = "0"
	}
	return digits
}

func renderDecimal(digits string, exponent int, negative bool) string {
	if exponent > 0 && exponent < len(digits) {
		digits = digits[:len(digits)-exponent] + "." + digits[len(digits)-exponent:]
	} else if exponent >= len(digits) && exponent > 0 {
		digits = "0." + strings.Repeat("0", exponent-len(digits)) + digits
	}
	if negative {
		digits = "-" + digits
	}
	return digits
}

// dispatchFunc formats one typed record given its resolved byte pointer.
type dispatchFunc func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, fmtElem func(PBType, uint32) (string, error)) (string, error)

var dispatch = map[StructureType]dispatchFunc{
	StructureInt: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		v, err := binreader.Uint32At(ptr, 0)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(int32(v)), 10), nil
	},
	StructureDouble: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		v, err := binreader.Uint64At(ptr, 0)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(math.Float64frombits(v), 'f', -1, 64), nil
	},
	StructureDecimal: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		if version < VersionPB100 {
			if len(ptr) < 12 {
				return "", binreader.ErrOutsideBoundary
			}
			var od OldDecimal
			od.Sign, od.Exponent = ptr[0], ptr[1]
			copy(od.Magnitude[:], ptr[2:12])
			digits := decimalDigits(od.Magnitude[:])
			return renderDecimal(digits, int(od.Exponent), od.Sign != 0), nil
		}
		if len(ptr) < 16 {
			return "", binreader.ErrOutsideBoundary
		}
		var d Decimal
		copy(d.Magnitude[:], ptr[0:14])
		d.Sign, d.Exponent = ptr[14], ptr[15]
		digits := decimalDigits(d.Magnitude[:])
		return renderDecimal(digits, int(d.Exponent), d.Sign != 0), nil
	},
	StructureDatetime: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		dt, err := decodeDateTime(binreader.New(ptr))
		if err != nil {
			return "", err
		}
		return dt.String(), nil
	},
	StructureLongLong: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		v, err := binreader.Uint64At(ptr, 0)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(v), 10), nil
	},
	StructurePropertyRef: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		return nameOrFallback(t, main, version, ptr, info, dup, "prop_")
	},
	StructureMethodRef: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		return nameOrFallback(t, main, version, ptr, info, dup, "method_")
	},
	StructureCreateRef: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		return nameOrFallback(t, main, version, ptr, info, dup, "type_")
	},
	StructureIndirectArg: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		if len(ptr) < 2 {
			return "", binreader.ErrOutsideBoundary
		}
		kind, err := binreader.Uint16At(ptr, 0)
		if err != nil {
			return "", err
		}
		if sentinel, ok := indirectSentinels[IndirectKind(kind)]; ok {
			return sentinel, nil
		}
		return "", ErrUnknownStructureType
	},
	StructureIndirectFunc: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, _ func(PBType, uint32) (string, error)) (string, error) {
		r := binreader.New(ptr)
		nameOff, err := r.ReadU32()
		if err != nil {
			return "", err
		}
		name, err := t.LookupString(nameOff, main, version, dup)
		if err != nil {
			name = "?"
		}
		argCount, err := r.ReadU16()
		if err != nil {
			return "", err
		}
		args := make([]string, 0, argCount)
		for i := uint16(0); i < argCount; i++ {
			argOff, err := r.ReadU32()
			if err != nil {
				break
			}
			s, err := t.LookupString(argOff, main, version, dup)
			if err != nil {
				s = "?"
			}
			args = append(args, s)
		}
		return name + "(" + strings.Join(args, ", ") + ")", nil
	},
	StructureArrayValues: func(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, fmtElem func(PBType, uint32) (string, error)) (string, error) {
		r := binreader.New(ptr)
		elems := make([]string, 0, info.Count)
		for i := uint16(0); i < info.Count; i++ {
			raw, err := r.ReadU32()
			if err != nil {
				break
			}
			typ, err := r.ReadU16()
			if err != nil {
				break
			}
			if _, err := r.ReadU16(); err != nil { // flags, unused for rendering
				break
			}
			s, err := fmtElem(PBType(typ), raw)
			if err != nil {
				s = "?"
			}
			elems = append(elems, s)
		}
		return "{" + strings.Join(elems, ", ") + "}", nil
	},
}

func nameOrFallback(t *Table, main *Table, version int, ptr []byte, info *RecordInfo, dup func([]byte) string, fallbackPrefix string) (string, error) {
	nameOff, err := binreader.Uint32At(ptr, 0)
	if err == nil {
		if name, err := t.LookupString(nameOff, main, version, dup); err == nil && name != "" {
			return name, nil
		}
	}
	return fmt.Sprintf("%s%d", fallbackPrefix, info.Count), nil
}

// FormatResource renders the canonical source-text form of a typed
// record, the dispatch table of spec.md §4.3. fmtElem formats a nested
// scalar value (used by array-values); pass FormatScalar bound to the
// same table/main/version/dup for normal use.
func (t *Table) FormatResource(info *RecordInfo, main *Table, version int, dup func([]byte) string, fmtElem func(PBType, uint32) (string, error)) (string, error) {
	ptr, err := t.LookupPointer(info.Offset, main)
	if err != nil {
		return "", err
	}
	if fn, ok := dispatch[info.StructureType]; ok {
		return fn(t, main, version, ptr, info, dup, fmtElem)
	}
	return fmt.Sprintf("%02x_%04x", uint16(info.StructureType), info.Offset), nil
}
