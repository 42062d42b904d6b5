package datatable

import (
	"strconv"

	"github.com/lakeman/pbdump/internal/pbtext"
)

// arrayValueFlag marks a pbvalue as holding a handle to a multi-dimension
// array literal rather than a scalar, per spec.md §4.4.2.
const arrayValueFlag = 0x2000

// FormatScalar renders a single typed (type, raw) pbvalue pair as source
// text, grounded on original_source/class.c's get_value. raw is the
// pbvalue.value field: for most types a handle/offset into table, for
// int/long/boolean a literal encoded directly in the 32 bits.
func (t *Table) FormatScalar(pt PBType, raw uint32, main *Table, version int, dup func([]byte) string) (string, error) {
	switch pt {
	case PBTypeInt, PBTypeUint:
		return strconv.FormatInt(int64(int16(raw)), 10), nil
	case PBTypeLong, PBTypeUlong:
		return strconv.FormatInt(int64(int32(raw)), 10), nil
	case PBTypeLongLong:
		info, ok := t.LookupInfo(raw)
		if !ok {
			return strconv.FormatInt(int64(int32(raw)), 10), nil
		}
		return t.FormatResource(info, main, version, dup, t.FormatScalar2(main, version, dup))
	case PBTypeReal, PBTypeDouble, PBTypeDecimal:
		info, ok := t.LookupInfo(raw)
		if !ok {
			return "0", nil
		}
		return t.FormatResource(info, main, version, dup, t.FormatScalar2(main, version, dup))
	case PBTypeString, PBTypeChar:
		s, err := t.LookupString(raw, main, version, dup)
		if err != nil {
			return `""`, nil
		}
		return pbtext.Quote(s), nil
	case PBTypeBoolean:
		if raw != 0 {
			return "true", nil
		}
		return "false", nil
	case PBTypeDatetime, PBTypeDate, PBTypeTime:
		info, ok := t.LookupInfo(raw)
		if !ok {
			return "", nil
		}
		return t.FormatResource(info, main, version, dup, t.FormatScalar2(main, version, dup))
	case PBTypeBlob, PBTypeAny, PBTypeObjHandle:
		return "", nil
	default:
		return "", nil
	}
}

// FormatScalar2 adapts FormatScalar to the fmtElem signature
// FormatResource's array-values dispatch expects.
func (t *Table) FormatScalar2(main *Table, version int, dup func([]byte) string) func(PBType, uint32) (string, error) {
	return func(pt PBType, raw uint32) (string, error) {
		return t.FormatScalar(pt, raw, main, version, dup)
	}
}

// IsArrayValue reports whether a type-def's value flags mark it as
// holding a handle into a multi-dimension array literal rather than a
// plain scalar.
func IsArrayValue(flags uint16) bool {
	return flags&arrayValueFlag != 0
}
