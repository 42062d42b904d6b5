package datatable

// StructureType tags a metadata record's value kind, grounded on
// original_source/class_private.h's record structure_type field and the
// dispatch table in spec.md §4.3.
type StructureType uint16

// Known structure types. Values match the original compiler's own
// encoding, not a Go-chosen enumeration.
const (
	StructureInt          StructureType = 1
	StructureDouble       StructureType = 4
	StructureDecimal      StructureType = 5
	StructureDatetime     StructureType = 6
	StructurePropertyRef  StructureType = 12
	StructureMethodRef    StructureType = 13
	StructureIndirectArg  StructureType = 16
	StructureIndirectFunc StructureType = 17
	StructureCreateRef    StructureType = 18
	StructureArrayValues  StructureType = 19
	StructureLongLong     StructureType = 23
)

// RecordInfo is a single {offset, structure_type, count} metadata
// descriptor, the Go shape of original_source/pb_class_types.h's
// pbtable_info struct.
type RecordInfo struct {
	Offset        uint32
	StructureType StructureType
	Count         uint16
}

// PBType is the variable/value type enumeration PowerBuilder encodes in a
// pbvalue's type field and in type-def flags, grounded on
// original_source/pb_class_types.h's enum pbtype.
type PBType uint16

// Builtin PBTypes, per spec.md §4.4.3's get_type_name enumeration.
const (
	PBTypeNone PBType = iota
	PBTypeInt
	PBTypeLong
	PBTypeReal
	PBTypeDouble
	PBTypeDecimal
	PBTypeString
	PBTypeBoolean
	PBTypeAny
	PBTypeUint
	PBTypeUlong
	PBTypeBlob
	PBTypeDate
	PBTypeTime
	PBTypeDatetime
	PBTypeCursor
	PBTypeProcedure
	PBTypeChar
	PBTypeObjHandle
	PBTypeLongLong
	PBTypeByte
)

var builtinKeywords = map[PBType]string{
	PBTypeInt:       "int",
	PBTypeLong:      "long",
	PBTypeReal:      "real",
	PBTypeDouble:    "double",
	PBTypeDecimal:   "dec",
	PBTypeString:    "string",
	PBTypeBoolean:   "boolean",
	PBTypeAny:       "any",
	PBTypeUint:      "uint",
	PBTypeUlong:     "ulong",
	PBTypeBlob:      "blob",
	PBTypeDate:      "date",
	PBTypeTime:      "time",
	PBTypeDatetime:  "datetime",
	PBTypeCursor:    "cursor",
	PBTypeProcedure: "procedure",
	PBTypeChar:      "char",
	PBTypeObjHandle: "objhandle",
	PBTypeLongLong:  "longlong",
	PBTypeByte:      "byte",
}

// Keyword returns the builtin type keyword for t, or "" if t is not a
// builtin (system or user types are resolved by the caller).
func (t PBType) Keyword() string {
	return builtinKeywords[t]
}

// IndirectKind enumerates the sentinel renderings
// original_source/disassemble.c's get_indirect_arg_name dispatches on for
// indirect-arg (structure type 16) records.
type IndirectKind uint16

const (
	IndirectName IndirectKind = iota
	IndirectArgs
	IndirectNArgs
	IndirectValue
	IndirectEOSeq
	IndirectDims
)

var indirectSentinels = map[IndirectKind]string{
	IndirectName:  "*name",
	IndirectArgs:  "*args",
	IndirectNArgs: "*nargs",
	IndirectValue: "*value",
	IndirectEOSeq: "*eoseq",
	IndirectDims:  "*dims",
}
