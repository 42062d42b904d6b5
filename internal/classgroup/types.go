// Package classgroup decodes one library entry's class-group binary
// payload into an object model, grounded on
// original_source/class.c's class_parse and the struct layouts in
// original_source/class_private.h / pb_class_types.h.
package classgroup

import (
	"github.com/lakeman/pbdump/internal/datatable"
	"github.com/lakeman/pbdump/internal/log"
)

// Options configures Decode, mirroring the teacher's pe.Options pattern.
type Options struct {
	// IncludeGenerated is carried for callers; Decode does not read it.
	// Whether compiler-generated statements are emitted is decided by
	// printer.Options.IncludeGenerated.
	IncludeGenerated bool

	// Logger receives non-fatal decode warnings. A nil Logger installs
	// the default error-level stderr logger.
	Logger *log.Helper
}

func (o Options) logger() *log.Helper {
	if o.Logger == nil {
		return log.NewHelper(nil)
	}
	return o.Logger
}

// FileHeader is the class-group's own internal header (distinct from the
// surrounding library container header), carrying the fields spec.md §3
// names: compiler version, system type, and timestamp.
type FileHeader struct {
	CompilerVersion uint32
	SystemType      uint16
	Timestamp       uint32
}

// ExternalRef is a reference from this class group to a type defined in
// another library, grounded on pb_class_types.h's pbext_reference.
type ExternalRef struct {
	NameOffset uint32
	Unnamed1   uint16
	SystemType uint16
	Type       uint16
	Unnamed2   uint16
}

// EnumValue is one member of an EnumType.
type EnumValue struct {
	Name  string
	Value uint16
}

// TypeKind disjoint-tags a Group's flat types[] slice entry.
type TypeKind int

const (
	KindEnum TypeKind = iota
	KindClass
	KindInitSource
	KindSharedSource
	KindGlobalSource
)

// Type is one element of the class-group's flat type list (spec.md §3:
// "From these it constructs a flat types[] where each element is an
// EnumType, ClassType, or one of three source-section sentinels").
type Type struct {
	Kind  TypeKind
	Name  string
	Enum  *EnumType
	Class *ClassDef
}

// EnumType is a named, ordered set of enum values.
type EnumType struct {
	Name   string
	Values []EnumValue
}

// VariableDef is a user-visible variable descriptor produced by
// type-def-list conversion (spec.md's "type-def list is materialised as
// an array of user-visible variable descriptors").
type VariableDef struct {
	ReadAccess    string
	WriteAccess   string
	Type          string
	Name          string
	Dimensions    string
	InitialValues []string
	Indirect      bool
	Constant      bool
	UserDefined   bool
}

// ArgumentDef describes one formal parameter of a script.
type ArgumentDef struct {
	Access     string // "", "ref", "readonly"
	Type       string
	Name       string
	Dimensions string
	Variadic   bool
}

// ScriptDef is one method/event/subroutine/function, grounded on
// pb_class_types.h's pbscript_header plus the linked implementation body.
type ScriptDef struct {
	Name           string
	Access         string
	Signature      string
	ExternalName   string // "alias for" target
	Library        string // DLL name for external functions
	ReturnType     string
	EventType      string
	LocalVariables []*VariableDef
	Arguments      []*ArgumentDef
	Throws         []string

	Event        bool
	Hidden       bool
	System       bool
	RPC          bool
	Implemented  bool
	InAncestor   bool
	MethodID     uint16
	MethodNumber uint16

	// Code is the raw p-code byte buffer for implemented scripts.
	Code []byte
	// DebugLines maps a pcode offset to a 1-based source line number.
	DebugLines []DebugLine
	// Resources backs resource-table lookups (RES tokens) used while
	// disassembling this script's body.
	Resources *datatable.Table
}

// DebugLine is one entry of a script's debug-line table.
type DebugLine struct {
	LineNumber  uint32
	PCodeOffset uint32
}

// ClassDef is a decoded class record.
type ClassDef struct {
	Ancestor          string
	Parent            string
	AutoInstantiate   bool
	Scripts           []*ScriptDef
	InstanceVariables []*VariableDef
	IndirectRefs      []*VariableDef
}

// Group is the decoded content of one library entry (spec.md §3 "Class
// group"), owning everything reachable through it.
type Group struct {
	Header         FileHeader
	ExternalRefs    []ExternalRef
	MainTable      *datatable.Table
	GlobalTypes    []*VariableDef
	FunctionNames  *datatable.Table
	Arguments      *datatable.Table
	TypeList       []string
	EnumValueTable *datatable.Table
	Types          []Type

	// Anomalies collects non-fatal decode oddities, the concrete carrier
	// for spec.md §7's "semantic invariants: warn and continue" policy.
	Anomalies []string
}
