package classgroup

import (
	"fmt"
	"strings"

	"github.com/lakeman/pbdump/internal/arena"
	"github.com/lakeman/pbdump/internal/binreader"
	"github.com/lakeman/pbdump/internal/datatable"
)

// rawTypeDef is the Go shape of original_source/pb_class_types.h's
// pbtype_def: {flags, unnamed1, array_dimensions, name_offset,
// value{value, flags, type}}.
type rawTypeDef struct {
	Flags          uint16
	Unnamed1       uint16
	DimensionsOff  uint32
	NameOffset     uint32
	Value          uint32
	ValueFlags     uint16
	ValueType      uint16
}

const rawTypeDefSize = 2 + 2 + 4 + 4 + 4 + 2 + 2

func readRawTypeDef(r *binreader.Reader) (rawTypeDef, error) {
	var d rawTypeDef
	var err error
	if d.Flags, err = r.ReadU16(); err != nil {
		return d, err
	}
	if d.Unnamed1, err = r.ReadU16(); err != nil {
		return d, err
	}
	if d.DimensionsOff, err = r.ReadU32(); err != nil {
		return d, err
	}
	if d.NameOffset, err = r.ReadU32(); err != nil {
		return d, err
	}
	if d.Value, err = r.ReadU32(); err != nil {
		return d, err
	}
	if d.ValueFlags, err = r.ReadU16(); err != nil {
		return d, err
	}
	if d.ValueType, err = r.ReadU16(); err != nil {
		return d, err
	}
	return d, nil
}

// accessNames mirrors original_source/class.c's access_names[] table.
var accessNames = [4]string{"", "private", "protected", "system"}

// Flag bit assignments for indirect/constant/user_defined are not spelled
// out precisely anywhere in the surviving original_source fragments (the
// design notes call several type-header flag bits "guesses in the
// source"); these three are chosen consistently with that same
// best-effort spirit and documented in DESIGN.md rather than invented
// silently.
const (
	flagIndirect    = 0x0001
	flagConstant    = 0x0002
	flagUserDefined = 0x0008
)

func readAccessOf(flags uint16) string  { return accessNames[(flags>>4)&0x3] }
func writeAccessOf(flags uint16) string { return accessNames[(flags>>6)&0x3] }

// typeDefList is a uniform (data-table, type-definition[]) pair used for
// globals, instance variables, method imports, enum values, and locals
// per the GLOSSARY's "Type-def list" entry.
type typeDefList struct {
	table *datatable.Table
	defs  []rawTypeDef
}

func readTypeDefList(r *binreader.Reader) (*typeDefList, error) {
	table, err := datatable.ReadTable(r)
	if err != nil {
		return nil, err
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	defs := make([]rawTypeDef, count)
	for i := range defs {
		d, err := readRawTypeDef(r)
		if err != nil {
			return nil, err
		}
		defs[i] = d
	}
	return &typeDefList{table: table, defs: defs}, nil
}

// dimensionsOf formats the raw dimensions header at offset, per spec.md
// §4.4.1. The header is {count uint16, (lower uint16, upper uint16)[count]}.
func dimensionsOf(table, main *datatable.Table, offset uint32) string {
	if offset == 0xFFFF {
		return ""
	}
	ptr, err := table.LookupPointer(offset, main)
	if err != nil || len(ptr) < 2 {
		return ""
	}
	r := binreader.New(ptr)
	count, err := r.ReadU16()
	if err != nil || count == 0 {
		return "[]"
	}
	parts := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		lower, err1 := r.ReadU16()
		upper, err2 := r.ReadU16()
		if err1 != nil || err2 != nil {
			break
		}
		if lower == 0 && upper == 0 {
			if i == 0 {
				return "[]"
			}
			break
		}
		if lower == 1 {
			parts = append(parts, fmt.Sprintf("%d", upper))
		} else {
			parts = append(parts, fmt.Sprintf("%d to %d", lower, upper))
		}
	}
	if len(parts) == 0 {
		return "[]"
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

// initialValuesOf resolves the initial-value list for a type-def's
// value{value,flags,type}, per spec.md §4.4.2.
func initialValuesOf(table, main *datatable.Table, version int, dup func([]byte) string, d rawTypeDef) []string {
	pt := datatable.PBType(d.ValueType & 0x00FF)
	if datatable.IsArrayValue(d.ValueFlags) {
		info, ok := table.LookupInfo(d.Value)
		if !ok {
			return nil
		}
		s, err := table.FormatResource(info, main, version, dup, table.FormatScalar2(main, version, dup))
		if err != nil {
			return nil
		}
		return []string{s}
	}
	s, err := table.FormatScalar(pt, d.Value, main, version, dup)
	if err != nil || s == "" {
		return nil
	}
	return []string{s}
}

// toVariables converts a typeDefList into the user-visible
// VariableDef array, per spec.md's "type-def list is materialised as an
// array of user-visible variable descriptors" (§4.4).
func (l *typeDefList) toVariables(g *Group, a *arena.Arena) []*VariableDef {
	dup := func(b []byte) string { return a.DupUTF16(b) }
	version := int(g.Header.CompilerVersion)
	out := make([]*VariableDef, 0, len(l.defs))
	for _, d := range l.defs {
		name, err := l.table.LookupString(d.NameOffset, g.MainTable, version, dup)
		if err != nil {
			name = ""
		}
		out = append(out, &VariableDef{
			ReadAccess:    readAccessOf(d.Flags),
			WriteAccess:   writeAccessOf(d.Flags),
			Type:          g.resolveTypeName(d.ValueType),
			Name:          name,
			Dimensions:    dimensionsOf(l.table, g.MainTable, d.DimensionsOff),
			InitialValues: initialValuesOf(l.table, g.MainTable, version, dup, d),
			Indirect:      d.Flags&flagIndirect != 0,
			Constant:      d.Flags&flagConstant != 0,
			UserDefined:   d.Flags&flagUserDefined != 0,
		})
	}
	return out
}

// resolveTypeName implements spec.md §4.4.3's get_type_name(typeword).
func (g *Group) resolveTypeName(typeword uint16) string {
	switch {
	case typeword == 0x0000 || typeword == 0xC000:
		return ""
	case typeword&0x4000 != 0:
		for _, ref := range g.ExternalRefs {
			if ref.SystemType == typeword && ref.Unnamed1 == 0 {
				return fmt.Sprintf("systype_%d", ref.Type)
			}
		}
		g.Anomalies = append(g.Anomalies, fmt.Sprintf("no external reference for system type 0x%04x", typeword))
		return "TODO_SYS_TYPE"
	case typeword&0x8000 != 0:
		idx := int(typeword & 0x7FFF)
		if idx >= 0 && idx < len(g.TypeList) {
			return g.TypeList[idx]
		}
		return "TODO_SYS_TYPE"
	default:
		pt := datatable.PBType(typeword & 0x00FF)
		if kw := pt.Keyword(); kw != "" {
			return kw
		}
		return "TODO_SYS_TYPE"
	}
}
