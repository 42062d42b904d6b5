package classgroup

import (
	"fmt"

	"github.com/lakeman/pbdump/internal/arena"
	"github.com/lakeman/pbdump/internal/binreader"
	"github.com/lakeman/pbdump/internal/datatable"
	"github.com/lakeman/pbdump/internal/log"
)

// Checkpoint magics class_parse reads between sections, per spec.md §4.4
// steps 3/7/9. The values are arbitrary compiler build-stamp bytes; the
// decoder's only use for them is detecting a desynchronised cursor early.
var (
	checkpointAfterGlobals = []byte{0x10, 0x32, 0x08}
	checkpointAfterArgs    = []byte{0x0a, 0x78, 0x11}
	checkpointAfterTypes   = []byte{0x14, 0xf0, 0x11}
)

const externalRefSize = 4 + 2 + 2 + 2 + 2

func readExternalRef(r *binreader.Reader) (ExternalRef, error) {
	var e ExternalRef
	var err error
	if e.NameOffset, err = r.ReadU32(); err != nil {
		return e, err
	}
	if e.Unnamed1, err = r.ReadU16(); err != nil {
		return e, err
	}
	if e.SystemType, err = r.ReadU16(); err != nil {
		return e, err
	}
	if e.Type, err = r.ReadU16(); err != nil {
		return e, err
	}
	if e.Unnamed2, err = r.ReadU16(); err != nil {
		return e, err
	}
	return e, nil
}

// rawTypeHeader tags a type-list slot as an enum, a class, or one of the
// three source-section sentinels, per spec.md §3's flat types[] model.
type rawTypeHeader struct {
	Kind        uint16
	NameOffset  uint32
	ValuesCount uint16
}

func readTypeHeader(r *binreader.Reader) (rawTypeHeader, error) {
	var h rawTypeHeader
	var err error
	if h.Kind, err = r.ReadU16(); err != nil {
		return h, err
	}
	if h.NameOffset, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.ValuesCount, err = r.ReadU16(); err != nil {
		return h, err
	}
	return h, nil
}

// rawClassHeader is the fixed-layout portion of a class record that
// precedes its variable-length script and variable lists, grounded on
// class_private.h's pbclass_header.
type rawClassHeader struct {
	AncestorOffset uint32
	ParentOffset   uint32
	Flags          uint16
	ScriptCount    uint16
}

func readClassHeader(r *binreader.Reader) (rawClassHeader, error) {
	var h rawClassHeader
	var err error
	if h.AncestorOffset, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.ParentOffset, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.Flags, err = r.ReadU16(); err != nil {
		return h, err
	}
	if h.ScriptCount, err = r.ReadU16(); err != nil {
		return h, err
	}
	return h, nil
}

const classAutoInstantiateFlag = 0x0004

// rawShortHeader is a script's forward-declaration slot within a class
// record: its signature without an implementation body. script_headers
// carrying an implementation are linked against these by method_id and
// method_number (spec.md §4.4's script-linking algorithm).
type rawShortHeader struct {
	MethodID     uint16
	MethodNumber uint16
	NameOffset   uint32
	Flags        uint16
}

const (
	shortFlagEvent  = 0x0001
	shortFlagHidden = 0x0002
	shortFlagSystem = 0x0004
	shortFlagRPC    = 0x0008
)

func readShortHeader(r *binreader.Reader) (rawShortHeader, error) {
	var h rawShortHeader
	var err error
	if h.MethodID, err = r.ReadU16(); err != nil {
		return h, err
	}
	if h.MethodNumber, err = r.ReadU16(); err != nil {
		return h, err
	}
	if h.NameOffset, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.Flags, err = r.ReadU16(); err != nil {
		return h, err
	}
	return h, nil
}

// rawScriptHeader carries an implemented script's body: its p-code
// buffer, debug-line table, and resource table, plus enough of its own
// method_id/method_number to link back to a rawShortHeader.
type rawScriptHeader struct {
	MethodID     uint16
	MethodNumber uint16
	CodeLength   uint32
	LineCount    uint32
}

func readScriptHeader(r *binreader.Reader) (rawScriptHeader, error) {
	var h rawScriptHeader
	var err error
	if h.MethodID, err = r.ReadU16(); err != nil {
		return h, err
	}
	if h.MethodNumber, err = r.ReadU16(); err != nil {
		return h, err
	}
	if h.CodeLength, err = r.ReadU32(); err != nil {
		return h, err
	}
	if h.LineCount, err = r.ReadU32(); err != nil {
		return h, err
	}
	return h, nil
}

// Decode parses one library entry's class-group payload, following
// original_source/class.c's class_parse step order (spec.md §4.4).
func Decode(r *binreader.Reader, opts Options) (*Group, error) {
	logger := opts.logger()
	a := arena.New()

	var hdr FileHeader
	var err error
	if hdr.CompilerVersion, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("file header: %w", err)
	}
	if hdr.SystemType, err = r.ReadU16(); err != nil {
		return nil, fmt.Errorf("file header: %w", err)
	}
	if hdr.Timestamp, err = r.ReadU32(); err != nil {
		return nil, fmt.Errorf("file header: %w", err)
	}
	if hdr.CompilerVersion < datatable.VersionPB60 {
		return nil, ErrUnsupportedVersion
	}

	g := &Group{Header: hdr}

	refCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("external ref count: %w", err)
	}
	g.ExternalRefs = make([]ExternalRef, refCount)
	for i := range g.ExternalRefs {
		ref, err := readExternalRef(r)
		if err != nil {
			return nil, fmt.Errorf("external ref %d: %w", i, err)
		}
		g.ExternalRefs[i] = ref
	}

	g.MainTable, err = datatable.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("main table: %w", err)
	}

	if err := r.Expect(checkpointAfterGlobals); err != nil {
		return nil, fmt.Errorf("checkpoint after globals: %w", err)
	}

	globalDefs, err := readTypeDefList(r)
	if err != nil {
		return nil, fmt.Errorf("global types: %w", err)
	}
	g.GlobalTypes = globalDefs.toVariables(g, a)

	typeCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("type count: %w", err)
	}
	classCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("class count: %w", err)
	}

	g.FunctionNames, err = datatable.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("function name table: %w", err)
	}
	g.Arguments, err = datatable.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("arguments table: %w", err)
	}

	if err := r.Expect(checkpointAfterArgs); err != nil {
		return nil, fmt.Errorf("checkpoint after arguments: %w", err)
	}

	typeListOffsets, err := r.ReadU32Array(typeCount)
	if err != nil {
		return nil, fmt.Errorf("type list: %w", err)
	}
	dup := func(b []byte) string { return a.DupUTF16(b) }
	g.TypeList = make([]string, typeCount)
	for i, off := range typeListOffsets {
		name, err := g.MainTable.LookupString(off, g.MainTable, int(hdr.CompilerVersion), dup)
		if err != nil {
			g.Anomalies = append(g.Anomalies, fmt.Sprintf("type list entry %d: %v", i, err))
			continue
		}
		g.TypeList[i] = name
	}

	if err := r.Expect(checkpointAfterTypes); err != nil {
		return nil, fmt.Errorf("checkpoint after type list: %w", err)
	}

	g.EnumValueTable, err = datatable.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("enum value table: %w", err)
	}

	g.Types = make([]Type, 0, typeCount)
	decodedClasses := 0
	for i := uint32(0); i < typeCount; i++ {
		th, err := readTypeHeader(r)
		if err != nil {
			return nil, fmt.Errorf("type header %d: %w", i, err)
		}
		name, _ := g.MainTable.LookupString(th.NameOffset, g.MainTable, int(hdr.CompilerVersion), dup)

		switch TypeKind(th.Kind) {
		case KindEnum:
			values, err := decodeEnumValues(g, dup, th.ValuesCount)
			if err != nil {
				return nil, fmt.Errorf("enum %q values: %w", name, err)
			}
			g.Types = append(g.Types, Type{Kind: KindEnum, Name: name, Enum: &EnumType{Name: name, Values: values}})
		case KindClass:
			class, err := decodeClass(r, g, a, dup, logger)
			if err != nil {
				return nil, fmt.Errorf("class %q: %w", name, err)
			}
			decodedClasses++
			g.Types = append(g.Types, Type{Kind: KindClass, Name: name, Class: class})
		case KindInitSource:
			g.Types = append(g.Types, Type{Kind: KindInitSource, Name: name})
		case KindSharedSource:
			g.Types = append(g.Types, Type{Kind: KindSharedSource, Name: name})
		case KindGlobalSource:
			g.Types = append(g.Types, Type{Kind: KindGlobalSource, Name: name})
		default:
			logger.Warnf("unknown type-header kind %d for %q, treating as global source", th.Kind, name)
			g.Anomalies = append(g.Anomalies, fmt.Sprintf("unknown type-header kind %d for %q", th.Kind, name))
			g.Types = append(g.Types, Type{Kind: KindGlobalSource, Name: name})
		}
	}

	if decodedClasses != int(classCount) {
		return nil, fmt.Errorf("%w: decoded %d classes, header declared %d", ErrClassCountMismatch, decodedClasses, classCount)
	}

	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrStreamNotExhausted, r.Remaining())
	}

	return g, nil
}

func decodeEnumValues(g *Group, dup func([]byte) string, count uint16) ([]EnumValue, error) {
	out := make([]EnumValue, 0, count)
	for i := uint16(0); i < count; i++ {
		info, ok := g.EnumValueTable.LookupInfo(uint32(i))
		if !ok {
			continue
		}
		name, err := g.EnumValueTable.LookupString(info.Offset, g.MainTable, int(g.Header.CompilerVersion), dup)
		if err != nil {
			continue
		}
		out = append(out, EnumValue{Name: name, Value: i})
	}
	return out, nil
}

// decodeClass reads one class record: its ancestor/parent names, its
// instance variables, and its script table, then links forward
// declarations (short headers) against implementations (script headers)
// by method_id/method_number, per spec.md §4.4's script-linking step.
func decodeClass(r *binreader.Reader, g *Group, a *arena.Arena, dup func([]byte) string, logger *log.Helper) (*ClassDef, error) {
	ch, err := readClassHeader(r)
	if err != nil {
		return nil, fmt.Errorf("class header: %w", err)
	}

	version := int(g.Header.CompilerVersion)
	ancestor, _ := g.MainTable.LookupString(ch.AncestorOffset, g.MainTable, version, dup)
	parent, _ := g.MainTable.LookupString(ch.ParentOffset, g.MainTable, version, dup)

	instanceVars, err := readTypeDefList(r)
	if err != nil {
		return nil, fmt.Errorf("instance variables: %w", err)
	}

	shorts := make([]rawShortHeader, ch.ScriptCount)
	for i := range shorts {
		sh, err := readShortHeader(r)
		if err != nil {
			return nil, fmt.Errorf("short header %d: %w", i, err)
		}
		shorts[i] = sh
	}

	implCount, err := r.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("script implementation count: %w", err)
	}

	scripts := make([]*ScriptDef, 0, len(shorts))
	linked := make(map[int]bool)
	for i := uint32(0); i < implCount; i++ {
		sch, err := readScriptHeader(r)
		if err != nil {
			return nil, fmt.Errorf("script header %d: %w", i, err)
		}
		code, err := r.ReadBytes(sch.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("script %d code: %w", i, err)
		}
		lines := make([]DebugLine, sch.LineCount)
		for j := range lines {
			lineNo, err := r.ReadU32()
			if err != nil {
				return nil, fmt.Errorf("script %d debug line %d: %w", i, j, err)
			}
			offset, err := r.ReadU32()
			if err != nil {
				return nil, fmt.Errorf("script %d debug line %d: %w", i, j, err)
			}
			lines[j] = DebugLine{LineNumber: lineNo, PCodeOffset: offset}
		}
		resources, err := datatable.ReadTable(r)
		if err != nil {
			return nil, fmt.Errorf("script %d resources: %w", i, err)
		}

		shortIdx := -1
		for idx, sh := range shorts {
			if !linked[idx] && sh.MethodID == sch.MethodID && sh.MethodNumber == sch.MethodNumber {
				shortIdx = idx
				break
			}
		}
		if shortIdx < 0 {
			return nil, ErrScriptLinkFailed
		}
		linked[shortIdx] = true
		sh := shorts[shortIdx]

		name, _ := g.MainTable.LookupString(sh.NameOffset, g.MainTable, version, dup)
		scripts = append(scripts, &ScriptDef{
			Name:         name,
			MethodID:     sh.MethodID,
			MethodNumber: sh.MethodNumber,
			Event:        sh.Flags&shortFlagEvent != 0,
			Hidden:       sh.Flags&shortFlagHidden != 0,
			System:       sh.Flags&shortFlagSystem != 0,
			RPC:          sh.Flags&shortFlagRPC != 0,
			Implemented:  true,
			Code:         code,
			DebugLines:   lines,
			Resources:    resources,
		})
	}

	for idx, sh := range shorts {
		if linked[idx] {
			continue
		}
		name, _ := g.MainTable.LookupString(sh.NameOffset, g.MainTable, version, dup)
		scripts = append(scripts, &ScriptDef{
			Name:         name,
			MethodID:     sh.MethodID,
			MethodNumber: sh.MethodNumber,
			Event:        sh.Flags&shortFlagEvent != 0,
			Hidden:       sh.Flags&shortFlagHidden != 0,
			System:       sh.Flags&shortFlagSystem != 0,
			RPC:          sh.Flags&shortFlagRPC != 0,
			Implemented:  false,
			InAncestor:   true,
		})
	}

	return &ClassDef{
		Ancestor:          ancestor,
		Parent:            parent,
		AutoInstantiate:   ch.Flags&classAutoInstantiateFlag != 0,
		Scripts:           scripts,
		InstanceVariables: instanceVars.toVariables(g, a),
	}, nil
}
