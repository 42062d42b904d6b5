package printer

import (
	"fmt"

	"github.com/lakeman/pbdump/internal/arena"
	"github.com/lakeman/pbdump/internal/classgroup"
	"github.com/lakeman/pbdump/internal/datatable"
)

// ScriptResolver backs a Printer's Resolver with one script's local
// variable/argument lists and its owning Group's shared/external/type
// tables, so expression rendering can print real names instead of raw
// table indices.
type ScriptResolver struct {
	Group   *classgroup.Group
	Script  *classgroup.ScriptDef
	Version int
	Arena   *arena.Arena
}

func (r *ScriptResolver) dup(b []byte) string {
	if r.Arena == nil {
		return arena.New().DupUTF16(b)
	}
	return r.Arena.DupUTF16(b)
}

// Local resolves a local-variable slot: the script's own LocalVariables
// first, then its formal Arguments (PowerScript shares one index space
// across both in the compiled form spec.md §4.6 describes).
func (r *ScriptResolver) Local(idx int) string {
	if r.Script == nil {
		return fmt.Sprintf("local_%d", idx)
	}
	if idx >= 0 && idx < len(r.Script.LocalVariables) {
		return r.Script.LocalVariables[idx].Name
	}
	argIdx := idx - len(r.Script.LocalVariables)
	if argIdx >= 0 && argIdx < len(r.Script.Arguments) {
		return r.Script.Arguments[argIdx].Name
	}
	return fmt.Sprintf("local_%d", idx)
}

// Shared resolves a slot in the owning Group's global-variable list.
func (r *ScriptResolver) Shared(idx int) string {
	if r.Group != nil && idx >= 0 && idx < len(r.Group.GlobalTypes) {
		return r.Group.GlobalTypes[idx].Name
	}
	return fmt.Sprintf("shared_%d", idx)
}

// Ext resolves a slot in the owning Group's external-reference list.
func (r *ScriptResolver) Ext(idx int) string {
	if r.Group == nil || idx < 0 || idx >= len(r.Group.ExternalRefs) {
		return fmt.Sprintf("ext_%d", idx)
	}
	ref := r.Group.ExternalRefs[idx]
	name, err := r.Group.MainTable.LookupString(ref.NameOffset, r.Group.MainTable, r.Version, r.dup)
	if err != nil {
		return fmt.Sprintf("ext_%d", idx)
	}
	return name
}

// Type resolves a slot in the owning Group's flat TypeList.
func (r *ScriptResolver) Type(idx int) string {
	if r.Group != nil && idx >= 0 && idx < len(r.Group.TypeList) {
		return r.Group.TypeList[idx]
	}
	return fmt.Sprintf("type_%d", idx)
}

// FuncClass resolves the class portion of a classcall dispatch the same
// way as Type: both index the same flat TypeList (spec.md §4.4.3).
func (r *ScriptResolver) FuncClass(idx int) string {
	return r.Type(idx)
}

// Resource, ResourceString and ResourceStringConst look the offset up
// in the script's own resource table (populated from the implementation
// record's resource section, spec.md §4.3/§4.4).
func (r *ScriptResolver) Resource(offset int) (string, error) {
	return r.lookup(offset)
}

func (r *ScriptResolver) ResourceString(offset int) (string, error) {
	return r.lookup(offset)
}

func (r *ScriptResolver) ResourceStringConst(offset int) (string, error) {
	return r.lookup(offset)
}

func (r *ScriptResolver) lookup(offset int) (string, error) {
	if r.Script == nil || r.Script.Resources == nil {
		return "", datatable.ErrUnknownStructureType
	}
	var main *datatable.Table
	if r.Group != nil {
		main = r.Group.MainTable
	}
	return r.Script.Resources.LookupString(uint32(offset), main, r.Version, r.dup)
}
