package printer

import (
	"strings"

	"github.com/lakeman/pbdump/internal/classgroup"
	"github.com/lakeman/pbdump/internal/disasm"
	"github.com/lakeman/pbdump/internal/flow"
	"github.com/lakeman/pbdump/internal/opcode"
)

// PrintVariable renders one variable declaration line, grounded on
// original_source/output.c's write_variable.
func (p *Printer) PrintVariable(v *classgroup.VariableDef) string {
	var b strings.Builder
	if v.ReadAccess != "" {
		b.WriteString(v.ReadAccess)
		b.WriteString(" ")
	}
	if v.Constant {
		b.WriteString("constant ")
	}
	if v.UserDefined {
		b.WriteString("userobject ")
	}
	b.WriteString(v.Type)
	b.WriteString(" ")
	b.WriteString(v.Name)
	b.WriteString(v.Dimensions)
	if len(v.InitialValues) == 1 {
		b.WriteString(" = ")
		b.WriteString(v.InitialValues[0])
	} else if len(v.InitialValues) > 1 {
		b.WriteString(" = {")
		b.WriteString(strings.Join(v.InitialValues, ", "))
		b.WriteString("}")
	}
	return b.String()
}

// PrintVariables renders a full variable section, one declaration per
// line, grounded on write_variables.
func (p *Printer) PrintVariables(vs []*classgroup.VariableDef) string {
	var b strings.Builder
	for _, v := range vs {
		b.WriteString(p.PrintVariable(v))
		b.WriteString("\n")
	}
	return b.String()
}

// PrintForward renders a script's forward-declaration line (a short
// header with no body), grounded on write_forward.
func (p *Printer) PrintForward(s *classgroup.ScriptDef) string {
	return p.methodHeader(s) + "\n"
}

// PrintMethodHeader renders a script's full implementation header,
// grounded on write_method_header.
func (p *Printer) PrintMethodHeader(s *classgroup.ScriptDef) string {
	var b strings.Builder
	if s.Hidden {
		b.WriteString("/* HIDDEN! */\n")
	}
	b.WriteString(p.methodHeader(s))
	return b.String()
}

func (p *Printer) methodHeader(s *classgroup.ScriptDef) string {
	var b strings.Builder
	if s.Access != "" {
		b.WriteString(s.Access)
		b.WriteString(" ")
	}
	switch {
	case s.Event:
		b.WriteString("event ")
		if s.EventType != "" {
			b.WriteString(s.EventType)
			b.WriteString(" ")
		}
	case s.RPC:
		b.WriteString("rpcfunc ")
	}
	if s.ReturnType != "" {
		b.WriteString("function ")
		b.WriteString(s.ReturnType)
		b.WriteString(" ")
	} else if !s.Event {
		b.WriteString("subroutine ")
	}
	b.WriteString(s.Name)
	b.WriteString("(")
	b.WriteString(p.printArguments(s.Arguments))
	b.WriteString(")")

	if s.ExternalName != "" {
		b.WriteString(" alias for \"")
		b.WriteString(s.ExternalName)
		b.WriteString("\"")
	}
	if s.Library != "" {
		b.WriteString(" library \"")
		b.WriteString(s.Library)
		b.WriteString("\"")
	}
	if len(s.Throws) > 0 {
		b.WriteString(" throws ")
		b.WriteString(strings.Join(s.Throws, ", "))
	}
	return b.String()
}

func (p *Printer) printArguments(args []*classgroup.ArgumentDef) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		var ab strings.Builder
		if a.Access != "" {
			ab.WriteString(a.Access)
			ab.WriteString(" ")
		}
		ab.WriteString(a.Type)
		ab.WriteString(" ")
		ab.WriteString(a.Name)
		ab.WriteString(a.Dimensions)
		if a.Variadic {
			ab.WriteString(", ...")
		}
		parts = append(parts, ab.String())
	}
	return strings.Join(parts, ", ")
}

// PrintPrototypes renders the forward-declaration block for a class's
// scripts, grounded on write_prototypes.
func (p *Printer) PrintPrototypes(scripts []*classgroup.ScriptDef) string {
	var b strings.Builder
	for _, s := range scripts {
		if s.System {
			continue
		}
		b.WriteString(p.PrintForward(s))
	}
	return b.String()
}

// PrintScriptBody disassembles and prints one implemented script's full
// body: header, local variable section, then flow-classified statements,
// grounded on write_script_body.
func (p *Printer) PrintScriptBody(s *classgroup.ScriptDef, grp *classgroup.Group, table *opcode.Table) string {
	var b strings.Builder
	b.WriteString(p.PrintMethodHeader(s))
	b.WriteString("\n")

	if len(s.LocalVariables) > 0 {
		b.WriteString(p.PrintVariables(s.LocalVariables))
		b.WriteString("\n")
	}

	if !s.Implemented || len(s.Code) == 0 {
		b.WriteString("end " + endKeyword(s) + "\n")
		return b.String()
	}

	lines := make([]disasm.DebugLine, 0, len(s.DebugLines))
	for _, dl := range s.DebugLines {
		lines = append(lines, disasm.DebugLine{LineNumber: dl.LineNumber, PCodeOffset: dl.PCodeOffset})
	}

	result, err := disasm.Decode(s.Code, lines, table, p.opts.logger())
	if err != nil {
		b.WriteString("// disassembly failed: " + err.Error() + "\n")
		b.WriteString("end " + endKeyword(s) + "\n")
		return b.String()
	}
	for _, a := range result.Anomalies {
		b.WriteString("// " + a + "\n")
	}

	g := flow.NewGraph(result.Statements)
	flow.Classify(g)

	// A fresh resolver per script binds local/argument names to this
	// script's own slots without disturbing the group-level Printer.
	scriptPrinter := &Printer{opts: p.opts, resolver: &ScriptResolver{
		Group:   grp,
		Script:  s,
		Version: int(grp.Header.CompilerVersion),
	}}
	b.WriteString(scriptPrinter.PrintStatements(g))
	b.WriteString("end " + endKeyword(s) + "\n")
	return b.String()
}

func endKeyword(s *classgroup.ScriptDef) string {
	if s.Event {
		return "event"
	}
	if s.ReturnType != "" {
		return "function"
	}
	return "subroutine"
}

// PrintClass renders a complete class listing: forward prototypes,
// instance variables, then each implemented script body in turn,
// grounded on write_class.
func (p *Printer) PrintClass(name string, c *classgroup.ClassDef, grp *classgroup.Group, table *opcode.Table) string {
	var b strings.Builder
	b.WriteString("forward\n")
	b.WriteString("class " + name + " from " + orDefault(c.Ancestor, "object") + "\n")
	if c.Parent != "" && c.Parent != c.Ancestor {
		b.WriteString("inherit " + c.Parent + "\n")
	}
	b.WriteString(p.PrintVariables(c.InstanceVariables))
	b.WriteString(p.PrintPrototypes(c.Scripts))
	b.WriteString("end forward\n\n")

	b.WriteString("type variables\n")
	b.WriteString(p.PrintVariables(c.InstanceVariables))
	b.WriteString("end variables\n\n")

	for _, s := range c.Scripts {
		if !s.Implemented {
			continue
		}
		b.WriteString(p.PrintScriptBody(s, grp, table))
		b.WriteString("\n")
	}
	return b.String()
}

// PrintGroup renders a full library entry: the export header line, the
// global variables section (when GlobalTypes is non-empty), then every
// enum and class in type-list order, grounded on write_group. The
// init/shared/global source-section type entries produce no output.
func (p *Printer) PrintGroup(name string, grp *classgroup.Group, table *opcode.Table) string {
	var b strings.Builder
	b.WriteString("$PBExportHeader$" + name + "\n")
	if len(grp.GlobalTypes) > 0 {
		b.WriteString("global variables\n")
		b.WriteString(p.PrintVariables(grp.GlobalTypes))
		b.WriteString("end variables\n\n")
	}
	for _, t := range grp.Types {
		switch t.Kind {
		case classgroup.KindEnum:
			b.WriteString(p.printEnum(t))
		case classgroup.KindClass:
			b.WriteString(p.PrintClass(t.Name, t.Class, grp, table))
		}
	}
	return b.String()
}

func (p *Printer) printEnum(t classgroup.Type) string {
	var b strings.Builder
	b.WriteString("enum " + t.Name + "\n")
	for _, v := range t.Enum.Values {
		b.WriteString(p.opts.indent())
		b.WriteString(v.Name)
		b.WriteString("\n")
	}
	b.WriteString("end enum\n\n")
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
