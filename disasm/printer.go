// Package disasm renders method capsules as annotated listings: the
// decoded instructions with reconstructed variable names, followed by
// the attribute tables the reconstruction worked from and produced.
package disasm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chazu/javelin/bytecode"
	"github.com/chazu/javelin/capsule"
)

// Options controls listing output.
type Options struct {
	Color       bool
	LineNumbers bool
}

// Printer renders capsules to one writer.
type Printer struct {
	w    io.Writer
	opts Options
}

// NewPrinter returns a printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// Listing renders one capsule to a string with colors off.
func Listing(m *capsule.Method, lineNumbers bool) (string, error) {
	var sb strings.Builder
	if err := NewPrinter(&sb, Options{LineNumbers: lineNumbers}).Print(m); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Print analyzes the capsule and writes the full listing: header,
// instructions with name comments, exception table, the metadata
// variable table as given, and the reconstructed variables.
func (p *Printer) Print(m *capsule.Method) error {
	body, err := m.Body()
	if err != nil {
		return err
	}
	table, insts, err := body.AnalyzeLocals()
	if err != nil {
		return err
	}
	args, err := body.ArgCount(m.Static)
	if err != nil {
		return err
	}

	RenderHeading(p.w, p.opts.Color, m.FullName()+m.Descriptor)
	fmt.Fprintf(p.w, "  stack=%d, locals=%d, args_size=%d\n", m.MaxStack, m.MaxLocals, args)

	p.writeCode(body, table, insts)

	if len(m.Handlers) > 0 {
		p.writeHandlers(m.Handlers)
	}
	if len(m.LocalVars) > 0 {
		p.writeLocalVars(m.LocalVars)
	}
	p.writeReconstructed(table)
	return nil
}

func (p *Printer) writeCode(body *bytecode.Body, table *bytecode.VariableTable, insts []bytecode.Instruction) {
	lineAt := make(map[int]int, len(body.Lines))
	for _, ln := range body.Lines {
		lineAt[ln.StartPC] = ln.Line
	}

	for _, inst := range insts {
		if line, ok := lineAt[inst.Offset]; ok && p.opts.LineNumbers {
			fmt.Fprintf(p.w, "        linenumber %d\n", line)
		}
		if inst.Switch != nil {
			p.writeSwitch(inst)
			continue
		}

		text := instText(inst)
		if comment := p.comment(table, inst); comment != "" {
			fmt.Fprintf(p.w, "%6d: %-28s // %s\n", inst.Offset, text, comment)
		} else {
			fmt.Fprintf(p.w, "%6d: %s\n", inst.Offset, text)
		}
	}
	fmt.Fprintln(p.w)
}

// comment names a slot access when the covering record carries a
// source name. Synthetic placeholders only repeat the slot, so they
// stay out of the listing; they show up in the reconstructed table.
func (p *Printer) comment(table *bytecode.VariableTable, inst bytecode.Instruction) string {
	if inst.Slot < 0 {
		return ""
	}
	id, ok := table.Resolve(inst)
	if !ok {
		return ""
	}
	if v := table.Var(id); v.FromMetadata {
		return v.Name
	}
	return ""
}

func (p *Printer) writeSwitch(inst bytecode.Instruction) {
	sw := inst.Switch
	fmt.Fprintf(p.w, "%6d: %s {\n", inst.Offset, inst.Op)
	if sw.Keys == nil {
		for i, target := range sw.Targets {
			fmt.Fprintf(p.w, "%14d: %d\n", int(sw.Low)+i, target)
		}
	} else {
		for i, key := range sw.Keys {
			fmt.Fprintf(p.w, "%14d: %d\n", key, sw.Targets[i])
		}
	}
	fmt.Fprintf(p.w, "%14s: %d\n", "default", sw.Default)
	fmt.Fprintln(p.w, "        }")
}

func (p *Printer) writeHandlers(handlers []capsule.Handler) {
	RenderHeading(p.w, p.opts.Color, "Exception table:")
	rows := make([][]string, 0, len(handlers))
	for _, h := range handlers {
		catch := h.CatchType
		if catch == "" {
			catch = "any"
		}
		rows = append(rows, []string{
			strconv.Itoa(h.StartPC),
			strconv.Itoa(h.EndPC),
			strconv.Itoa(h.HandlerPC),
			catch,
		})
	}
	RenderTable(p.w, []string{"From", "To", "Target", "Type"}, rows, nil)
	fmt.Fprintln(p.w)
}

func (p *Printer) writeLocalVars(locals []capsule.LocalVar) {
	RenderHeading(p.w, p.opts.Color, "LocalVariableTable:")
	rows := make([][]string, 0, len(locals))
	for _, lv := range locals {
		rows = append(rows, []string{
			strconv.Itoa(lv.StartPC),
			strconv.Itoa(lv.Length),
			strconv.Itoa(lv.Slot),
			lv.Name,
			lv.Descriptor,
		})
	}
	RenderTable(p.w, []string{"Start", "Length", "Slot", "Name", "Signature"}, rows, nil)
	fmt.Fprintln(p.w)
}

func (p *Printer) writeReconstructed(table *bytecode.VariableTable) {
	RenderHeading(p.w, p.opts.Color, "ReconstructedVariables:")
	vars := table.Variables()
	rows := make([][]string, 0, len(vars))
	for _, v := range vars {
		end := strconv.Itoa(v.ScopeEnd)
		if v.ScopeEnd == bytecode.ScopeUnresolved {
			end = "-"
		}
		source := "inferred"
		if v.FromMetadata {
			source = "metadata"
		}
		rows = append(rows, []string{
			strconv.Itoa(v.ScopeStart),
			end,
			strconv.Itoa(v.Slot),
			v.Name,
			v.Type.String(),
			source,
		})
	}
	RenderTable(p.w, []string{"Start", "End", "Slot", "Name", "Type", "Source"}, rows, nil)
}

// instText renders one instruction's mnemonic and operands without its
// offset.
func instText(inst bytecode.Instruction) string {
	name := inst.Op.String()
	if inst.Wide {
		name = "wide " + name
	}
	switch {
	case inst.Op == bytecode.OpIinc:
		return fmt.Sprintf("%s %d, %d", name, inst.Slot, inst.Const)
	case inst.Slot >= 0 && inst.Op.FixedSlot() < 0:
		return fmt.Sprintf("%s %d", name, inst.Slot)
	case inst.Op.IsBranch():
		return fmt.Sprintf("%s %d", name, inst.Arg)
	case inst.Op == bytecode.OpBipush || inst.Op == bytecode.OpSipush || inst.Op == bytecode.OpNewArray:
		return fmt.Sprintf("%s %d", name, inst.Arg)
	case inst.Op.ConstantRef():
		return fmt.Sprintf("%s #%d", name, inst.Arg)
	default:
		return name
	}
}
