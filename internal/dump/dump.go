// Package dump renders an ssa.Function as readable text, in the style of
// internal/ir's Printer (indent-tracking strings.Builder with
// writeLine/write helpers).
package dump

import (
	"fmt"
	"io"
	"strings"

	"kanso/internal/ssa"
	"kanso/internal/types"
)

// Printer accumulates a textual rendering of SSA functions.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Dump writes the text rendering of fn to w.
func Dump(w io.Writer, fn *ssa.Function) error {
	_, err := io.WriteString(w, DumpString(fn))
	return err
}

// DumpString returns the text rendering of fn.
func DumpString(fn *ssa.Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) write(format string, args ...interface{}) {
	p.output.WriteString(fmt.Sprintf(format, args...))
}

func (p *Printer) printFunction(fn *ssa.Function) {
	p.writeLine("function %s() -> %s {", fn.Name, typeName(fn.ReturnType))
	p.indent++
	for _, b := range fn.Blocks {
		p.printBlock(fn, b)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBlock(fn *ssa.Function, b *ssa.BasicBlock) {
	marker := ""
	if b == fn.StartBlock {
		marker = " (entry)"
	}
	p.writeLine("block%d:%s", b.ID, marker)
	p.indent++
	if b.ImmediateDominator != nil {
		p.writeLine("; idom = block%d", b.ImmediateDominator.ID)
	}
	p.writeLine("; dominatedBlocks = %s", dominatedBlockList(b.DominatedBlocks))
	for _, inst := range b.Instructions {
		p.printInstruction(inst)
	}
	p.indent--
}

func (p *Printer) printInstruction(inst ssa.Instruction) {
	p.writeIndent()
	p.write("%%%d = ", inst.ID())
	switch v := inst.(type) {
	case *ssa.Constant:
		p.write("const %s : %s", v.Value.String(), typeName(inst.Type()))
	case *ssa.AllocA:
		p.write("alloca %s", typeName(v.VariableType))
	case *ssa.Move:
		p.write("move %%%d", v.Source.ID())
	case *ssa.Load:
		p.write("load %%%d", v.Address.ID())
	case *ssa.Store:
		p.write("store %%%d, %%%d", v.Address.ID(), v.Value.ID())
	case *ssa.TypeCast:
		p.write("cast %%%d to %s", v.Arg.ID(), typeName(inst.Type()))
	case *ssa.Compare:
		p.write("cmp %%%d %s %%%d", v.LHS.ID(), v.Operator, v.RHS.ID())
	case *ssa.Add:
		p.write("add %%%d, %%%d", v.LHS.ID(), v.RHS.ID())
	case *ssa.Phi:
		p.write("phi ")
		for i, in := range v.Inputs {
			if i > 0 {
				p.write(", ")
			}
			p.write("[block%d: %%%d]", in.Block.ID, in.Value.ID())
		}
	case *ssa.UnconditionalJump:
		p.write("jump block%d", v.Dest.ID)
	case *ssa.ConditionalJump:
		p.write("branch %%%d ? block%d : block%d", v.Condition.ID(), v.TrueDest.ID, v.FalseDest.ID)
	default:
		p.write("<unknown instruction>")
	}
	p.output.WriteString("\n")
}

// dominatedBlockList renders a block's dominated-block IDs as a bracketed,
// comma-separated list (e.g. "[block2, block3]"), in the stable order
// cfg.Compute already produces.
func dominatedBlockList(blocks []*ssa.BasicBlock) string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = fmt.Sprintf("block%d", b.ID)
	}
	return "[" + strings.Join(ids, ", ") + "]"
}

func typeName(t *types.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}
