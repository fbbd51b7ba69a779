package dump

import (
	"fmt"
	"strings"
	"testing"

	"kanso/internal/ssa"
	"kanso/internal/types"
	"kanso/internal/values"
)

func TestDumpRendersBlocksAndInstructions(t *testing.T) {
	ctx := types.NewContext()
	entry := &ssa.BasicBlock{ID: ctx.FreshID()}
	c := ssa.NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 42))
	jump := ssa.NewUnconditionalJump(ctx, entry)
	entry.Instructions = []ssa.Instruction{c, jump}
	entry.ControlTransfer = jump

	fn := &ssa.Function{Name: "main", StartBlock: entry, Blocks: []*ssa.BasicBlock{entry}, ReturnType: ctx.VoidType()}
	out := DumpString(fn)

	if !strings.Contains(out, "function main() -> void {") {
		t.Fatalf("expected function header, got:\n%s", out)
	}
	if !strings.Contains(out, "block%d: (entry)") && !strings.Contains(out, "(entry)") {
		t.Fatalf("expected entry marker, got:\n%s", out)
	}
	if !strings.Contains(out, "const 42") {
		t.Fatalf("expected constant to render its value, got:\n%s", out)
	}
	if !strings.Contains(out, "jump block") {
		t.Fatalf("expected jump instruction to render, got:\n%s", out)
	}
}

func TestDumpShowsImmediateDominator(t *testing.T) {
	ctx := types.NewContext()
	entry := &ssa.BasicBlock{ID: ctx.FreshID()}
	child := &ssa.BasicBlock{ID: ctx.FreshID(), ImmediateDominator: entry}

	jumpToChild := ssa.NewUnconditionalJump(ctx, child)
	entry.Instructions = []ssa.Instruction{jumpToChild}
	entry.ControlTransfer = jumpToChild

	ret := ssa.NewUnconditionalJump(ctx, entry)
	child.Instructions = []ssa.Instruction{ret}
	child.ControlTransfer = ret

	fn := &ssa.Function{Name: "f", StartBlock: entry, Blocks: []*ssa.BasicBlock{entry, child}, ReturnType: ctx.VoidType()}
	out := DumpString(fn)

	if !strings.Contains(out, "idom = block") {
		t.Fatalf("expected idom annotation for child block, got:\n%s", out)
	}
}

func TestDumpShowsDominatedBlocks(t *testing.T) {
	ctx := types.NewContext()
	entry := &ssa.BasicBlock{ID: ctx.FreshID()}
	child := &ssa.BasicBlock{ID: ctx.FreshID(), ImmediateDominator: entry}
	entry.DominatedBlocks = []*ssa.BasicBlock{child}

	jumpToChild := ssa.NewUnconditionalJump(ctx, child)
	entry.Instructions = []ssa.Instruction{jumpToChild}
	entry.ControlTransfer = jumpToChild

	ret := ssa.NewUnconditionalJump(ctx, entry)
	child.Instructions = []ssa.Instruction{ret}
	child.ControlTransfer = ret

	fn := &ssa.Function{Name: "f", StartBlock: entry, Blocks: []*ssa.BasicBlock{entry, child}, ReturnType: ctx.VoidType()}
	out := DumpString(fn)

	if !strings.Contains(out, fmt.Sprintf("dominatedBlocks = [block%d]", child.ID)) {
		t.Fatalf("expected entry's dominated-block list to name child, got:\n%s", out)
	}
	if !strings.Contains(out, "dominatedBlocks = []") {
		t.Fatalf("expected child's dominated-block list to render empty, got:\n%s", out)
	}
}
