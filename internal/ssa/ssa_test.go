package ssa

import (
	"testing"

	"kanso/internal/types"
	"kanso/internal/values"
)

func TestConstantFoldsToItsValue(t *testing.T) {
	ctx := types.NewContext()
	v := values.NewInt(ctx, true, types.Width32, 5)
	c := NewConstant(ctx, v)
	got := c.EvaluateConstant(nil)
	if !got.Equal(v) {
		t.Fatalf("expected constant to fold to %v, got %v", v, got)
	}
}

func TestAllocAFoldsToVariablePointer(t *testing.T) {
	ctx := types.NewContext()
	a := NewAllocA(ctx, ctx.IntType(true, types.Width32))
	got := a.EvaluateConstant(nil)
	vp, ok := got.(values.VariablePointer)
	if !ok {
		t.Fatalf("expected VariablePointer, got %T", got)
	}
	if vp.VarID != a.ID() {
		t.Fatalf("expected VarID %d, got %d", a.ID(), vp.VarID)
	}
}

func TestAddFoldsIntegers(t *testing.T) {
	ctx := types.NewContext()
	lhs := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 3))
	rhs := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 4))
	add := NewAdd(ctx, lhs, rhs)

	vals := map[Instruction]values.Value{
		lhs: lhs.Value,
		rhs: rhs.Value,
	}
	got := add.EvaluateConstant(vals)
	i, ok := got.(values.Int)
	if !ok || i.Bits != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestAddOffsetsPointer(t *testing.T) {
	ctx := types.NewContext()
	base := NewAllocA(ctx, ctx.IntType(true, types.Width32))
	offset := NewConstant(ctx, values.NewInt(ctx, true, types.Width64, 4))
	add := NewAdd(ctx, base, offset)

	vals := map[Instruction]values.Value{
		base:   base.EvaluateConstant(nil),
		offset: offset.Value,
	}
	got := add.EvaluateConstant(vals)
	vp, ok := got.(values.VariablePointer)
	if !ok || vp.Offset != 4 {
		t.Fatalf("expected offset 4, got %v", got)
	}
}

func TestPhiFoldsAgreeingConstants(t *testing.T) {
	ctx := types.NewContext()
	a := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 9))
	b := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 9))
	blockA := &BasicBlock{ID: ctx.FreshID()}
	blockB := &BasicBlock{ID: ctx.FreshID()}
	phi := NewPhi(ctx, []PhiInput{{Value: a, Block: blockA}, {Value: b, Block: blockB}})

	vals := map[Instruction]values.Value{a: a.Value, b: b.Value}
	got := phi.EvaluateConstant(vals)
	if got == nil || !got.Equal(a.Value) {
		t.Fatalf("expected agreeing phi inputs to fold, got %v", got)
	}
}

func TestPhiDisagreeingConstantsFoldToNoValue(t *testing.T) {
	ctx := types.NewContext()
	a := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 9))
	b := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 10))
	blockA := &BasicBlock{ID: ctx.FreshID()}
	blockB := &BasicBlock{ID: ctx.FreshID()}
	phi := NewPhi(ctx, []PhiInput{{Value: a, Block: blockA}, {Value: b, Block: blockB}})

	vals := map[Instruction]values.Value{a: a.Value, b: b.Value}
	got := phi.EvaluateConstant(vals)
	if got != nil {
		t.Fatalf("expected nil for disagreeing phi inputs, got %v", got)
	}
}

func TestPhiUnknownInputIsAbsorbed(t *testing.T) {
	ctx := types.NewContext()
	a := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 9))
	unknownSrc := &Load{base: base{id: ctx.FreshID(), typ: ctx.IntType(true, types.Width32)}}
	blockA := &BasicBlock{ID: ctx.FreshID()}
	blockB := &BasicBlock{ID: ctx.FreshID()}
	phi := NewPhi(ctx, []PhiInput{{Value: unknownSrc, Block: blockA}, {Value: a, Block: blockB}})

	vals := map[Instruction]values.Value{unknownSrc: values.UnknownValue{T: ctx.IntType(true, types.Width32)}, a: a.Value}
	got := phi.EvaluateConstant(vals)
	if got == nil || !got.Equal(a.Value) {
		t.Fatalf("expected unknown input to be absorbed in favor of %v, got %v", a.Value, got)
	}
}

func TestConditionalJumpEvaluateDestinationsNarrows(t *testing.T) {
	ctx := types.NewContext()
	cond := NewConstant(ctx, values.Bool{T: ctx.BoolType(), V: true})
	trueBlock := &BasicBlock{ID: ctx.FreshID()}
	falseBlock := &BasicBlock{ID: ctx.FreshID()}
	jump := NewConditionalJump(ctx, cond, trueBlock, falseBlock)

	dests := jump.EvaluateDestinations(map[Instruction]values.Value{cond: cond.Value})
	if len(dests) != 1 || dests[0] != trueBlock {
		t.Fatalf("expected narrowing to trueBlock, got %v", dests)
	}
}

func TestConditionalJumpUnknownConditionNarrowsToNone(t *testing.T) {
	ctx := types.NewContext()
	cond := &Load{base: base{id: ctx.FreshID(), typ: ctx.BoolType()}}
	trueBlock := &BasicBlock{ID: ctx.FreshID()}
	falseBlock := &BasicBlock{ID: ctx.FreshID()}
	jump := NewConditionalJump(ctx, cond, trueBlock, falseBlock)

	dests := jump.EvaluateDestinations(map[Instruction]values.Value{cond: values.UnknownValue{T: ctx.BoolType()}})
	if len(dests) != 0 {
		t.Fatalf("expected no destinations for unknown condition, got %v", dests)
	}
}

func TestConditionalJumpNoKnownValueKeepsBothDestinations(t *testing.T) {
	ctx := types.NewContext()
	cond := &Load{base: base{id: ctx.FreshID(), typ: ctx.BoolType()}}
	trueBlock := &BasicBlock{ID: ctx.FreshID()}
	falseBlock := &BasicBlock{ID: ctx.FreshID()}
	jump := NewConditionalJump(ctx, cond, trueBlock, falseBlock)

	dests := jump.EvaluateDestinations(map[Instruction]values.Value{})
	if len(dests) != 2 {
		t.Fatalf("expected both destinations when nothing is known, got %v", dests)
	}
}

// buildDiamond builds entry -if-> (left, right) -> join -> exit, with join
// containing a single phi, for exercising MergeBlocks/SplitEdge.
func buildDiamond(ctx *types.Context) (fn *Function, entry, left, right, join *BasicBlock, phi *Phi) {
	entry = &BasicBlock{ID: ctx.FreshID()}
	left = &BasicBlock{ID: ctx.FreshID()}
	right = &BasicBlock{ID: ctx.FreshID()}
	join = &BasicBlock{ID: ctx.FreshID()}
	exit := &BasicBlock{ID: ctx.FreshID()}

	leftConst := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 1))
	rightConst := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 2))
	left.Instructions = []Instruction{leftConst}
	right.Instructions = []Instruction{rightConst}

	leftJump := NewUnconditionalJump(ctx, join)
	rightJump := NewUnconditionalJump(ctx, join)
	left.Instructions = append(left.Instructions, leftJump)
	left.ControlTransfer = leftJump
	right.Instructions = append(right.Instructions, rightJump)
	right.ControlTransfer = rightJump
	left.DestBlocks = []*BasicBlock{join}
	right.DestBlocks = []*BasicBlock{join}

	cond := NewConstant(ctx, values.Bool{T: ctx.BoolType(), V: true})
	entry.Instructions = []Instruction{cond}
	entryJump := NewConditionalJump(ctx, cond, left, right)
	entry.Instructions = append(entry.Instructions, entryJump)
	entry.ControlTransfer = entryJump
	entry.DestBlocks = []*BasicBlock{left, right}

	phi = NewPhi(ctx, []PhiInput{{Value: leftConst, Block: left}, {Value: rightConst, Block: right}})
	joinJump := NewUnconditionalJump(ctx, exit)
	join.Instructions = []Instruction{phi, joinJump}
	join.ControlTransfer = joinJump
	join.DestBlocks = []*BasicBlock{exit}
	join.SourceBlocks = []*BasicBlock{left, right}
	left.SourceBlocks = []*BasicBlock{entry}
	right.SourceBlocks = []*BasicBlock{entry}
	exit.SourceBlocks = []*BasicBlock{join}

	fn = &Function{Blocks: []*BasicBlock{entry, left, right, join, exit}, StartBlock: entry}
	return
}

func TestMergeBlocksResolvesSingleInputPhi(t *testing.T) {
	ctx := types.NewContext()
	left := &BasicBlock{ID: ctx.FreshID()}
	join := &BasicBlock{ID: ctx.FreshID()}

	leftConst := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 42))
	leftJump := NewUnconditionalJump(ctx, join)
	left.Instructions = []Instruction{leftConst, leftJump}
	left.ControlTransfer = leftJump
	left.DestBlocks = []*BasicBlock{join}

	phi := NewPhi(ctx, []PhiInput{{Value: leftConst, Block: left}})
	joinJump := NewUnconditionalJump(ctx, nil)
	join.Instructions = []Instruction{phi, joinJump}
	join.ControlTransfer = joinJump
	join.SourceBlocks = []*BasicBlock{left}

	use := NewMove(ctx, phi)
	useBlock := &BasicBlock{ID: ctx.FreshID(), Instructions: []Instruction{use}}

	fn := &Function{Blocks: []*BasicBlock{left, join, useBlock}, StartBlock: left}
	fn.MergeBlocks(left, join)

	if use.Source != leftConst {
		t.Fatalf("expected phi use to be replaced by the constant, got %v", use.Source)
	}
	if left.ControlTransfer != joinJump {
		t.Fatal("merged block should inherit join's terminator")
	}
	foundJoin := false
	for _, b := range fn.Blocks {
		if b == join {
			foundJoin = true
		}
	}
	if foundJoin {
		t.Fatal("join block should have been dropped from the function after merge")
	}
}

func TestSplitEdgeInsertsBlock(t *testing.T) {
	ctx := types.NewContext()
	fn, entry, left, _, _, _ := buildDiamond(ctx)

	before := len(fn.Blocks)
	mid := fn.SplitEdge(ctx, entry, left)
	if len(fn.Blocks) != before+1 {
		t.Fatalf("expected one new block, got %d -> %d", before, len(fn.Blocks))
	}

	cj := entry.ControlTransfer.(*ConditionalJump)
	if cj.TrueDest != mid {
		t.Fatalf("entry's jump to left should now target the split block")
	}
	if mid.ControlTransfer.(*UnconditionalJump).Dest != left {
		t.Fatal("split block should jump on to the original destination")
	}
}

func TestSplitEdgeThenMergeBlocksRoundTrips(t *testing.T) {
	ctx := types.NewContext()
	fn, entry, left, _, join, _ := buildDiamond(ctx)

	before := len(fn.Blocks)
	mid := fn.SplitEdge(ctx, entry, left)
	if len(fn.Blocks) != before+1 {
		t.Fatalf("expected split to add one block, got %d -> %d", before, len(fn.Blocks))
	}
	if mid.ImmediateDominator != entry {
		t.Fatalf("expected split block's idom to be entry, got %v", mid.ImmediateDominator)
	}
	if entry.ControlTransfer.(*ConditionalJump).TrueDest != mid {
		t.Fatal("entry's branch to left should now target the split block")
	}

	// left's only remaining reference in the graph is via mid (entry's edge
	// was redirected by SplitEdge), so folding left back into mid undoes the
	// split: mid absorbs left's body and jump to join, and left disappears.
	fn.MergeBlocks(mid, left)
	if entry.ControlTransfer.(*ConditionalJump).TrueDest != mid {
		t.Fatal("entry should still branch into the merged block")
	}
	if mid.ControlTransfer.(*UnconditionalJump).Dest != join {
		t.Fatal("merged block should inherit left's jump to join")
	}
	for _, b := range fn.Blocks {
		if b == left {
			t.Fatal("left should be gone from the function after merging into the split block")
		}
	}
}

func TestFunctionVerifyPassesOnWellFormedGraph(t *testing.T) {
	ctx := types.NewContext()
	fn, _, _, _, _, _ := buildDiamond(ctx)
	if err := fn.Verify(); err != nil {
		t.Fatalf("expected well-formed diamond to verify, got %v", err)
	}
}

func TestBasicBlockVerifyRejectsPhiAfterNonPhi(t *testing.T) {
	ctx := types.NewContext()
	c := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 1))
	phi := NewPhi(ctx, []PhiInput{{Value: c, Block: &BasicBlock{ID: ctx.FreshID()}}})
	b := &BasicBlock{ID: ctx.FreshID(), Instructions: []Instruction{c, phi}}
	fn := &Function{Blocks: []*BasicBlock{b}}
	if err := b.Verify(fn); err == nil {
		t.Fatal("expected verify to reject a phi after a non-phi instruction")
	}
}

func TestReplaceBlockWithNilRemovesDeadPredecessorFromPhi(t *testing.T) {
	ctx := types.NewContext()
	fn, _, left, right, join, phi := buildDiamond(ctx)

	fn.ReplaceBlock(right, nil)

	for _, b := range fn.Blocks {
		if b == right {
			t.Fatal("expected right to be dropped from fn.Blocks")
		}
	}
	if len(phi.Inputs) != 1 || phi.Inputs[0].Block != left {
		t.Fatalf("expected join's phi to keep only left's input, got %+v", phi.Inputs)
	}
	if len(join.SourceBlocks) != 1 || join.SourceBlocks[0] != left {
		t.Fatalf("expected join's SourceBlocks to drop right, got %v", join.SourceBlocks)
	}
}

func TestReachableOperandsFollowsOperandChain(t *testing.T) {
	ctx := types.NewContext()
	lhs := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 1))
	rhs := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 2))
	add := NewAdd(ctx, lhs, rhs)
	unused := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 99))

	live := ReachableOperands([]Instruction{add})
	if !live[add] || !live[lhs] || !live[rhs] {
		t.Fatalf("expected add and both its operands to be reachable, got %v", live)
	}
	if live[unused] {
		t.Fatal("expected an instruction outside the root set to stay unreachable")
	}
}

func TestDeadInstructionsFindsUnusedPureConstant(t *testing.T) {
	ctx := types.NewContext()
	alloc := NewAllocA(ctx, ctx.IntType(true, types.Width32))
	used := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 1))
	store := NewStore(ctx, alloc, used)
	dead := NewConstant(ctx, values.NewInt(ctx, true, types.Width32, 2))
	jump := NewUnconditionalJump(ctx, nil)

	b := &BasicBlock{
		ID:              ctx.FreshID(),
		Instructions:    []Instruction{alloc, used, store, dead, jump},
		ControlTransfer: jump,
	}

	got := b.DeadInstructions()
	if len(got) != 1 || got[0] != dead {
		t.Fatalf("expected only the unused constant to be dead, got %v", got)
	}
}
