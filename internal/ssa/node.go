// Package ssa implements the SSA graph (§4.4 of the specification):
// instructions, basic blocks and functions, plus the graph-rewrite
// primitives (ReplaceNodes, ReplaceBlock, MergeBlocks, SplitEdge) and the
// per-node constant-folding rule (EvaluateConstant).
//
// Grounded on original_source/include/ssa/ssa_node.h's SSANode /
// SSABasicBlock / SSAFunction triad, reworked from C++ shared/weak pointers
// into plain Go pointers (the garbage collector handles the block/node
// reference cycles the original needed weak_ptr to avoid) and from a
// visitor-dispatched class hierarchy into a small tagged-interface set, per
// the teacher's internal/ir.Instruction convention.
package ssa

import (
	"fmt"

	"kanso/internal/types"
	"kanso/internal/values"
)

// Instruction is a single SSA graph node. Concrete variants live in
// const.go, alloc.go, move.go, cast.go, arith.go, compare.go, phi.go and
// control_transfer.go.
type Instruction interface {
	ID() int
	Type() *types.Type
	Operands() []Instruction
	ReplaceOperands(replacements map[Instruction]Replacement)
	HasSideEffects() bool
	// EvaluateConstant folds this instruction given the already-known
	// constant value of each operand. A nil result means "not known to be
	// constant"; this is distinct from values.UnknownValue, an
	// indeterminate marker that phi folding absorbs in favour of its other
	// inputs (see values.IsUnknown).
	EvaluateConstant(vals map[Instruction]values.Value) values.Value
	Verify(block *BasicBlock, fn *Function) error
}

// blockReferencer is implemented by instructions that hold a *BasicBlock
// reference needing updates when blocks are replaced (Phi inputs, jump
// destinations).
type blockReferencer interface {
	ReplaceBlockRef(searchFor, replaceWith *BasicBlock)
}

// blockRemover is implemented by instructions that drop entries when a
// block disappears entirely (Phi inputs from a removed predecessor).
type blockRemover interface {
	RemoveBlocks(removed map[*BasicBlock]bool)
}

// base carries the fields common to every Instruction variant.
type base struct {
	id  int
	typ *types.Type
}

func (n *base) ID() int           { return n.id }
func (n *base) Type() *types.Type { return n.typ }

// HasSideEffects default. AllocA and Store override it.
func (n *base) HasSideEffects() bool { return false }

// Replacement describes what ReplaceNodes should do with a node found in
// its replacement map: swap in New, and if IsPreexisting is true and New is
// not the node itself, remove the node's slot entirely rather than
// overwrite it in place (mirrors SSANode::ReplacementNode).
type Replacement struct {
	New           Instruction
	IsPreexisting bool
}

// replaceRef looks a node up in the replacement map, returning its
// replacement or the node itself if absent (mirrors SSANode::replaceNode).
func replaceRef(replacements map[Instruction]Replacement, node Instruction) Instruction {
	if node == nil {
		return nil
	}
	if r, ok := replacements[node]; ok {
		return r.New
	}
	return node
}

// BasicBlock is a sequence of instructions with phi nodes first and a
// single control-transfer terminator last (§4.4 invariant).
type BasicBlock struct {
	ID                 int
	SourceBlocks       []*BasicBlock
	ImmediateDominator *BasicBlock
	DominatedBlocks    []*BasicBlock
	DestBlocks         []*BasicBlock
	ControlTransfer    ControlTransfer
	Instructions       []Instruction
}

// ReplaceNodes applies replacements to this block's terminator and
// instruction list, dropping instructions whose replacement is a
// preexisting, distinct node (mirrors SSABasicBlock::replaceNodes).
func (b *BasicBlock) ReplaceNodes(replacements map[Instruction]Replacement) {
	if b.ControlTransfer != nil {
		if r, ok := replacements[Instruction(b.ControlTransfer)]; ok {
			ct, _ := r.New.(ControlTransfer)
			b.ControlTransfer = ct
		}
	}
	kept := b.Instructions[:0]
	for _, inst := range b.Instructions {
		r, ok := replacements[inst]
		if !ok {
			inst.ReplaceOperands(replacements)
			kept = append(kept, inst)
			continue
		}
		if r.IsPreexisting && r.New != inst {
			continue
		}
		r.New.ReplaceOperands(replacements)
		kept = append(kept, r.New)
	}
	b.Instructions = kept
}

// ReplaceBlockRefs updates every reference to searchFor held by this block
// (dominance links, adjacency lists, and any instruction holding a block
// reference) to point at replaceWith instead (mirrors
// SSABasicBlock::replaceBlock).
func (b *BasicBlock) ReplaceBlockRefs(searchFor, replaceWith *BasicBlock) {
	if b.ImmediateDominator == searchFor {
		b.ImmediateDominator = replaceWith
	}
	b.SourceBlocks = replaceBlockSlice(b.SourceBlocks, searchFor, replaceWith)
	b.DestBlocks = replaceBlockSlice(b.DestBlocks, searchFor, replaceWith)
	b.DominatedBlocks = replaceBlockSlice(b.DominatedBlocks, searchFor, replaceWith)
	for _, inst := range b.Instructions {
		if br, ok := inst.(blockReferencer); ok {
			br.ReplaceBlockRef(searchFor, replaceWith)
		}
	}
}

// replaceBlockSlice replaces searchFor with replaceWith in list; if
// replaceWith is already present, searchFor's slot is dropped instead of
// producing a duplicate (mirrors the set-like dedup in replaceBlock).
func replaceBlockSlice(list []*BasicBlock, searchFor, replaceWith *BasicBlock) []*BasicBlock {
	hasSearch, hasReplace := false, false
	for _, b := range list {
		if b == searchFor {
			hasSearch = true
		}
		if b == replaceWith {
			hasReplace = true
		}
	}
	if !hasSearch {
		return list
	}
	if hasReplace {
		out := list[:0]
		for _, b := range list {
			if b != searchFor {
				out = append(out, b)
			}
		}
		return out
	}
	out := make([]*BasicBlock, len(list))
	for i, b := range list {
		if b == searchFor {
			out[i] = replaceWith
		} else {
			out[i] = b
		}
	}
	return out
}

// Verify checks the block-local invariants: phi nodes precede all other
// instructions, the terminator is the block's last instruction and its
// destinations agree with DestBlocks (mirrors SSABasicBlock::verify).
func (b *BasicBlock) Verify(fn *Function) error {
	gotNonPhi := false
	for i, inst := range b.Instructions {
		if err := inst.Verify(b, fn); err != nil {
			return err
		}
		_, isPhi := inst.(*Phi)
		if isPhi {
			if gotNonPhi {
				return fmt.Errorf("ssa: block %d: phi instruction follows a non-phi instruction", b.ID)
			}
		} else {
			gotNonPhi = true
		}
		if _, isTerminator := inst.(ControlTransfer); isTerminator {
			if i != len(b.Instructions)-1 || Instruction(b.ControlTransfer) != inst {
				return fmt.Errorf("ssa: block %d: control-transfer instruction must be last", b.ID)
			}
		}
	}
	wantDest := 0
	if b.ControlTransfer != nil {
		wantDest = len(b.ControlTransfer.Destinations())
	}
	if len(b.DestBlocks) != wantDest {
		return fmt.Errorf("ssa: block %d: destBlocks count %d does not match terminator's %d", b.ID, len(b.DestBlocks), wantDest)
	}
	for _, d := range b.DestBlocks {
		found := false
		if b.ControlTransfer != nil {
			for _, d2 := range b.ControlTransfer.Destinations() {
				if d2 == d {
					found = true
					break
				}
			}
		}
		if !found {
			return fmt.Errorf("ssa: block %d: destBlock %d not found among terminator destinations", b.ID, d.ID)
		}
	}
	return nil
}

// Function owns a function's basic blocks (§4.4 "SSA Function").
type Function struct {
	Name        string
	Blocks      []*BasicBlock
	StartBlock  *BasicBlock
	Parameters  []Instruction
	ReturnValue Instruction
	ReturnType  *types.Type
}

// ReplaceNodes applies replacements across every block plus the function's
// own return-value and parameter references (mirrors
// SSAFunction::replaceNodes).
func (f *Function) ReplaceNodes(replacements map[Instruction]Replacement) {
	if f.ReturnValue != nil {
		if r, ok := replacements[f.ReturnValue]; ok {
			f.ReturnValue = r.New
		}
	}
	for _, b := range f.Blocks {
		b.ReplaceNodes(replacements)
	}
	for i, p := range f.Parameters {
		if r, ok := replacements[p]; ok {
			f.Parameters[i] = r.New
		}
	}
}

// ReplaceBlock replaces every reference to searchFor throughout the whole
// function - including f.StartBlock and f.Blocks themselves - with
// replaceWith (mirrors SSAFunction::replaceBlock). This is the
// function-wide variant; use it whenever a block might be referenced from
// outside its own local neighborhood (e.g. a phi anywhere in the
// function), as opposed to BasicBlock.ReplaceBlockRefs which only updates
// one block's own fields. A nil replaceWith instead removes searchFor from
// the function outright (see removeBlock).
func (f *Function) ReplaceBlock(searchFor, replaceWith *BasicBlock) {
	if replaceWith == nil {
		f.removeBlock(searchFor)
		return
	}
	if f.StartBlock == searchFor {
		f.StartBlock = replaceWith
	}
	f.Blocks = replaceBlockSlice(f.Blocks, searchFor, replaceWith)
	for _, b := range f.Blocks {
		b.ReplaceBlockRefs(searchFor, replaceWith)
	}
}

// removeBlock drops dead from the function entirely: it is dropped from
// f.Blocks and from every remaining block's Source/Dest/DominatedBlocks,
// and any blockRemover instruction (a Phi) with an input from dead has
// that input pruned via RemoveBlocks instead of rewritten to a dangling
// block (mirrors SSANode::removeBlocks, declared by the original for this
// purpose but never itself wired to a caller there).
func (f *Function) removeBlock(dead *BasicBlock) {
	removed := map[*BasicBlock]bool{dead: true}

	out := f.Blocks[:0]
	for _, b := range f.Blocks {
		if b != dead {
			out = append(out, b)
		}
	}
	f.Blocks = out

	for _, b := range f.Blocks {
		b.SourceBlocks = removeBlockFromSlice(b.SourceBlocks, dead)
		b.DestBlocks = removeBlockFromSlice(b.DestBlocks, dead)
		b.DominatedBlocks = removeBlockFromSlice(b.DominatedBlocks, dead)
		if b.ImmediateDominator == dead {
			b.ImmediateDominator = nil
		}
		for _, inst := range b.Instructions {
			if br, ok := inst.(blockRemover); ok {
				br.RemoveBlocks(removed)
			}
		}
	}
}

// removeBlockFromSlice filters dead out of list in place.
func removeBlockFromSlice(list []*BasicBlock, dead *BasicBlock) []*BasicBlock {
	out := list[:0]
	for _, b := range list {
		if b != dead {
			out = append(out, b)
		}
	}
	return out
}

// MergeBlocks folds second into first along the single edge between them:
// second's leading phis (each must have exactly one input, from first) are
// resolved away, second's remaining instructions are appended to first,
// and every function-wide reference to second is redirected to first
// (mirrors SSAFunction::mergeBlocks). Callers must ensure first has
// exactly one destination and second exactly one source, both each other.
func (f *Function) MergeBlocks(first, second *BasicBlock) {
	for len(second.Instructions) > 0 {
		phi, ok := second.Instructions[0].(*Phi)
		if !ok {
			break
		}
		if len(phi.Inputs) != 1 || phi.Inputs[0].Block != first {
			panic("ssa: MergeBlocks: malformed single-input phi at head of second block")
		}
		replacement := phi.Inputs[0].Value
		f.ReplaceNodes(map[Instruction]Replacement{phi: {New: replacement, IsPreexisting: true}})
	}
	first.Instructions = first.Instructions[:len(first.Instructions)-1]
	first.Instructions = append(first.Instructions, second.Instructions...)
	first.ControlTransfer = second.ControlTransfer
	f.ReplaceBlock(second, first)
	first.DestBlocks = second.DestBlocks
}

// SplitEdge inserts a fresh empty block on the edge first->second,
// preserving dominance information when second was immediately dominated
// by first (mirrors SSAFunction::splitEdge).
func (f *Function) SplitEdge(ctx *types.Context, first, second *BasicBlock) *BasicBlock {
	mid := &BasicBlock{ID: ctx.FreshID()}
	jump := NewUnconditionalJump(ctx, second)
	mid.Instructions = []Instruction{jump}
	mid.ControlTransfer = jump
	mid.ImmediateDominator = first
	mid.SourceBlocks = []*BasicBlock{first}
	mid.DestBlocks = []*BasicBlock{second}

	if second.ImmediateDominator == first {
		second.ImmediateDominator = mid
		for _, b := range f.Blocks {
			for i := b.ImmediateDominator; i != nil; i = i.ImmediateDominator {
				if i == mid {
					mid.DominatedBlocks = append(mid.DominatedBlocks, b)
					break
				}
			}
		}
	}

	first.ReplaceBlockRefs(second, mid)
	if first != second {
		second.ReplaceBlockRefs(first, mid)
	}
	first.DominatedBlocks = append(first.DominatedBlocks, mid)
	mid.DominatedBlocks = append(mid.DominatedBlocks, mid) // mirrors the original literally: a split block dominates itself in its own list
	f.Blocks = append(f.Blocks, mid)
	return mid
}

// Verify checks every block's local invariants (mirrors
// SSAFunction::verify).
func (f *Function) Verify() error {
	for _, b := range f.Blocks {
		if err := b.Verify(f); err != nil {
			return err
		}
	}
	return nil
}
