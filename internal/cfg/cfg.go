// Package cfg computes the control-flow-graph facts that ssa.Function
// leaves for a separate pass: predecessor lists and the immediate
// dominator tree, by iterative fixed point over reverse postorder (the
// standard Cooper/Harvey/Kennedy algorithm). No single corpus file computes
// this; it is new code shaped like the rest of the ssa package it serves.
package cfg

import "kanso/internal/ssa"

// Compute populates every block's SourceBlocks, DestBlocks,
// ImmediateDominator and DominatedBlocks fields from fn's terminators.
// Existing values are discarded and rebuilt from scratch, so Compute may be
// called again after any block/edge-changing rewrite.
func Compute(fn *ssa.Function) {
	resetEdges(fn)
	linkEdges(fn)

	order := reversePostorder(fn)
	idom := computeDominators(fn, order)
	assignDominators(fn, idom)
}

func resetEdges(fn *ssa.Function) {
	for _, b := range fn.Blocks {
		b.SourceBlocks = nil
		b.DestBlocks = nil
		b.ImmediateDominator = nil
		b.DominatedBlocks = nil
	}
}

func linkEdges(fn *ssa.Function) {
	for _, b := range fn.Blocks {
		if b.ControlTransfer == nil {
			continue
		}
		for _, dest := range b.ControlTransfer.Destinations() {
			if dest == nil {
				continue
			}
			b.DestBlocks = append(b.DestBlocks, dest)
			dest.SourceBlocks = append(dest.SourceBlocks, b)
		}
	}
}

func reversePostorder(fn *ssa.Function) []*ssa.BasicBlock {
	if fn.StartBlock == nil {
		return nil
	}
	visited := make(map[*ssa.BasicBlock]bool)
	var post []*ssa.BasicBlock
	var visit func(b *ssa.BasicBlock)
	visit = func(b *ssa.BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, d := range b.DestBlocks {
			visit(d)
		}
		post = append(post, b)
	}
	visit(fn.StartBlock)
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// computeDominators runs the standard iterative dataflow fixed point over
// order (which must be a reverse postorder starting with the entry block):
// repeatedly intersect each block's processed predecessors' idoms until no
// block's idom changes. Unreachable blocks (absent from order) are left out
// of the result entirely.
func computeDominators(fn *ssa.Function, order []*ssa.BasicBlock) map[*ssa.BasicBlock]*ssa.BasicBlock {
	if len(order) == 0 {
		return nil
	}
	rpoIndex := make(map[*ssa.BasicBlock]int, len(order))
	for i, b := range order {
		rpoIndex[b] = i
	}

	idom := make(map[*ssa.BasicBlock]*ssa.BasicBlock, len(order))
	entry := order[0]
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for _, b := range order[1:] {
			var newIdom *ssa.BasicBlock
			for _, pred := range b.SourceBlocks {
				if idom[pred] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = pred
					continue
				}
				newIdom = intersect(newIdom, pred, idom, rpoIndex)
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	delete(idom, entry) // entry has no immediate dominator
	return idom
}

func intersect(a, b *ssa.BasicBlock, idom map[*ssa.BasicBlock]*ssa.BasicBlock, rpoIndex map[*ssa.BasicBlock]int) *ssa.BasicBlock {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}
		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// assignDominators writes each block's immediate dominator and appends it
// to that dominator's DominatedBlocks, in fn.Blocks order rather than the
// idom map's iteration order, so the dump's dominated-block list is stable
// across runs over identical input.
func assignDominators(fn *ssa.Function, idom map[*ssa.BasicBlock]*ssa.BasicBlock) {
	for _, b := range fn.Blocks {
		d, ok := idom[b]
		if !ok {
			continue
		}
		b.ImmediateDominator = d
		d.DominatedBlocks = append(d.DominatedBlocks, b)
	}
}
