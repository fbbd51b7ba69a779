package ssa

import (
	"fmt"

	"kanso/internal/types"
	"kanso/internal/values"
)

// AllocA reserves storage for one local variable and produces a constant
// pointer to it (mirrors SSAAllocA). VarID is the symbolic variable
// identity used by values.VariablePointer equality and by Compare; it is
// fixed at construction (here, the node's own ID, since each AllocA is its
// own variable).
type AllocA struct {
	base
	VariableType *types.Type
}

// NewAllocA builds an AllocA reserving storage for a value of
// variableType. Its own type is a constant pointer to variableType.
func NewAllocA(ctx *types.Context, variableType *types.Type) *AllocA {
	id := ctx.FreshID()
	return &AllocA{
		base:         base{id: id, typ: ctx.ToConstant(ctx.PointerType(variableType))},
		VariableType: variableType,
	}
}

func (a *AllocA) Operands() []Instruction                     { return nil }
func (a *AllocA) ReplaceOperands(map[Instruction]Replacement) {}
func (a *AllocA) HasSideEffects() bool                        { return true }

// EvaluateConstant always folds to the variable's symbolic address: an
// AllocA's location is known at compile time even though its contents are
// not (mirrors SSAAllocA::evaluateForConstants, which is unconditional).
func (a *AllocA) EvaluateConstant(map[Instruction]values.Value) values.Value {
	return values.VariablePointer{T: a.typ, VarID: a.id, Offset: 0, Pointee: a.VariableType}
}

func (a *AllocA) Verify(block *BasicBlock, fn *Function) error {
	if a.VariableType == nil {
		return fmt.Errorf("ssa: AllocA %d: missing variable type", a.id)
	}
	return nil
}
