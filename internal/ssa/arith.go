package ssa

import (
	"fmt"

	"kanso/internal/types"
	"kanso/internal/values"
)

// Add is binary addition over two already-combined operands (mirrors
// SSAAdd / SSAArithLogicBinary). The result type is the lhs operand's
// type, matching the original: by the time an Add node is built the
// parser has already cast both operands to the combined type via
// types.Context.ArithCombine.
type Add struct {
	base
	LHS, RHS Instruction
}

func NewAdd(ctx *types.Context, lhs, rhs Instruction) *Add {
	return &Add{base: base{id: ctx.FreshID(), typ: lhs.Type()}, LHS: lhs, RHS: rhs}
}

func (a *Add) Operands() []Instruction { return []Instruction{a.LHS, a.RHS} }
func (a *Add) ReplaceOperands(replacements map[Instruction]Replacement) {
	a.LHS = replaceRef(replacements, a.LHS)
	a.RHS = replaceRef(replacements, a.RHS)
}
func (a *Add) Verify(block *BasicBlock, fn *Function) error {
	if a.LHS == nil || a.RHS == nil {
		return fmt.Errorf("ssa: Add %d: missing operand", a.id)
	}
	return nil
}

// EvaluateConstant ports SSAAdd::evaluateForConstantsHelper: integer+integer
// adds directly, and integer+pointer (in either operand order) offsets the
// pointer's symbolic address by the integer.
func (a *Add) EvaluateConstant(vals map[Instruction]values.Value) values.Value {
	lhsValue := vals[a.LHS]
	rhsValue := vals[a.RHS]

	lhsInt, lhsIsInt := lhsValue.(values.Int)
	rhsInt, rhsIsInt := rhsValue.(values.Int)
	lhsPtr, lhsIsPtr := lhsValue.(values.VariablePointer)
	rhsPtr, rhsIsPtr := rhsValue.(values.VariablePointer)

	switch {
	case lhsIsInt && rhsIsInt:
		return values.Int{T: a.typ, Signed: lhsInt.Signed, Width: lhsInt.Width, Bits: maskTo(lhsInt.Bits+rhsInt.Bits, lhsInt.Width)}
	case lhsIsInt && rhsIsPtr:
		return offsetPointer(rhsPtr, lhsInt)
	case rhsIsInt && lhsIsPtr:
		return offsetPointer(lhsPtr, rhsInt)
	default:
		return nil
	}
}

func offsetPointer(ptr values.VariablePointer, by values.Int) values.VariablePointer {
	var delta int64
	if by.Signed {
		delta = by.SignedValue()
	} else {
		delta = int64(by.Bits)
	}
	return values.VariablePointer{T: ptr.T, VarID: ptr.VarID, Offset: ptr.Offset + delta, Pointee: ptr.Pointee}
}
