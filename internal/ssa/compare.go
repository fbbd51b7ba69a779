package ssa

import (
	"fmt"

	"kanso/internal/types"
	"kanso/internal/values"
)

// CompareOperator names the six relational operators (mirrors
// SSACompare::CompareOperator).
type CompareOperator int

const (
	CompareEqual CompareOperator = iota
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual
)

func (op CompareOperator) String() string {
	switch op {
	case CompareEqual:
		return "=="
	case CompareNotEqual:
		return "!="
	case CompareLess:
		return "<"
	case CompareLessEqual:
		return "<="
	case CompareGreater:
		return ">"
	case CompareGreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Compare evaluates a relational operator over two already-combined
// operands, producing a Boolean (mirrors SSACompare).
type Compare struct {
	base
	LHS, RHS Instruction
	Operator CompareOperator
}

func NewCompare(ctx *types.Context, lhs Instruction, op CompareOperator, rhs Instruction) *Compare {
	return &Compare{base: base{id: ctx.FreshID(), typ: ctx.BoolType()}, LHS: lhs, Operator: op, RHS: rhs}
}

func (c *Compare) Operands() []Instruction { return []Instruction{c.LHS, c.RHS} }
func (c *Compare) ReplaceOperands(replacements map[Instruction]Replacement) {
	c.LHS = replaceRef(replacements, c.LHS)
	c.RHS = replaceRef(replacements, c.RHS)
}
func (c *Compare) Verify(block *BasicBlock, fn *Function) error {
	if c.LHS == nil || c.RHS == nil {
		return fmt.Errorf("ssa: Compare %d: missing operand", c.id)
	}
	return nil
}

func (c *Compare) EvaluateConstant(vals map[Instruction]values.Value) values.Value {
	lhsValue, ok := vals[c.LHS]
	if !ok || lhsValue == nil {
		return nil
	}
	rhsValue, ok := vals[c.RHS]
	if !ok || rhsValue == nil {
		return nil
	}
	result, ok := values.Compare(lhsValue, rhsValue)
	if !ok || result == values.Unknown {
		return nil
	}
	v := 0
	switch result {
	case values.Less:
		v = -1
	case values.Greater:
		v = 1
	}
	var b bool
	switch c.Operator {
	case CompareEqual:
		b = v == 0
	case CompareGreater:
		b = v > 0
	case CompareGreaterEqual:
		b = v >= 0
	case CompareLess:
		b = v < 0
	case CompareLessEqual:
		b = v <= 0
	default: // CompareNotEqual
		b = v != 0
	}
	return values.Bool{T: c.typ, V: b}
}
