package ssa

import (
	"kanso/internal/types"
	"kanso/internal/values"
)

// Constant wraps a compile-time value directly (mirrors SSAConstant).
type Constant struct {
	base
	Value values.Value
}

// NewConstant builds a Constant node carrying value.
func NewConstant(ctx *types.Context, value values.Value) *Constant {
	return &Constant{base: base{id: ctx.FreshID(), typ: value.Type()}, Value: value}
}

func (c *Constant) Operands() []Instruction                     { return nil }
func (c *Constant) ReplaceOperands(map[Instruction]Replacement) {}
func (c *Constant) EvaluateConstant(map[Instruction]values.Value) values.Value {
	return c.Value
}
func (c *Constant) Verify(block *BasicBlock, fn *Function) error { return nil }
