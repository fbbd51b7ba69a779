package ssa

import (
	"fmt"

	"kanso/internal/types"
	"kanso/internal/values"
)

// ControlTransfer is implemented by the two terminator variants
// (UnconditionalJump, ConditionalJump); every block's instruction list
// ends in exactly one of these (mirrors SSAControlTransfer).
type ControlTransfer interface {
	Instruction
	Destinations() []*BasicBlock
	// EvaluateDestinations narrows Destinations() using known constant
	// values, for dead-edge elimination; it returns every statically
	// possible destination (mirrors SSAControlTransfer::
	// evaluateControlForConstants).
	EvaluateDestinations(vals map[Instruction]values.Value) []*BasicBlock
}

// controlTransferBase gives both terminator variants the common
// void-typed, always-EvaluatesToUnknown base behavior.
type controlTransferBase struct {
	base
}

func (c *controlTransferBase) EvaluateConstant(map[Instruction]values.Value) values.Value {
	return values.UnknownValue{T: c.typ}
}

// UnconditionalJump always transfers to Dest (mirrors SSAUnconditionalJump).
type UnconditionalJump struct {
	controlTransferBase
	Dest *BasicBlock
}

func NewUnconditionalJump(ctx *types.Context, dest *BasicBlock) *UnconditionalJump {
	return &UnconditionalJump{controlTransferBase: controlTransferBase{base{id: ctx.FreshID(), typ: ctx.VoidType()}}, Dest: dest}
}

func (j *UnconditionalJump) Operands() []Instruction                     { return nil }
func (j *UnconditionalJump) ReplaceOperands(map[Instruction]Replacement) {}
func (j *UnconditionalJump) Destinations() []*BasicBlock                 { return []*BasicBlock{j.Dest} }
func (j *UnconditionalJump) EvaluateDestinations(map[Instruction]values.Value) []*BasicBlock {
	return []*BasicBlock{j.Dest}
}
func (j *UnconditionalJump) ReplaceBlockRef(searchFor, replaceWith *BasicBlock) {
	if j.Dest == searchFor {
		j.Dest = replaceWith
	}
}
func (j *UnconditionalJump) Verify(block *BasicBlock, fn *Function) error {
	if j.Dest == nil {
		return fmt.Errorf("ssa: UnconditionalJump %d: missing destination", j.id)
	}
	return nil
}

// ConditionalJump transfers to TrueDest if Condition is true, FalseDest
// otherwise (mirrors SSAConditionalJump).
type ConditionalJump struct {
	controlTransferBase
	Condition           Instruction
	TrueDest, FalseDest *BasicBlock
}

func NewConditionalJump(ctx *types.Context, condition Instruction, trueDest, falseDest *BasicBlock) *ConditionalJump {
	return &ConditionalJump{
		controlTransferBase: controlTransferBase{base{id: ctx.FreshID(), typ: ctx.VoidType()}},
		Condition:           condition,
		TrueDest:            trueDest,
		FalseDest:           falseDest,
	}
}

func (j *ConditionalJump) Operands() []Instruction { return []Instruction{j.Condition} }
func (j *ConditionalJump) ReplaceOperands(replacements map[Instruction]Replacement) {
	j.Condition = replaceRef(replacements, j.Condition)
}
func (j *ConditionalJump) Destinations() []*BasicBlock {
	return []*BasicBlock{j.TrueDest, j.FalseDest}
}

// EvaluateDestinations narrows to one branch when Condition is known to be
// a concrete Boolean; an explicitly Unknown condition narrows to *no*
// statically-possible destination (conservative: the real value might not
// even be boolean-shaped along this path), while a condition with no known
// value at all (not present, or present-but-not-boolean) leaves both
// branches possible (mirrors the original's dynamic_cast fall-through,
// which only special-cases ValueUnknown and ValueBoolean).
func (j *ConditionalJump) EvaluateDestinations(vals map[Instruction]values.Value) []*BasicBlock {
	conditionValue := vals[j.Condition]
	if values.IsUnknown(conditionValue) {
		return nil
	}
	if b, ok := conditionValue.(values.Bool); ok {
		if b.V {
			return []*BasicBlock{j.TrueDest}
		}
		return []*BasicBlock{j.FalseDest}
	}
	return []*BasicBlock{j.TrueDest, j.FalseDest}
}

func (j *ConditionalJump) ReplaceBlockRef(searchFor, replaceWith *BasicBlock) {
	if j.TrueDest == searchFor {
		j.TrueDest = replaceWith
	}
	if j.FalseDest == searchFor {
		j.FalseDest = replaceWith
	}
}

func (j *ConditionalJump) Verify(block *BasicBlock, fn *Function) error {
	if j.Condition == nil {
		return fmt.Errorf("ssa: ConditionalJump %d: missing condition", j.id)
	}
	if j.TrueDest == nil || j.FalseDest == nil {
		return fmt.Errorf("ssa: ConditionalJump %d: missing destination", j.id)
	}
	return nil
}
