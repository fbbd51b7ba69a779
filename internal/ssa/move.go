package ssa

import (
	"fmt"

	"kanso/internal/types"
	"kanso/internal/values"
)

// Move is a plain copy of another node's value, used where the builder
// needs a fresh SSA name without changing representation (mirrors
// SSAMove).
type Move struct {
	base
	Source Instruction
}

func NewMove(ctx *types.Context, source Instruction) *Move {
	return &Move{base: base{id: ctx.FreshID(), typ: source.Type()}, Source: source}
}

func (m *Move) Operands() []Instruction { return []Instruction{m.Source} }
func (m *Move) ReplaceOperands(replacements map[Instruction]Replacement) {
	m.Source = replaceRef(replacements, m.Source)
}
func (m *Move) EvaluateConstant(vals map[Instruction]values.Value) values.Value {
	return vals[m.Source]
}
func (m *Move) Verify(block *BasicBlock, fn *Function) error {
	if m.Source == nil {
		return fmt.Errorf("ssa: Move %d: missing source", m.id)
	}
	return nil
}

// Load reads the value stored at an address (mirrors SSALoad). Never
// folds to a constant: the pointed-to storage is mutable state the SSA
// graph does not track values for.
type Load struct {
	base
	Address Instruction
}

func NewLoad(ctx *types.Context, address Instruction) *Load {
	return &Load{base: base{id: ctx.FreshID(), typ: address.Type().Dereference()}, Address: address}
}

func (l *Load) Operands() []Instruction { return []Instruction{l.Address} }
func (l *Load) ReplaceOperands(replacements map[Instruction]Replacement) {
	l.Address = replaceRef(replacements, l.Address)
}
func (l *Load) EvaluateConstant(map[Instruction]values.Value) values.Value { return nil }
func (l *Load) Verify(block *BasicBlock, fn *Function) error {
	if l.Address == nil {
		return fmt.Errorf("ssa: Load %d: missing address", l.id)
	}
	if !l.Address.Type().IsPointer() {
		return fmt.Errorf("ssa: Load %d: address operand is not a pointer", l.id)
	}
	return nil
}

// Store writes a value to an address; it produces no SSA value (mirrors
// SSAStore).
type Store struct {
	base
	Address Instruction
	Value   Instruction
}

func NewStore(ctx *types.Context, address, value Instruction) *Store {
	return &Store{base: base{id: ctx.FreshID(), typ: ctx.VoidType()}, Address: address, Value: value}
}

func (s *Store) Operands() []Instruction { return []Instruction{s.Address, s.Value} }
func (s *Store) ReplaceOperands(replacements map[Instruction]Replacement) {
	s.Address = replaceRef(replacements, s.Address)
	s.Value = replaceRef(replacements, s.Value)
}
func (s *Store) HasSideEffects() bool { return true }
func (s *Store) EvaluateConstant(map[Instruction]values.Value) values.Value { return nil }
func (s *Store) Verify(block *BasicBlock, fn *Function) error {
	if s.Address == nil || s.Value == nil {
		return fmt.Errorf("ssa: Store %d: missing address or value operand", s.id)
	}
	return nil
}
