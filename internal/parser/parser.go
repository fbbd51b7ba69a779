// Package parser implements the recursive-descent parser and SSA builder
// (§4.6 of the specification), grounded on
// original_source/src/parser/parser.cpp's Parser class: a one-token
// lookahead over internal/lexer, a stack of lexical scopes, and the
// address-based (AllocA/Load/Store) symbol strategy spec.md §9 calls out
// as the adopted strategy of the two the corpus shows.
package parser

import (
	"fmt"
	"io"

	"kanso/internal/cfg"
	"kanso/internal/errors"
	"kanso/internal/lexer"
	"kanso/internal/ssa"
	"kanso/internal/types"
	"kanso/token"
)

// Symbol is a declared variable: its address (an AllocA in the function's
// entry block) plus the declared type. DeclPos is carried for diagnostics
// only, mirroring the function-owning reference parser.cpp's anonymous
// Symbol struct keeps for the same reason.
type Symbol struct {
	Name    string
	Type    *types.Type
	Alloc   *ssa.AllocA
	DeclPos token.Position
}

// Value is the parser's own parse-time representation of an expression's
// result: the SSA node it currently resolves to, its logical type, and
// whether it is addressable (mirrors parser.cpp's Value/Kind pair).
type Value struct {
	Node   ssa.Instruction
	Type   *types.Type
	LValue bool
}

// parser holds all per-compilation parsing state.
type parser struct {
	ctx *types.Context
	lex *lexer.Lexer

	fn  *ssa.Function
	cur *ssa.BasicBlock

	scopes []map[string]*Symbol
}

// Parse tokenizes and parses r's contents as one implicit function body,
// builds its SSA graph, runs the CFG post-pass, and verifies the result
// (mirrors parser.cpp's free `parse` function, including its trailing
// ConstructBasicBlockGraphVisitor pass - here internal/cfg.Compute).
func Parse(ctx *types.Context, r io.Reader) (*ssa.Function, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	entry := &ssa.BasicBlock{ID: ctx.FreshID()}
	fn := &ssa.Function{
		Name:       "main",
		StartBlock: entry,
		Blocks:     []*ssa.BasicBlock{entry},
		ReturnType: ctx.VoidType(),
	}

	p := &parser{ctx: ctx, lex: lexer.New(string(src)), fn: fn, cur: entry}

	p.pushScope()
	if err := p.blockInterior(); err != nil {
		return nil, err
	}
	p.popScope()

	cfg.Compute(fn)
	if err := fn.Verify(); err != nil {
		return nil, fmt.Errorf("parser: internal invariant violated: %w", err)
	}
	return fn, nil
}

func (p *parser) tok() token.Type      { return p.lex.Token.Type }
func (p *parser) pos() token.Position  { return p.lex.Token.Pos }
func (p *parser) lexeme() string       { return p.lex.Token.Lexeme }

func (p *parser) advance() error {
	if err := p.lex.ReadNext(); err != nil {
		return p.wrapLexErr(err)
	}
	return nil
}

// expect requires the current token to have type tt, consuming it, or
// reports a syntactic error naming what was wanted.
func (p *parser) expect(tt token.Type) (token.Token, error) {
	if p.tok() != tt {
		return token.Token{}, p.errorf(errors.ErrExpectedToken, p.pos(),
			"expected '%s', found '%s'", tt, p.tok())
	}
	cur := p.lex.Token
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return cur, nil
}

func (p *parser) errorf(code string, pos token.Position, format string, args ...interface{}) error {
	return errors.CompilerError{
		Level:    errors.LevelError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	}
}

// wrapLexErr classifies a raw internal/lexer error into the matching
// lexical CompilerError code (§7 "Lexical").
func (p *parser) wrapLexErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	code := errors.ErrInvalidCharacter
	switch {
	case containsAny(msg, "unterminated"):
		code = errors.ErrUnterminatedComment
	case containsAny(msg, "exceeds 64 bits"):
		code = errors.ErrIntegerOverflow
	}
	return errors.CompilerError{Level: errors.LevelError, Code: code, Message: msg, Position: p.pos()}
}

func containsAny(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// emit appends inst to the current block's instruction list and returns it.
func (p *parser) emit(inst ssa.Instruction) ssa.Instruction {
	p.cur.Instructions = append(p.cur.Instructions, inst)
	return inst
}

// terminate ends the current block with ct, appending it as both the
// block's final instruction and its ControlTransfer.
func (p *parser) terminate(ct ssa.ControlTransfer) {
	p.cur.Instructions = append(p.cur.Instructions, ct)
	p.cur.ControlTransfer = ct
}

// newBlock allocates a fresh block and appends it to the function's block
// list in construction order; it does not become the current block until
// the caller assigns it.
func (p *parser) newBlock() *ssa.BasicBlock {
	b := &ssa.BasicBlock{ID: p.ctx.FreshID()}
	p.fn.Blocks = append(p.fn.Blocks, b)
	return b
}

func (p *parser) pushScope() { p.scopes = append(p.scopes, make(map[string]*Symbol)) }
func (p *parser) popScope()  { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *parser) lookup(name string) (*Symbol, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if sym, ok := p.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

func (p *parser) declareInTopScope(name string, typ *types.Type, pos token.Position) (*Symbol, error) {
	top := p.scopes[len(p.scopes)-1]
	if _, ok := top[name]; ok {
		return nil, p.errorf(errors.ErrRedeclaredVariable, pos, "'%s' is already declared in this scope", name)
	}
	alloc := ssa.NewAllocA(p.ctx, typ)
	p.fn.StartBlock.Instructions = append([]ssa.Instruction{alloc}, p.fn.StartBlock.Instructions...)
	sym := &Symbol{Name: name, Type: typ, Alloc: alloc, DeclPos: pos}
	top[name] = sym
	return sym, nil
}

// rvalue coerces an LValue into an RValue by inserting a Load; an RValue
// passes through unchanged (mirrors convertValueToRValue).
func (p *parser) rvalue(v Value) Value {
	if !v.LValue {
		return v
	}
	load := ssa.NewLoad(p.ctx, v.Node)
	p.emit(load)
	return Value{Node: load, Type: load.Type(), LValue: false}
}

// castIfNeeded inserts an explicit TypeCast if v's type is not already
// target, used after ArithCombine/CompareCombine decide each operand's
// required type.
func (p *parser) castIfNeeded(v Value, target *types.Type) Value {
	if v.Type == target {
		return v
	}
	cast := ssa.NewTypeCast(p.ctx, v.Node, target)
	p.emit(cast)
	return Value{Node: cast, Type: cast.Type(), LValue: false}
}
