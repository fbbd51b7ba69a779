package parser

import (
	"kanso/internal/errors"
	"kanso/internal/ssa"
	"kanso/internal/types"
	"kanso/internal/values"
	"kanso/token"
)

// parseExpression parses a comma-expression; ignoreComma suppresses the
// comma operator (used inside a declaration's initializer, including one
// in a for-loop's init clause, where top-level commas belong to the
// enclosing grammar instead) (mirrors parser.cpp's expression/commaExpression).
func (p *parser) parseExpression(ignoreComma bool) (Value, error) {
	v, err := p.parseAssignment()
	if err != nil {
		return Value{}, err
	}
	for p.tok() == token.COMMA && !ignoreComma {
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		v, err = p.parseAssignment()
		if err != nil {
			return Value{}, err
		}
	}
	return v, nil
}

// parseAssignment is right-associative: a successful '=' leaves the
// target's own Value as the expression's result, matching the original's
// "value of an assignment is the variable, not the stored value" contract
// observed by continuing to chain off valueStack.back() unmodified.
func (p *parser) parseAssignment() (Value, error) {
	target, err := p.parseComparison()
	if err != nil {
		return Value{}, err
	}
	if p.tok() != token.EQUAL {
		return target, nil
	}
	pos := p.pos()
	if !target.LValue {
		return Value{}, p.errorf(errors.ErrNotLValue, pos, "left side of '=' must be an addressable variable")
	}
	if target.Type.IsConstant() {
		return Value{}, p.errorf(errors.ErrAssignToConstant, pos, "cannot assign to a constant variable")
	}
	if err := p.advance(); err != nil {
		return Value{}, err
	}
	rhs, err := p.parseAssignment()
	if err != nil {
		return Value{}, err
	}
	rhs = p.rvalue(rhs)

	assignable := p.ctx.ToConstant(p.ctx.ToVolatile(target.Type))
	if !p.ctx.CanCast(rhs.Type, assignable, true) {
		return Value{}, p.errorf(errors.ErrTypeMismatch, pos, "cannot assign %s to %s", rhs.Type, target.Type)
	}
	if unqualified(p.ctx, rhs.Type) != unqualified(p.ctx, target.Type) {
		rhs = p.castIfNeeded(rhs, p.ctx.ToConstant(target.Type))
	}
	p.emit(ssa.NewStore(p.ctx, target.Node, rhs.Node))
	return target, nil
}

func unqualified(ctx *types.Context, t *types.Type) *types.Type {
	return ctx.ToNonConstant(ctx.ToNonVolatile(t))
}

// parseComparison parses at most one relational operator, never a chain
// (mirrors parser.cpp's comparisonExpression, which `return`s immediately
// when no operator token follows the first add-expression).
func (p *parser) parseComparison() (Value, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return Value{}, err
	}

	var op ssa.CompareOperator
	switch p.tok() {
	case token.EQUAL_EQUAL:
		op = ssa.CompareEqual
	case token.BANG_EQUAL:
		op = ssa.CompareNotEqual
	case token.GREATER_EQUAL:
		op = ssa.CompareGreaterEqual
	case token.LESS_EQUAL:
		op = ssa.CompareLessEqual
	case token.GREATER:
		op = ssa.CompareGreater
	case token.LESS:
		op = ssa.CompareLess
	default:
		return lhs, nil
	}
	pos := p.pos()
	if err := p.advance(); err != nil {
		return Value{}, err
	}

	lhs = p.rvalue(lhs)
	rhs, err := p.parseAdd()
	if err != nil {
		return Value{}, err
	}
	rhs = p.rvalue(rhs)

	lhsType, rhsType, resultType, ok := p.ctx.CompareCombine(lhs.Type, rhs.Type)
	if !ok {
		return Value{}, p.errorf(errors.ErrTypeMismatch, pos, "operand types are not comparable")
	}
	lhs = p.castIfNeeded(lhs, lhsType)
	rhs = p.castIfNeeded(rhs, rhsType)

	cmp := ssa.NewCompare(p.ctx, lhs.Node, op, rhs.Node)
	p.emit(cmp)
	_ = resultType
	return Value{Node: cmp, Type: cmp.Type(), LValue: false}, nil
}

// parseAdd parses a left-associative chain of '+' (mirrors parser.cpp's
// addExpression).
func (p *parser) parseAdd() (Value, error) {
	lhs, err := p.parsePrefix()
	if err != nil {
		return Value{}, err
	}
	for p.tok() == token.PLUS {
		lhs = p.rvalue(lhs)
		pos := p.pos()
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		rhs, err := p.parsePrefix()
		if err != nil {
			return Value{}, err
		}
		rhs = p.rvalue(rhs)

		lhsType, rhsType, resultType, ok := p.ctx.ArithCombine(lhs.Type, rhs.Type)
		if !ok {
			return Value{}, p.errorf(errors.ErrTypeMismatch, pos, "operand types are not compatible with '+'")
		}
		lhs = p.castIfNeeded(lhs, lhsType)
		rhs = p.castIfNeeded(rhs, rhsType)

		// ssa.Add's type is always its first operand's type, so whichever
		// side now carries resultType must be passed first.
		first, second := lhs, rhs
		if first.Type != resultType {
			first, second = rhs, lhs
		}
		add := ssa.NewAdd(p.ctx, first.Node, second.Node)
		p.emit(add)
		lhs = Value{Node: add, Type: add.Type(), LValue: false}
	}
	return lhs, nil
}

// parsePrefix handles the right-associative '*'/'&' prefix operators
// (mirrors parser.cpp's prefixOperator).
func (p *parser) parsePrefix() (Value, error) {
	switch p.tok() {
	case token.STAR:
		pos := p.pos()
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		inner, err := p.parsePrefix()
		if err != nil {
			return Value{}, err
		}
		inner = p.rvalue(inner)
		if !inner.Type.IsPointer() {
			return Value{}, p.errorf(errors.ErrDereferenceNonPointer, pos, "cannot dereference a non-pointer value")
		}
		return Value{Node: inner.Node, Type: inner.Type.Dereference(), LValue: true}, nil

	case token.AMPERSAND:
		pos := p.pos()
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		inner, err := p.parsePrefix()
		if err != nil {
			return Value{}, err
		}
		if !inner.LValue {
			return Value{}, p.errorf(errors.ErrNotLValue, pos, "cannot take the address of a non-addressable value")
		}
		ptrType := p.ctx.ToConstant(p.ctx.PointerType(inner.Type))
		return Value{Node: inner.Node, Type: ptrType, LValue: false}, nil

	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses the atoms of the grammar: parenthesized expressions,
// identifiers, literals, and the explicit cast form (mirrors parser.cpp's
// topLevelExpression).
func (p *parser) parsePrimary() (Value, error) {
	pos := p.pos()
	switch p.tok() {
	case token.LEFT_PAREN:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		v, err := p.parseExpression(false)
		if err != nil {
			return Value{}, err
		}
		if _, err := p.expect(token.RIGHT_PAREN); err != nil {
			return Value{}, err
		}
		return v, nil

	case token.IDENTIFIER:
		name := p.lexeme()
		sym, ok := p.lookup(name)
		if !ok {
			return Value{}, p.errorf(errors.ErrUndefinedVariable, pos, "undefined variable '%s'", name)
		}
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Value{Node: sym.Alloc, Type: sym.Type, LValue: true}, nil

	case token.FALSE, token.TRUE:
		v := p.tok() == token.TRUE
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		c := ssa.NewConstant(p.ctx, values.Bool{T: p.ctx.BoolType(), V: v})
		p.emit(c)
		return Value{Node: c, Type: c.Type(), LValue: false}, nil

	case token.NULL:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		c := ssa.NewConstant(p.ctx, values.NullPointer{T: p.ctx.PointerType(p.ctx.VoidType())})
		p.emit(c)
		return Value{Node: c, Type: c.Type(), LValue: false}, nil

	case token.INTEGER:
		raw := p.lex.Token.IntValue
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		signed, width := typeForLiteral(raw)
		c := ssa.NewConstant(p.ctx, values.NewInt(p.ctx, signed, width, raw))
		p.emit(c)
		return Value{Node: c, Type: c.Type(), LValue: false}, nil

	case token.CAST:
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		if _, err := p.expect(token.LEFT_PAREN); err != nil {
			return Value{}, err
		}
		target, err := p.parseType()
		if err != nil {
			return Value{}, err
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return Value{}, err
		}
		castPos := p.pos()
		inner, err := p.parseExpression(false)
		if err != nil {
			return Value{}, err
		}
		if _, err := p.expect(token.RIGHT_PAREN); err != nil {
			return Value{}, err
		}
		inner = p.rvalue(inner)
		if !p.ctx.CanCast(inner.Type, target, false) {
			return Value{}, p.errorf(errors.ErrInvalidCast, castPos, "cannot cast %s to %s", inner.Type, target)
		}
		cast := ssa.NewTypeCast(p.ctx, inner.Node, target)
		p.emit(cast)
		return Value{Node: cast, Type: cast.Type(), LValue: false}, nil

	default:
		return Value{}, p.errorf(errors.ErrUnexpectedToken, pos, "unexpected token '%s'", p.tok())
	}
}

// typeForLiteral implements the normative integer-literal typing ladder
// (§6): the narrowest signed type that holds raw, falling back to
// unsigned of the same width, then the next wider width, up to 64-bit
// unsigned. Ported directly from parser.cpp's cascading
// vs8/vu8/vs16/vu16/... checks rather than a generic min-width search.
func typeForLiteral(raw uint64) (signed bool, width types.Width) {
	vs64 := int64(raw)

	vs8 := int64(int8(vs64))
	if vs8 >= 0 && vs8 == vs64 {
		return true, types.Width8
	}
	vu8 := uint64(uint8(raw))
	if vu8 == raw {
		return false, types.Width8
	}
	vs16 := int64(int16(vs64))
	if vs16 >= 0 && vs16 == vs64 {
		return true, types.Width16
	}
	vu16 := uint64(uint16(raw))
	if vu16 == raw {
		return false, types.Width16
	}
	vs32 := int64(int32(vs64))
	if vs32 >= 0 && vs32 == vs64 {
		return true, types.Width32
	}
	vu32 := uint64(uint32(raw))
	if vu32 == raw {
		return false, types.Width32
	}
	if vs64 >= 0 {
		return true, types.Width64
	}
	return false, types.Width64
}
