package parser

import (
	"kanso/internal/errors"
	"kanso/internal/types"
	"kanso/token"
)

// topLevelType parses one of the built-in type keywords (mirrors
// parser.cpp's topLevelType).
func (p *parser) topLevelType() (*types.Type, error) {
	pos := p.pos()
	var result *types.Type
	switch p.tok() {
	case token.VOID:
		result = p.ctx.VoidType()
	case token.BOOLEAN:
		result = p.ctx.BoolType()
	case token.UINT8:
		result = p.ctx.IntType(false, types.Width8)
	case token.INT8:
		result = p.ctx.IntType(true, types.Width8)
	case token.UINT16:
		result = p.ctx.IntType(false, types.Width16)
	case token.INT16:
		result = p.ctx.IntType(true, types.Width16)
	case token.UINT32:
		result = p.ctx.IntType(false, types.Width32)
	case token.INT32:
		result = p.ctx.IntType(true, types.Width32)
	case token.UINT64:
		result = p.ctx.IntType(false, types.Width64)
	case token.INT64:
		result = p.ctx.IntType(true, types.Width64)
	case token.UINT:
		result = p.ctx.IntType(false, types.WidthNative)
	case token.INT:
		result = p.ctx.IntType(true, types.WidthNative)
	default:
		return nil, p.errorf(errors.ErrExpectedType, pos, "expected a type, found '%s'", p.tok())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return result, nil
}

// parseTypeQualifier consumes zero or more 'constant'/'volatile' keywords
// and returns a function applying whatever qualifiers were seen, or nil if
// none were present (mirrors parser.cpp's parseTypeQualifier, which builds
// a closure for the same reason: the qualifiers may need to be re-applied
// once before and once after the base type, and again after each '*').
func (p *parser) parseTypeQualifier() (func(*types.Type) *types.Type, error) {
	isConstant, isVolatile := false, false
	for {
		switch p.tok() {
		case token.CONSTANT:
			if isConstant {
				return nil, p.errorf(errors.ErrUnexpectedToken, p.pos(), "too many 'constant' qualifiers")
			}
			isConstant = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		case token.VOLATILE:
			if isVolatile {
				return nil, p.errorf(errors.ErrUnexpectedToken, p.pos(), "too many 'volatile' qualifiers")
			}
			isVolatile = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			if !isConstant && !isVolatile {
				return nil, nil
			}
			return func(t *types.Type) *types.Type {
				if isConstant {
					t = p.ctx.ToConstant(t)
				}
				if isVolatile {
					t = p.ctx.ToVolatile(t)
				}
				return t
			}, nil
		}
	}
}

// pointerType parses a qualified base type followed by zero or more
// trailing '*', each optionally re-qualified (mirrors parser.cpp's
// pointerType).
func (p *parser) pointerType() (*types.Type, error) {
	qual, err := p.parseTypeQualifier()
	if err != nil {
		return nil, err
	}
	result, err := p.topLevelType()
	if err != nil {
		return nil, err
	}
	if qual != nil {
		result = qual(result)
	}
	qual, err = p.parseTypeQualifier()
	if err != nil {
		return nil, err
	}
	if qual != nil {
		result = qual(result)
	}
	for p.tok() == token.STAR {
		result = p.ctx.PointerType(result)
		if err := p.advance(); err != nil {
			return nil, err
		}
		qual, err = p.parseTypeQualifier()
		if err != nil {
			return nil, err
		}
		if qual != nil {
			result = qual(result)
		}
	}
	return result, nil
}

func (p *parser) parseType() (*types.Type, error) {
	return p.pointerType()
}
