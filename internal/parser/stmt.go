package parser

import (
	"kanso/internal/errors"
	"kanso/internal/ssa"
	"kanso/internal/values"
	"kanso/token"
)

// block parses a brace-delimited statement block with its own scope
// (mirrors parser.cpp's block).
func (p *parser) block() error {
	if _, err := p.expect(token.LEFT_BRACE); err != nil {
		return err
	}
	if err := p.blockInterior(); err != nil {
		return err
	}
	if _, err := p.expect(token.RIGHT_BRACE); err != nil {
		return err
	}
	return nil
}

// blockInterior parses zero or more declarations/statements inside its own
// scope, stopping at '}' or EOF (mirrors parser.cpp's blockInterior; the
// top-level Parse call also wraps its outermost call in a scope, a harmless
// doubled push/pop also present in the original).
func (p *parser) blockInterior() error {
	p.pushScope()
	defer p.popScope()

	for p.tok() != token.EOF && p.tok() != token.RIGHT_BRACE {
		if startsType(p.tok()) {
			if err := p.declaration(token.SEMICOLON); err != nil {
				return err
			}
			continue
		}
		if err := p.statement(); err != nil {
			return err
		}
	}
	return nil
}

func startsType(tt token.Type) bool {
	switch tt {
	case token.CONSTANT, token.VOLATILE, token.BOOLEAN, token.VOID,
		token.UINT8, token.INT8, token.UINT16, token.INT16,
		token.UINT32, token.INT32, token.UINT64, token.INT64,
		token.UINT, token.INT:
		return true
	default:
		return false
	}
}

func startsExpression(tt token.Type) bool {
	switch tt {
	case token.IDENTIFIER, token.FALSE, token.TRUE, token.NULL, token.INTEGER,
		token.LEFT_PAREN, token.STAR, token.AMPERSAND, token.CAST:
		return true
	default:
		return false
	}
}

// statement dispatches on the current token (mirrors parser.cpp's
// statement).
func (p *parser) statement() error {
	switch {
	case p.tok() == token.LEFT_BRACE:
		return p.block()
	case p.tok() == token.SEMICOLON:
		return p.advance()
	case p.tok() == token.IF:
		return p.ifStatement()
	case p.tok() == token.WHILE:
		return p.whileStatement()
	case p.tok() == token.DO:
		return p.doWhileStatement()
	case p.tok() == token.FOR:
		return p.forStatement()
	case startsExpression(p.tok()):
		if _, err := p.parseExpression(false); err != nil {
			return err
		}
		_, err := p.expect(token.SEMICOLON)
		return err
	default:
		return p.errorf(errors.ErrUnexpectedToken, p.pos(), "expected a statement, found '%s'", p.tok())
	}
}

// expressionOrDeclaration parses a for-loop's init clause: either an
// expression statement or a declaration, both terminated by ';' (mirrors
// parser.cpp's expressionOrDeclaration, hardcoded to ';' since that is its
// only call site's terminator).
func (p *parser) expressionOrDeclaration() error {
	if startsType(p.tok()) {
		return p.declaration(token.SEMICOLON)
	}
	if startsExpression(p.tok()) {
		if _, err := p.parseExpression(false); err != nil {
			return err
		}
		_, err := p.expect(token.SEMICOLON)
		return err
	}
	return p.errorf(errors.ErrUnexpectedToken, p.pos(), "expected an expression or a declaration, found '%s'", p.tok())
}

// declaration parses a type followed by a comma-separated list of declared
// names, each with an optional initializer, terminated by terminatingToken
// (mirrors parser.cpp's declaration).
func (p *parser) declaration(terminatingToken token.Type) error {
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	if p.tok() == terminatingToken {
		return p.advance()
	}

	for {
		pos := p.pos()
		nameTok, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return err
		}
		name := nameTok.Lexeme

		if typ.IsVoid() {
			return p.errorf(errors.ErrVoidValue, pos, "'%s' cannot be declared void", name)
		}
		sym, err := p.declareInTopScope(name, typ, pos)
		if err != nil {
			return err
		}

		if p.tok() == token.EQUAL {
			if err := p.advance(); err != nil {
				return err
			}
			init, err := p.parseExpression(true)
			if err != nil {
				return err
			}
			init = p.rvalue(init)

			assignable := p.ctx.ToConstant(p.ctx.ToVolatile(sym.Type))
			if !p.ctx.CanCast(init.Type, assignable, true) {
				return p.errorf(errors.ErrTypeMismatch, pos, "cannot initialize %s with %s", sym.Type, init.Type)
			}
			if unqualified(p.ctx, init.Type) != unqualified(p.ctx, sym.Type) {
				init = p.castIfNeeded(init, p.ctx.ToConstant(sym.Type))
			}
			p.emit(ssa.NewStore(p.ctx, sym.Alloc, init.Node))
		} else {
			def, ok := values.MakeDefault(p.ctx, typ)
			if !ok {
				return p.errorf(errors.ErrVoidValue, pos, "type %s has no default value", typ)
			}
			c := ssa.NewConstant(p.ctx, def)
			p.emit(c)
			p.emit(ssa.NewStore(p.ctx, sym.Alloc, c))
		}

		if p.tok() == terminatingToken {
			return p.advance()
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return err
		}
	}
}

// requireBoolean strips qualifiers and checks a condition expression's
// unqualified type is boolean (shared by if/while/do-while/for).
func (p *parser) requireBoolean(v Value, pos token.Position) error {
	if !unqualified(p.ctx, v.Type).IsBool() {
		return p.errorf(errors.ErrConditionNotBoolean, pos, "condition must be boolean, found %s", v.Type)
	}
	return nil
}

// ifStatement mirrors parser.cpp's ifStatement. elseBlock is constructed
// lazily, only when an 'else' clause is actually present: the original
// always allocates it but only appends it to the function's block list
// inside the else branch, so the no-else path's block is simply unused.
func (p *parser) ifStatement() error {
	if err := p.advance(); err != nil { // consume 'if'
		return err
	}
	condPos := p.pos()
	cond, err := p.parseExpression(false)
	if err != nil {
		return err
	}
	cond = p.rvalue(cond)
	if err := p.requireBoolean(cond, condPos); err != nil {
		return err
	}

	startBlock := p.cur
	thenBlock := p.newBlock()
	endBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}

	p.cur = thenBlock
	if err := p.statement(); err != nil {
		return err
	}
	p.terminate(ssa.NewUnconditionalJump(p.ctx, endBlock))

	if p.tok() == token.ELSE {
		if err := p.advance(); err != nil {
			return err
		}
		elseBlock := p.newBlock()
		p.cur = elseBlock
		if err := p.statement(); err != nil {
			return err
		}
		p.terminate(ssa.NewUnconditionalJump(p.ctx, endBlock))

		p.fn.Blocks = append(p.fn.Blocks, endBlock)
		p.cur = endBlock

		save := p.cur
		p.cur = startBlock
		p.terminate(ssa.NewConditionalJump(p.ctx, cond.Node, thenBlock, elseBlock))
		p.cur = save
		return nil
	}

	p.fn.Blocks = append(p.fn.Blocks, endBlock)
	p.cur = endBlock

	save := p.cur
	p.cur = startBlock
	p.terminate(ssa.NewConditionalJump(p.ctx, cond.Node, thenBlock, endBlock))
	p.cur = save
	return nil
}

// whileStatement mirrors parser.cpp's whileStatement: startBlock jumps
// unconditionally to a dedicated condition block, which conditionally
// branches into the loop body or out to endBlock.
func (p *parser) whileStatement() error {
	if err := p.advance(); err != nil { // consume 'while'
		return err
	}
	startBlock := p.cur
	conditionBlock := p.newBlock()
	loopBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}
	endBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}

	p.cur = startBlock
	p.terminate(ssa.NewUnconditionalJump(p.ctx, conditionBlock))

	p.cur = conditionBlock
	condPos := p.pos()
	cond, err := p.parseExpression(false)
	if err != nil {
		return err
	}
	cond = p.rvalue(cond)
	if err := p.requireBoolean(cond, condPos); err != nil {
		return err
	}
	p.fn.Blocks = append(p.fn.Blocks, loopBlock)
	p.terminate(ssa.NewConditionalJump(p.ctx, cond.Node, loopBlock, endBlock))

	p.cur = loopBlock
	if err := p.statement(); err != nil {
		return err
	}
	p.terminate(ssa.NewUnconditionalJump(p.ctx, conditionBlock))

	p.fn.Blocks = append(p.fn.Blocks, endBlock)
	p.cur = endBlock
	return nil
}

// doWhileStatement mirrors parser.cpp's doWhileStatement: the loop body
// always runs once before the condition is ever tested.
func (p *parser) doWhileStatement() error {
	if err := p.advance(); err != nil { // consume 'do'
		return err
	}
	startBlock := p.cur
	loopBlock := p.newBlock()
	endBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}

	p.cur = startBlock
	p.terminate(ssa.NewUnconditionalJump(p.ctx, loopBlock))

	p.cur = loopBlock
	if err := p.statement(); err != nil {
		return err
	}

	if _, err := p.expect(token.WHILE); err != nil {
		return err
	}
	condPos := p.pos()
	cond, err := p.parseExpression(false)
	if err != nil {
		return err
	}
	cond = p.rvalue(cond)
	if err := p.requireBoolean(cond, condPos); err != nil {
		return err
	}
	p.fn.Blocks = append(p.fn.Blocks, endBlock)
	p.terminate(ssa.NewConditionalJump(p.ctx, cond.Node, loopBlock, endBlock))

	p.cur = endBlock
	_, err = p.expect(token.SEMICOLON)
	return err
}

// forStatement mirrors parser.cpp's forStatement: a four-block loop skeleton
// (condition/update/loop/end) plus its own nested scope for the init
// clause's declared variables.
func (p *parser) forStatement() error {
	p.pushScope()
	defer p.popScope()

	if err := p.advance(); err != nil { // consume 'for'
		return err
	}
	if _, err := p.expect(token.LEFT_PAREN); err != nil {
		return err
	}
	if err := p.expressionOrDeclaration(); err != nil {
		return err
	}

	startBlock := p.cur
	conditionBlock := p.newBlock()
	updateBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}
	loopBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}
	endBlock := &ssa.BasicBlock{ID: p.ctx.FreshID()}

	p.cur = startBlock
	p.terminate(ssa.NewUnconditionalJump(p.ctx, conditionBlock))

	p.cur = conditionBlock
	condPos := p.pos()
	cond, err := p.parseExpression(false)
	if err != nil {
		return err
	}
	cond = p.rvalue(cond)
	if err := p.requireBoolean(cond, condPos); err != nil {
		return err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return err
	}
	p.terminate(ssa.NewConditionalJump(p.ctx, cond.Node, loopBlock, endBlock))

	p.fn.Blocks = append(p.fn.Blocks, updateBlock)
	p.cur = updateBlock
	if _, err := p.parseExpression(false); err != nil {
		return err
	}
	if _, err := p.expect(token.RIGHT_PAREN); err != nil {
		return err
	}
	p.terminate(ssa.NewUnconditionalJump(p.ctx, conditionBlock))

	p.fn.Blocks = append(p.fn.Blocks, loopBlock)
	p.cur = loopBlock
	if err := p.statement(); err != nil {
		return err
	}
	p.terminate(ssa.NewUnconditionalJump(p.ctx, updateBlock))

	p.fn.Blocks = append(p.fn.Blocks, endBlock)
	p.cur = endBlock
	return nil
}
