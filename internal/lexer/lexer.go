// Package lexer implements the tokenizer (§4.5 of the specification),
// grounded on original_source/tokenizer/token.h's Tokenizer: one
// byte-level put-back stack for comment/symbol scanning, one token-level
// put-back slot for the parser, maximal-munch symbol recognition with
// character-by-character backtracking on ambiguity, and case-insensitive
// keyword reclassification restricted to all-lowercase identifiers.
package lexer

import (
	"fmt"

	"kanso/token"
)

// Lexer turns source text into a token.Token stream with one token of
// put-back, matching the Tokenizer contract: after New, Token holds the
// first token; ReadNext advances it.
type Lexer struct {
	src []byte
	pos int // next unread byte
	line, column int

	putBackBytes []byte // byte-level push-back stack, last pushed popped first

	Token Token

	hasPutBackToken bool
	putBackToken    Token
}

// Token is an alias of token.Token, which already carries the position the
// token started at; ReadNext writes into this struct each call the way the original mutates its
// tokenType/tokenValue fields in place.
type Token = token.Token

// New creates a Lexer over src and reads the first token.
func New(src string) *Lexer {
	l := &Lexer{src: []byte(src), line: 1, column: 1}
	l.ReadNext()
	return l
}

func (l *Lexer) peekByte() int {
	if n := len(l.putBackBytes); n > 0 {
		return int(l.putBackBytes[n-1])
	}
	if l.pos >= len(l.src) {
		return -1
	}
	return int(l.src[l.pos])
}

func (l *Lexer) getByte() int {
	if n := len(l.putBackBytes); n > 0 {
		ch := l.putBackBytes[n-1]
		l.putBackBytes = l.putBackBytes[:n-1]
		return int(ch)
	}
	if l.pos >= len(l.src) {
		return -1
	}
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return int(ch)
}

func (l *Lexer) putBackByte(ch int) {
	l.putBackBytes = append(l.putBackBytes, byte(ch))
	if ch == '\n' {
		l.line--
	} else if l.column > 1 {
		l.column--
	}
}

// PutBack makes t the current token and stashes the token that was current;
// the next ReadNext call restores the stashed token instead of reading from
// the byte stream (mirrors Tokenizer::putBack(type, value); only one slot
// deep, matching the original).
func (l *Lexer) PutBack(t Token) {
	l.putBackToken = l.Token
	l.hasPutBackToken = true
	l.Token = t
}

// Next returns the current token and advances.
func (l *Lexer) Next() (Token, error) {
	cur := l.Token
	err := l.ReadNext()
	return cur, err
}

func isSpace(ch int) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isLineBreakish(ch int) bool {
	switch ch {
	case '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isAlpha(ch int) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch int) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch int) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isAlnum(ch int) bool { return isAlpha(ch) || isDigit(ch) }

// ReadNext advances l.Token to the next token (mirrors
// Tokenizer::readNext). It returns an error for an unterminated comment,
// an unrecognized character, or an integer literal wider than 64 bits.
func (l *Lexer) ReadNext() error {
	if l.hasPutBackToken {
		l.Token = l.putBackToken
		l.putBackToken = Token{}
		l.hasPutBackToken = false
		return nil
	}

skipLoop:
	for {
		if l.peekByte() == -1 {
			l.Token = Token{Type: token.EOF, Pos: l.pos1()}
			return nil
		}
		if l.peekByte() == '/' {
			l.getByte()
			switch l.peekByte() {
			case '*':
				l.getByte()
				if err := l.skipBlockComment(); err != nil {
					return err
				}
			case '/':
				for l.peekByte() != -1 && !isLineBreakish(l.peekByte()) {
					l.getByte()
				}
			default:
				l.putBackByte('/')
				break skipLoop
			}
			continue
		}
		if isSpace(l.peekByte()) {
			l.getByte()
			continue
		}
		break
	}

	start := l.pos1()

	if isAlpha(l.peekByte()) {
		var lexeme []byte
		for isAlnum(l.peekByte()) {
			lexeme = append(lexeme, byte(l.getByte()))
		}
		text := string(lexeme)
		allLower := true
		for _, ch := range lexeme {
			if ch >= 'A' && ch <= 'Z' {
				allLower = false
				break
			}
		}
		if allLower {
			if kw, ok := token.Keywords[text]; ok {
				l.Token = Token{Type: kw, Lexeme: text, Pos: start}
				return nil
			}
		}
		l.Token = Token{Type: token.IDENTIFIER, Lexeme: text, Pos: start}
		return nil
	}

	if isDigit(l.peekByte()) {
		return l.scanNumber(start)
	}

	return l.scanSymbol(start)
}

func (l *Lexer) skipBlockComment() error {
	for {
		if l.peekByte() == -1 {
			return fmt.Errorf("lexer: unterminated block comment")
		}
		if l.peekByte() == '*' {
			for l.peekByte() == '*' {
				l.getByte()
			}
			if l.peekByte() == '/' {
				l.getByte()
				return nil
			}
			continue
		}
		l.getByte()
	}
}

// scanNumber reads a decimal or 0x-prefixed hex integer literal, rejecting
// one that overflows 64 bits (§4.5). Float literals are not produced; a
// `.` after digits is left unconsumed for the parser/caller to reject.
func (l *Lexer) scanNumber(start token.Position) error {
	var lexeme []byte
	hex := false
	if l.peekByte() == '0' {
		lexeme = append(lexeme, byte(l.getByte()))
		if l.peekByte() == 'x' || l.peekByte() == 'X' {
			lexeme = append(lexeme, byte(l.getByte()))
			hex = true
		}
	}
	digitsStart := len(lexeme)
	for {
		ch := l.peekByte()
		if hex && isHexDigit(ch) {
			lexeme = append(lexeme, byte(l.getByte()))
			continue
		}
		if !hex && isDigit(ch) {
			lexeme = append(lexeme, byte(l.getByte()))
			continue
		}
		break
	}
	digits := string(lexeme[digitsStart:])
	if digits == "" {
		digits = "0"
	}

	var value uint64
	base := uint64(10)
	if hex {
		base = 16
	}
	for _, ch := range []byte(digits) {
		var d uint64
		switch {
		case ch >= '0' && ch <= '9':
			d = uint64(ch - '0')
		case ch >= 'a' && ch <= 'f':
			d = uint64(ch-'a') + 10
		case ch >= 'A' && ch <= 'F':
			d = uint64(ch-'A') + 10
		}
		if value > (^uint64(0)-d)/base {
			return fmt.Errorf("lexer: integer literal at %s exceeds 64 bits", start)
		}
		value = value*base + d
	}

	l.Token = Token{Type: token.INTEGER, Lexeme: string(lexeme), IntValue: value, Pos: start}
	return nil
}

// scanSymbol implements the maximal-munch algorithm: grow tokenValue one
// character at a time while some symbol still has it as a prefix, stopping
// as soon as exactly one symbol remains and it is an exact match; on
// running out of candidates, back off character by character (returning
// each to the stream) until a shorter exact match is found (mirrors
// Tokenizer::readNext's symbol-scanning loop literally).
func (l *Lexer) scanSymbol(start token.Position) error {
	first := l.getByte()
	if first == -1 {
		l.Token = Token{Type: token.EOF, Pos: start}
		return nil
	}
	value := []byte{byte(first)}

	for {
		matchCount := 0
		var matchedType token.Type
		lastWasExact := false
		for _, sym := range token.Symbols {
			if len(sym.Text) < len(value) {
				continue
			}
			if sym.Text[:len(value)] == string(value) {
				matchCount++
				matchedType = sym.Type
				lastWasExact = sym.Text == string(value)
			}
		}
		if matchCount == 1 && lastWasExact {
			l.Token = Token{Type: matchedType, Lexeme: string(value), Pos: start}
			return nil
		}
		if matchCount == 0 {
			for len(value) >= 1 {
				l.putBackByte(int(value[len(value)-1]))
				value = value[:len(value)-1]
				if len(value) == 0 {
					break
				}
				for _, sym := range token.Symbols {
					if sym.Text == string(value) {
						l.Token = Token{Type: sym.Type, Lexeme: string(value), Pos: start}
						return nil
					}
				}
			}
			return fmt.Errorf("lexer: invalid character at %s", start)
		}
		ch := l.getByte()
		if ch == -1 {
			return fmt.Errorf("lexer: invalid character at %s", start)
		}
		value = append(value, byte(ch))
	}
}

func (l *Lexer) pos1() token.Position {
	return token.Position{Line: l.line, Column: l.column, Offset: l.pos}
}
