package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/token"
)

func TestFormatIncludesCodeAndMessage(t *testing.T) {
	r := NewReporter("t.k", "int x = 1;\n")
	out := r.Format(CompilerError{
		Level:    LevelError,
		Code:     ErrUndefinedVariable,
		Message:  "undefined variable 'x'",
		Position: token.Position{Line: 1, Column: 5},
		Length:   1,
	})
	assert.Contains(t, out, ErrUndefinedVariable)
	assert.Contains(t, out, "undefined variable 'x'")
	assert.Contains(t, out, "t.k:1:5")
}

func TestFormatShowsSourceLineAndCaret(t *testing.T) {
	r := NewReporter("t.k", "int x = 1;\nbool y = x;\n")
	out := r.Format(CompilerError{
		Level:    LevelError,
		Code:     ErrTypeMismatch,
		Message:  "type mismatch",
		Position: token.Position{Line: 2, Column: 10},
		Length:   1,
	})
	lines := strings.Split(out, "\n")
	found := false
	for _, l := range lines {
		if strings.Contains(l, "bool y = x;") {
			found = true
		}
	}
	assert.True(t, found, "expected the offending source line to be printed")
}

func TestFormatAppendsNotesAndHelp(t *testing.T) {
	r := NewReporter("t.k", "x;\n")
	out := r.Format(CompilerError{
		Level:    LevelError,
		Code:     ErrUndefinedVariable,
		Message:  "undefined variable",
		Position: token.Position{Line: 1, Column: 1},
		Notes:    []string{"did you mean 'y'?"},
		HelpText: "declare x before use",
	})
	assert.Contains(t, out, "did you mean 'y'?")
	assert.Contains(t, out, "declare x before use")
}

func TestKindOfClassifiesByCodeRange(t *testing.T) {
	assert.Equal(t, Lexical, KindOf(ErrInvalidCharacter))
	assert.Equal(t, Syntactic, KindOf(ErrUnexpectedToken))
	assert.Equal(t, Semantic, KindOf(ErrTypeMismatch))
}

func TestDescribeReturnsKnownCodes(t *testing.T) {
	assert.NotEmpty(t, Describe(ErrIntegerOverflow))
	assert.Empty(t, Describe("E9999"))
}
