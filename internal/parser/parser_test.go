package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"kanso/internal/errors"
	"kanso/internal/ssa"
	"kanso/internal/types"
)

func parseSrc(t *testing.T, src string) (*ssa.Function, error) {
	t.Helper()
	ctx := types.NewContext()
	return Parse(ctx, strings.NewReader(src))
}

func mustParse(t *testing.T, src string) *ssa.Function {
	t.Helper()
	fn, err := parseSrc(t, src)
	if err != nil {
		t.Fatalf("unexpected parse error for %q: %v", src, err)
	}
	return fn
}

func TestEmptyProgram(t *testing.T) {
	fn := mustParse(t, "")
	assert.Len(t, fn.Blocks, 1)
	assert.Same(t, fn.StartBlock, fn.Blocks[0])
	assert.Nil(t, fn.StartBlock.ControlTransfer)
	assert.NoError(t, fn.Verify())
}

func TestBoolInitAndIf(t *testing.T) {
	fn := mustParse(t, `boolean b; if (b) { b = true; } else { b = false; }`)
	assert.NoError(t, fn.Verify())

	// entry: AllocA(b), Store(default false), then a conditional jump.
	_, isCondJump := fn.StartBlock.ControlTransfer.(*ssa.ConditionalJump)
	assert.True(t, isCondJump)
	assert.Len(t, fn.StartBlock.DestBlocks, 2)

	foundAlloc, foundStore := false, false
	for _, inst := range fn.StartBlock.Instructions {
		switch inst.(type) {
		case *ssa.AllocA:
			foundAlloc = true
		case *ssa.Store:
			foundStore = true
		}
	}
	assert.True(t, foundAlloc)
	assert.True(t, foundStore)
}

func TestWhileCountLoop(t *testing.T) {
	fn := mustParse(t, `int i; i = 0; while (i == 0) { i = 0; }`)
	assert.NoError(t, fn.Verify())

	// entry unconditionally jumps to the condition block.
	jump, ok := fn.StartBlock.ControlTransfer.(*ssa.UnconditionalJump)
	assert.True(t, ok)
	condBlock := jump.Destinations()[0]

	condJump, ok := condBlock.ControlTransfer.(*ssa.ConditionalJump)
	assert.True(t, ok)
	loopBlock, endBlock := condJump.Destinations()[0], condJump.Destinations()[1]

	assert.Same(t, condBlock, loopBlock.ImmediateDominator)
	assert.Same(t, condBlock, endBlock.ImmediateDominator)
}

func TestPointerArithmeticFolding(t *testing.T) {
	fn := mustParse(t, `int i; int * p; p = &i + 3;`)
	assert.NoError(t, fn.Verify())

	var add *ssa.Add
	for _, inst := range fn.StartBlock.Instructions {
		if a, ok := inst.(*ssa.Add); ok {
			add = a
		}
	}
	if assert.NotNil(t, add) {
		assert.True(t, add.Type().IsPointer())
	}
}

func TestCastChain(t *testing.T) {
	fn := mustParse(t, `int32 x; x = cast(int32, cast(int8, 300));`)
	assert.NoError(t, fn.Verify())

	var casts []*ssa.TypeCast
	for _, inst := range fn.StartBlock.Instructions {
		if c, ok := inst.(*ssa.TypeCast); ok {
			casts = append(casts, c)
		}
	}
	assert.Len(t, casts, 2)
}

func TestDuplicateDeclarationInSameScope(t *testing.T) {
	_, err := parseSrc(t, `int i; int i;`)
	assertErrorCode(t, err, errors.ErrRedeclaredVariable)
}

func TestShadowingAcrossNestedScopesAllowed(t *testing.T) {
	mustParse(t, `int i; { int i; i = 1; } i = 2;`)
}

func TestAssignToConstantIsError(t *testing.T) {
	_, err := parseSrc(t, `constant int i = 1; i = 2;`)
	assertErrorCode(t, err, errors.ErrAssignToConstant)
}

func TestDereferenceNonPointerIsError(t *testing.T) {
	_, err := parseSrc(t, `int i; int j; j = *i;`)
	assertErrorCode(t, err, errors.ErrDereferenceNonPointer)
}

func TestAddressOfRvalueIsError(t *testing.T) {
	_, err := parseSrc(t, `int * p; p = &1;`)
	assertErrorCode(t, err, errors.ErrNotLValue)
}

func TestConditionNotBooleanIsError(t *testing.T) {
	_, err := parseSrc(t, `int i; if (i) { i = 1; }`)
	assertErrorCode(t, err, errors.ErrConditionNotBoolean)
}

func TestConditionNotBooleanWhileIsError(t *testing.T) {
	_, err := parseSrc(t, `int i; while (i) { i = 1; }`)
	assertErrorCode(t, err, errors.ErrConditionNotBoolean)
}

func TestUndeclaredVariableIsError(t *testing.T) {
	_, err := parseSrc(t, `i = 1;`)
	assertErrorCode(t, err, errors.ErrUndefinedVariable)
}

func TestInvalidCastIsError(t *testing.T) {
	_, err := parseSrc(t, `boolean b; int * p; p = cast(int *, b);`)
	assertErrorCode(t, err, errors.ErrInvalidCast)
}

func TestForLoop(t *testing.T) {
	fn := mustParse(t, `int sum; for (int i = 0; i == 0; i = i) { sum = sum; }`)
	assert.NoError(t, fn.Verify())
}

func TestDoWhileLoop(t *testing.T) {
	fn := mustParse(t, `int i; do { i = 0; } while (i == 0);`)
	assert.NoError(t, fn.Verify())
}

func TestIntegerLiteralTypingLadder(t *testing.T) {
	tests := []struct {
		raw    uint64
		signed bool
		width  types.Width
	}{
		{0, true, types.Width8},
		{127, true, types.Width8},
		{200, false, types.Width8},
		{300, true, types.Width16},
		{70000, true, types.Width32},
	}
	for _, tt := range tests {
		gotSigned, gotWidth := typeForLiteral(tt.raw)
		assert.Equal(t, tt.signed, gotSigned, "raw=%d", tt.raw)
		assert.Equal(t, tt.width, gotWidth, "raw=%d", tt.raw)
	}
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if !assert.Error(t, err) {
		return
	}
	ce, ok := err.(errors.CompilerError)
	if !assert.True(t, ok, "expected a CompilerError, got %T: %v", err, err) {
		return
	}
	assert.Equal(t, code, ce.Code)
}
