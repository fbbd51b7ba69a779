package types

// ArithCombine implements getArithCombinedType (§4.2) for binary '+'.
// It returns the types the left and right operands must be cast to before
// the operation, plus the result type, or ok=false if no combination exists.
//
// The Pointer×Integer and Integer×Integer cases are ported directly from
// original_source/src/types/type_builtin.cpp's TypePointer/TypeInteger
// ::getArithCombinedType — a literal nested switch on (lhsWidth, rhsWidth)
// rather than a generic "promote to wider" rule, since the spec's prose
// description of the promotion ladder is a paraphrase of exactly this table.
func (c *Context) ArithCombine(l, r *Type) (lhsType, rhsType, resultType *Type, ok bool) {
	lb := c.ToNonVolatile(c.ToNonConstant(l))
	rb := c.ToNonVolatile(c.ToNonConstant(r))

	if lb.IsPointer() && rb.IsInteger() {
		return l, r, l, true
	}
	if lb.IsInteger() && rb.IsPointer() {
		return l, r, r, true
	}
	if lb.IsInteger() && rb.IsInteger() {
		resultSigned, resultWidth := combineIntegerWidths(lb.signed, lb.width, rb.signed, rb.width)
		result := c.IntType(resultSigned, resultWidth)
		return result, result, result, true
	}
	return nil, nil, nil, false
}

// CompareCombine implements the promotion used by comparisons (§4.2): same
// promotion as ArithCombine, but the result is always Boolean. Boolean
// operands compare directly with no promotion.
func (c *Context) CompareCombine(l, r *Type) (lhsType, rhsType, resultType *Type, ok bool) {
	lb := c.ToNonVolatile(c.ToNonConstant(l))
	rb := c.ToNonVolatile(c.ToNonConstant(r))

	if lb.IsBool() && rb.IsBool() {
		return l, r, c.BoolType(), true
	}
	if lb.IsInteger() && rb.IsInteger() {
		resultSigned, resultWidth := combineIntegerWidths(lb.signed, lb.width, rb.signed, rb.width)
		operandType := c.IntType(resultSigned, resultWidth)
		return operandType, operandType, c.BoolType(), true
	}
	return nil, nil, nil, false
}

// combineIntegerWidths mirrors TypeInteger::getArithCombinedType's switch
// on (width, rt.width) exactly, width-by-width, including its asymmetric
// coding (the table is nonetheless symmetric in the values it produces).
func combineIntegerWidths(lSigned bool, lWidth Width, rSigned bool, rWidth Width) (resultSigned bool, resultWidth Width) {
	switch lWidth {
	case Width8, Width16:
		switch rWidth {
		case Width8, Width16:
			return true, WidthNative
		case Width32:
			return rSigned, WidthNative
		default: // Width64, WidthNative
			return rSigned, rWidth
		}
	case Width32:
		switch rWidth {
		case Width8, Width16:
			return lSigned, WidthNative
		case Width32:
			return lSigned && rSigned, WidthNative
		default: // Width64, WidthNative
			return rSigned, rWidth
		}
	case Width64:
		switch rWidth {
		case Width8, Width16, Width32, WidthNative:
			return lSigned, Width64
		default: // Width64
			return lSigned && rSigned, Width64
		}
	default: // WidthNative
		switch rWidth {
		case Width8, Width16:
			return lSigned, WidthNative
		case Width32:
			return lSigned, WidthNative
		case Width64:
			return rSigned, rWidth
		default: // WidthNative
			return lSigned && rSigned, rWidth
		}
	}
}
