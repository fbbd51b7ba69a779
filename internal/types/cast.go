package types

// CanCast implements canTypeCastTo (§4.2). When implicit is true only the
// coercions the parser inserts automatically are allowed (assignment,
// argument binding); when implicit is false the explicit-cast additions
// ("cast(T, e)") are also permitted.
//
// original_source's type.h (not kept in the retrieval pack; only
// type_builtin.h/.cpp survived filtering) does not give the body of
// canTypeCastTo, so this follows the spec's prose reading literally: any
// integer may implicitly convert to any other integer (the promotion rules
// already decide when a cast is actually *inserted*; legality here only
// gates whether the parser's coercion step is allowed to run at all).
func (c *Context) CanCast(from, to *Type, implicit bool) bool {
	fromUnqual := c.ToNonVolatile(c.ToNonConstant(from))
	toUnqual := c.ToNonVolatile(c.ToNonConstant(to))

	if fromUnqual == toUnqual && (!from.isConstant || to.isConstant) && (!from.isVolatile || to.isVolatile) {
		return true // value -> more-qualified version of the same type
	}
	if implicit && fromUnqual == toUnqual {
		return false // dropping a qualifier from the same type is never implicit
	}

	switch {
	case fromUnqual.IsInteger() && toUnqual.IsInteger():
		return true
	case fromUnqual.IsBool() && toUnqual.IsInteger():
		return true
	case isNullPointer(fromUnqual) && toUnqual.IsPointer():
		return true
	case fromUnqual.IsPointer() && toUnqual.IsPointer():
		return sameUnqualified(c, fromUnqual.pointee, toUnqual.pointee)
	}

	if implicit {
		return false
	}

	switch {
	case fromUnqual.IsInteger() && toUnqual.IsPointer():
		return true
	case fromUnqual.IsPointer() && toUnqual.IsInteger():
		return true
	case fromUnqual.IsPointer() && toUnqual.IsBool():
		return true
	case fromUnqual.IsInteger() && toUnqual.IsBool():
		return true
	}
	return false
}

// isNullPointer reports whether t is the canonical null-pointer type,
// Pointer(void) (mirrors original_source's ValueNullPointer, whose type is
// always TypePointer::make(TypeVoid::make(context))).
func isNullPointer(t *Type) bool {
	return t.IsPointer() && t.pointee.IsVoid()
}

func sameUnqualified(c *Context, a, b *Type) bool {
	return c.ToNonVolatile(c.ToNonConstant(a)) == c.ToNonVolatile(c.ToNonConstant(b))
}
