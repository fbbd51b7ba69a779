// Package types implements the compiler's type lattice (§4.2 of the
// specification) and the per-compilation Context that hash-conses every
// type node it produces (§4.1). Grounded on the structural-uniquing scheme
// of original_source/types/type_builtin.h (TypeGenericBuiltIn::make calling
// through CompilerContext::constructTypeNode) and on the interning-table
// style of the teacher's internal/types.TypeRegistry.
package types

import "fmt"

// Kind discriminates the variants of Type (§3 "Type node").
type Kind int

const (
	Void Kind = iota
	Bool
	Integer
	Pointer
)

// Type is a single node in the type lattice: a variant discriminator plus
// the two qualifier flags. Every (variant, qualifier-pair) combination is
// represented by exactly one *Type per Context (invariant (i) of §3).
type Type struct {
	kind       Kind
	signed     bool  // Integer only
	width      Width // Integer only
	pointee    *Type // Pointer only
	isConstant bool
	isVolatile bool
}

func (t *Type) Kind() Kind          { return t.kind }
func (t *Type) IsConstant() bool    { return t.isConstant }
func (t *Type) IsVolatile() bool    { return t.isVolatile }
func (t *Type) Signed() bool        { return t.signed }
func (t *Type) Width() Width        { return t.width }
func (t *Type) IsVoid() bool        { return t.kind == Void }
func (t *Type) IsBool() bool        { return t.kind == Bool }
func (t *Type) IsInteger() bool     { return t.kind == Integer }
func (t *Type) IsPointer() bool     { return t.kind == Pointer }

// Dereference returns the pointee type. Defined only on pointer types
// (invariant (iii)); callers must check IsPointer first.
func (t *Type) Dereference() *Type {
	if t.kind != Pointer {
		panic("types: Dereference called on non-pointer type")
	}
	return t.pointee
}

func (t *Type) String() string {
	var base string
	switch t.kind {
	case Void:
		base = "void"
	case Bool:
		base = "boolean"
	case Integer:
		sign := "int"
		if !t.signed {
			sign = "uint"
		}
		if t.width == WidthNative {
			base = sign
		} else {
			base = fmt.Sprintf("%s%s", sign, t.width)
		}
	case Pointer:
		base = t.pointee.String() + "*"
	}
	if t.isConstant {
		base = "constant " + base
	}
	if t.isVolatile {
		base = "volatile " + base
	}
	return base
}

// key is the hash-cons key for a type node; it is comparable so it can be
// used directly as a Go map key (structural uniquing, invariant (i)).
type key struct {
	kind       Kind
	signed     bool
	width      Width
	pointee    *Type
	isConstant bool
	isVolatile bool
}

// Context is the compiler's per-compilation root (§4.1 "Compiler Context").
// It owns every interned type node. Single-threaded, as the whole
// compilation pipeline is (§5).
type Context struct {
	interned map[key]*Type
	nextID   int // fresh-identifier issuer shared by SSA construction (C1)
}

// NewContext creates an empty context, to be used for exactly one
// compilation (§3 "Lifecycle: created before parsing, destroyed after
// dumping").
func NewContext() *Context {
	return &Context{interned: make(map[key]*Type)}
}

// FreshID issues a small monotonically increasing integer, used by the SSA
// builder and basic-block allocator for node/block identifiers.
func (c *Context) FreshID() int {
	id := c.nextID
	c.nextID++
	return id
}

func (c *Context) intern(k key) *Type {
	if existing, ok := c.interned[k]; ok {
		return existing
	}
	t := &Type{kind: k.kind, signed: k.signed, width: k.width, pointee: k.pointee, isConstant: k.isConstant, isVolatile: k.isVolatile}
	c.interned[k] = t
	return t
}

// VoidType returns the unique (non-qualified) void type.
func (c *Context) VoidType() *Type { return c.intern(key{kind: Void}) }

// BoolType returns the unique (non-qualified) boolean type.
func (c *Context) BoolType() *Type { return c.intern(key{kind: Bool}) }

// IntType returns the unique integer type for the given signedness/width.
func (c *Context) IntType(signed bool, width Width) *Type {
	return c.intern(key{kind: Integer, signed: signed, width: width})
}

// PointerType returns the unique pointer-to-pointee type. Arbitrary depth
// is achieved by nesting (invariant: "Pointer(pointee) - arbitrary depth by
// nesting").
func (c *Context) PointerType(pointee *Type) *Type {
	return c.intern(key{kind: Pointer, pointee: pointee})
}

// qualified returns the unique type identical to t but with the given flags.
func (c *Context) qualified(t *Type, isConstant, isVolatile bool) *Type {
	return c.intern(key{kind: t.kind, signed: t.signed, width: t.width, pointee: t.pointee, isConstant: isConstant, isVolatile: isVolatile})
}

// ToConstant returns the unique type identical to t with isConstant set
// (invariant (ii); does not mutate t).
func (c *Context) ToConstant(t *Type) *Type { return c.qualified(t, true, t.isVolatile) }

// ToVolatile returns the unique type identical to t with isVolatile set.
func (c *Context) ToVolatile(t *Type) *Type { return c.qualified(t, t.isConstant, true) }

// ToNonConstant returns the unique type identical to t with isConstant cleared.
func (c *Context) ToNonConstant(t *Type) *Type { return c.qualified(t, false, t.isVolatile) }

// ToNonVolatile returns the unique type identical to t with isVolatile cleared.
func (c *Context) ToNonVolatile(t *Type) *Type { return c.qualified(t, t.isConstant, false) }
