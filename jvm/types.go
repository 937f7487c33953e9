// Package jvm models the JVM type categories that local-variable
// reconstruction depends on: the primitive kinds with their slot and
// bit widths, reference and array types, and the directional type
// compatibility rules used when deciding whether a slot access can
// reuse an existing variable record.
package jvm

import "strings"

// Kind is a JVM type category. Every type reference resolves to exactly
// one kind; the primitive kinds carry fixed bit widths.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindObject
	KindArray
	KindVoid
)

// kindNames holds the source-level spelling of each kind.
var kindNames = [...]string{
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindChar:    "char",
	KindShort:   "short",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindObject:  "object",
	KindArray:   "array",
	KindVoid:    "void",
}

// kindWidths holds the bit width of each primitive kind. Reference
// kinds and void have no width.
var kindWidths = [...]int{
	KindBoolean: 1,
	KindByte:    8,
	KindChar:    16,
	KindShort:   16,
	KindInt:     32,
	KindLong:    64,
	KindFloat:   32,
	KindDouble:  64,
	KindObject:  0,
	KindArray:   0,
	KindVoid:    0,
}

// String returns the source-level spelling of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsPrimitive returns true for the eight primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k <= KindDouble
}

// IsIntegral returns true for boolean, byte, char, short, int and long.
func (k Kind) IsIntegral() bool {
	return k <= KindLong
}

// IsFloating returns true for float and double.
func (k Kind) IsFloating() bool {
	return k == KindFloat || k == KindDouble
}

// IsWide returns true for the kinds that occupy two local-variable slots.
func (k Kind) IsWide() bool {
	return k == KindLong || k == KindDouble
}

// BitWidth returns the bit width of a primitive kind, or 0 for
// reference kinds and void.
func (k Kind) BitWidth() int {
	if int(k) < len(kindWidths) {
		return kindWidths[k]
	}
	return 0
}

// ----------------------------------------------------------------------------
// Type references
// ----------------------------------------------------------------------------

// TypeRef is a resolved type reference. Primitives carry only their
// kind; object types carry the internal class name (slash-separated);
// array types chain to their element type.
type TypeRef struct {
	Kind Kind
	Name string   // internal name for object kinds, keyword otherwise
	Elem *TypeRef // element type for array kinds
}

// Builtin type references. The reconstruction passes compare inferred
// categories against these by identity, so callers should use them
// rather than constructing fresh primitive TypeRefs.
var (
	Boolean = &TypeRef{Kind: KindBoolean, Name: "boolean"}
	Byte    = &TypeRef{Kind: KindByte, Name: "byte"}
	Char    = &TypeRef{Kind: KindChar, Name: "char"}
	Short   = &TypeRef{Kind: KindShort, Name: "short"}
	Int     = &TypeRef{Kind: KindInt, Name: "int"}
	Long    = &TypeRef{Kind: KindLong, Name: "long"}
	Float   = &TypeRef{Kind: KindFloat, Name: "float"}
	Double  = &TypeRef{Kind: KindDouble, Name: "double"}
	Object  = &TypeRef{Kind: KindObject, Name: "java/lang/Object"}
	Void    = &TypeRef{Kind: KindVoid, Name: "void"}
)

// ObjectType returns a type reference for an internal class name such
// as "java/lang/String".
func ObjectType(internalName string) *TypeRef {
	return &TypeRef{Kind: KindObject, Name: internalName}
}

// ArrayOf returns a type reference for an array of elem.
func ArrayOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindArray, Elem: elem}
}

// IsPrimitive returns true when the referenced type is a primitive.
func (t *TypeRef) IsPrimitive() bool {
	return t.Kind.IsPrimitive()
}

// IsReference returns true for object and array types.
func (t *TypeRef) IsReference() bool {
	return t.Kind == KindObject || t.Kind == KindArray
}

// SlotSize returns the number of local-variable slots the type
// occupies: 2 for long and double, 1 for everything else.
func (t *TypeRef) SlotSize() int {
	if t.Kind.IsWide() {
		return 2
	}
	return 1
}

// Equals reports structural equality of two type references.
func (t *TypeRef) Equals(other *TypeRef) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil || t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindObject:
		return t.Name == other.Name
	case KindArray:
		return t.Elem.Equals(other.Elem)
	default:
		return true
	}
}

// String returns the Java source spelling: "int", "java.lang.String",
// "long[]".
func (t *TypeRef) String() string {
	switch t.Kind {
	case KindObject:
		return strings.ReplaceAll(t.Name, "/", ".")
	case KindArray:
		return t.Elem.String() + "[]"
	default:
		return t.Kind.String()
	}
}
