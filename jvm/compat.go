package jvm

// Assignable reports whether a value of type source can be assigned to
// a location of type target without conversion. This is the shallow
// query the reconstruction passes need: identity, and the fact that
// every reference type is assignable to java/lang/Object. It does not
// walk class hierarchies.
func Assignable(target, source *TypeRef) bool {
	if target.Equals(source) {
		return true
	}
	if target.Kind == KindObject && target.Name == Object.Name {
		return source.IsReference()
	}
	if target.Kind == KindArray && source.Kind == KindArray {
		return Assignable(target.Elem, source.Elem)
	}
	return false
}

// Compatible reports whether a value of type source may occupy a
// variable of type target. The relation is directional and
// deliberately not transitive: byte fits an int variable and an int
// fits a long variable, but Compatible is asked pairwise and never
// chains the two.
//
// Rules, in order:
//  1. a primitive and a reference type are never compatible;
//  2. assignable types are compatible;
//  3. an integral target accepts the generic int category outright,
//     and any integral source of lesser or equal bit width;
//  4. a floating target accepts a floating source of lesser or equal
//     bit width;
//  5. nothing else is compatible.
func Compatible(target, source *TypeRef) bool {
	if target.IsPrimitive() != source.IsPrimitive() {
		return false
	}
	if Assignable(target, source) {
		return true
	}

	tk, sk := target.Kind, source.Kind
	if tk.IsIntegral() {
		if sk == KindInt {
			return true
		}
		return sk.IsIntegral() && sk.BitWidth() <= tk.BitWidth()
	}
	if tk.IsFloating() {
		return sk.IsFloating() && sk.BitWidth() <= tk.BitWidth()
	}
	return false
}
