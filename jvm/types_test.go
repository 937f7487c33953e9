package jvm

import "testing"

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind      Kind
		primitive bool
		integral  bool
		floating  bool
		wide      bool
	}{
		{KindBoolean, true, true, false, false},
		{KindByte, true, true, false, false},
		{KindChar, true, true, false, false},
		{KindShort, true, true, false, false},
		{KindInt, true, true, false, false},
		{KindLong, true, true, false, true},
		{KindFloat, true, false, true, false},
		{KindDouble, true, false, true, true},
		{KindObject, false, false, false, false},
		{KindArray, false, false, false, false},
		{KindVoid, false, false, false, false},
	}

	for _, tt := range tests {
		if got := tt.kind.IsPrimitive(); got != tt.primitive {
			t.Errorf("%s.IsPrimitive() = %v, want %v", tt.kind, got, tt.primitive)
		}
		if got := tt.kind.IsIntegral(); got != tt.integral {
			t.Errorf("%s.IsIntegral() = %v, want %v", tt.kind, got, tt.integral)
		}
		if got := tt.kind.IsFloating(); got != tt.floating {
			t.Errorf("%s.IsFloating() = %v, want %v", tt.kind, got, tt.floating)
		}
		if got := tt.kind.IsWide(); got != tt.wide {
			t.Errorf("%s.IsWide() = %v, want %v", tt.kind, got, tt.wide)
		}
	}
}

func TestKindBitWidth(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindBoolean, 1},
		{KindByte, 8},
		{KindChar, 16},
		{KindShort, 16},
		{KindInt, 32},
		{KindLong, 64},
		{KindFloat, 32},
		{KindDouble, 64},
		{KindObject, 0},
		{KindArray, 0},
	}

	for _, tt := range tests {
		if got := tt.kind.BitWidth(); got != tt.want {
			t.Errorf("%s.BitWidth() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestTypeRefSlotSize(t *testing.T) {
	if got := Long.SlotSize(); got != 2 {
		t.Errorf("Long.SlotSize() = %d, want 2", got)
	}
	if got := Double.SlotSize(); got != 2 {
		t.Errorf("Double.SlotSize() = %d, want 2", got)
	}
	if got := Int.SlotSize(); got != 1 {
		t.Errorf("Int.SlotSize() = %d, want 1", got)
	}
	if got := Object.SlotSize(); got != 1 {
		t.Errorf("Object.SlotSize() = %d, want 1", got)
	}
}

func TestTypeRefEquals(t *testing.T) {
	str := ObjectType("java/lang/String")

	tests := []struct {
		name string
		a, b *TypeRef
		want bool
	}{
		{"builtin identity", Int, Int, true},
		{"same primitive kind", Int, &TypeRef{Kind: KindInt, Name: "int"}, true},
		{"different primitives", Int, Long, false},
		{"same class", str, ObjectType("java/lang/String"), true},
		{"different classes", str, ObjectType("java/lang/Thread"), false},
		{"class vs primitive", str, Int, false},
		{"same array", ArrayOf(Int), ArrayOf(Int), true},
		{"different element", ArrayOf(Int), ArrayOf(Long), false},
		{"array vs element", ArrayOf(Int), Int, false},
	}

	for _, tt := range tests {
		if got := tt.a.Equals(tt.b); got != tt.want {
			t.Errorf("%s: Equals = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		typ  *TypeRef
		want string
	}{
		{Int, "int"},
		{Double, "double"},
		{Object, "java.lang.Object"},
		{ObjectType("java/lang/String"), "java.lang.String"},
		{ArrayOf(Int), "int[]"},
		{ArrayOf(ArrayOf(ObjectType("java/lang/String"))), "java.lang.String[][]"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
