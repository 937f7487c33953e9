package jvm

import (
	"fmt"
	"strings"
)

// ParseDescriptor parses a field descriptor ("I", "Ljava/lang/String;",
// "[[D") into a type reference. The whole string must be consumed.
func ParseDescriptor(desc string) (*TypeRef, error) {
	t, rest, err := parseOne(desc)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("jvm: invalid descriptor %q: trailing %q", desc, rest)
	}
	return t, nil
}

// ParseMethodDescriptor parses a method descriptor ("(IJ)V") into its
// parameter types and return type.
func ParseMethodDescriptor(desc string) ([]*TypeRef, *TypeRef, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, nil, fmt.Errorf("jvm: invalid method descriptor %q: missing (", desc)
	}
	rest := desc[1:]

	var params []*TypeRef
	for !strings.HasPrefix(rest, ")") {
		if rest == "" {
			return nil, nil, fmt.Errorf("jvm: invalid method descriptor %q: missing )", desc)
		}
		t, r, err := parseOne(rest)
		if err != nil {
			return nil, nil, fmt.Errorf("jvm: invalid method descriptor %q: %w", desc, err)
		}
		params = append(params, t)
		rest = r
	}

	ret, rest, err := parseOne(rest[1:])
	if err != nil {
		return nil, nil, fmt.Errorf("jvm: invalid method descriptor %q: %w", desc, err)
	}
	if rest != "" {
		return nil, nil, fmt.Errorf("jvm: invalid method descriptor %q: trailing %q", desc, rest)
	}
	return params, ret, nil
}

// parseOne consumes a single type from the front of a descriptor and
// returns the remainder.
func parseOne(desc string) (*TypeRef, string, error) {
	if desc == "" {
		return nil, "", fmt.Errorf("jvm: empty descriptor")
	}
	switch desc[0] {
	case 'Z':
		return Boolean, desc[1:], nil
	case 'B':
		return Byte, desc[1:], nil
	case 'C':
		return Char, desc[1:], nil
	case 'S':
		return Short, desc[1:], nil
	case 'I':
		return Int, desc[1:], nil
	case 'J':
		return Long, desc[1:], nil
	case 'F':
		return Float, desc[1:], nil
	case 'D':
		return Double, desc[1:], nil
	case 'V':
		return Void, desc[1:], nil
	case 'L':
		end := strings.IndexByte(desc, ';')
		if end < 0 {
			return nil, "", fmt.Errorf("jvm: invalid descriptor %q: unterminated class name", desc)
		}
		name := desc[1:end]
		if name == "" {
			return nil, "", fmt.Errorf("jvm: invalid descriptor %q: empty class name", desc)
		}
		if name == Object.Name {
			return Object, desc[end+1:], nil
		}
		return ObjectType(name), desc[end+1:], nil
	case '[':
		elem, rest, err := parseOne(desc[1:])
		if err != nil {
			return nil, "", err
		}
		if elem.Kind == KindVoid {
			return nil, "", fmt.Errorf("jvm: invalid descriptor %q: array of void", desc)
		}
		return ArrayOf(elem), rest, nil
	default:
		return nil, "", fmt.Errorf("jvm: invalid descriptor %q: unknown tag %q", desc, desc[0])
	}
}

// Descriptor returns the JVM descriptor form of a type reference,
// the inverse of ParseDescriptor.
func (t *TypeRef) Descriptor() string {
	switch t.Kind {
	case KindBoolean:
		return "Z"
	case KindByte:
		return "B"
	case KindChar:
		return "C"
	case KindShort:
		return "S"
	case KindInt:
		return "I"
	case KindLong:
		return "J"
	case KindFloat:
		return "F"
	case KindDouble:
		return "D"
	case KindVoid:
		return "V"
	case KindObject:
		return "L" + t.Name + ";"
	case KindArray:
		return "[" + t.Elem.Descriptor()
	default:
		return "?"
	}
}
