package ir

import (
	"fmt"
	"strings"
)

// Type is the closed algebra of SSA value types. A new variant must be added
// to every switch over Type; the synthesis and tracking code relies on the
// set being exhaustive.
type Type interface {
	// ContainsSliceElement reports whether the type is a slice or contains
	// one anywhere in its structure.
	ContainsSliceElement() bool
	String() string

	typ()
}

type NumericKind int

const (
	NumericField NumericKind = iota
	NumericUnsigned
	NumericSigned
)

// NumericType is a scalar: the native field or a sized integer.
type NumericType struct {
	Kind    NumericKind
	BitSize uint32
}

// ArrayType is a statically sized sequence of rows, each row being one
// instance of ElementTypes.
type ArrayType struct {
	ElementTypes []Type
	Length       int
}

// SliceType is a dynamically sized sequence; concrete instances pair a
// runtime length with contents.
type SliceType struct {
	ElementTypes []Type
}

type ReferenceType struct {
	Element Type
}

type FunctionType struct{}

func (*NumericType) typ()   {}
func (*ArrayType) typ()     {}
func (*SliceType) typ()     {}
func (*ReferenceType) typ() {}
func (*FunctionType) typ()  {}

// FieldType returns the native field scalar type.
func FieldType() Type {
	return &NumericType{Kind: NumericField}
}

func Unsigned(bits uint32) Type {
	return &NumericType{Kind: NumericUnsigned, BitSize: bits}
}

func BoolType() Type {
	return Unsigned(1)
}

func (*NumericType) ContainsSliceElement() bool { return false }

func (t *ArrayType) ContainsSliceElement() bool {
	return anyContainsSlice(t.ElementTypes)
}

func (*SliceType) ContainsSliceElement() bool { return true }

func (t *ReferenceType) ContainsSliceElement() bool {
	return t.Element.ContainsSliceElement()
}

func (*FunctionType) ContainsSliceElement() bool { return false }

func anyContainsSlice(types []Type) bool {
	for _, t := range types {
		if t.ContainsSliceElement() {
			return true
		}
	}
	return false
}

// ContainsNestedSlice reports whether the type holds a slice *inside* a
// sequence, i.e. whether padding could ever be required for it.
func ContainsNestedSlice(t Type) bool {
	switch t := t.(type) {
	case *SliceType:
		return anyContainsSlice(t.ElementTypes)
	case *ArrayType:
		return anyContainsSlice(t.ElementTypes)
	default:
		return false
	}
}

func (t *NumericType) String() string {
	switch t.Kind {
	case NumericField:
		return "Field"
	case NumericUnsigned:
		return fmt.Sprintf("u%d", t.BitSize)
	case NumericSigned:
		return fmt.Sprintf("i%d", t.BitSize)
	default:
		panic(fmt.Sprintf("unknown numeric kind %d", t.Kind))
	}
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("[%s; %d]", typesToString(t.ElementTypes), t.Length)
}

func (t *SliceType) String() string {
	return fmt.Sprintf("[%s]", typesToString(t.ElementTypes))
}

func (t *ReferenceType) String() string {
	return "&mut " + t.Element.String()
}

func (*FunctionType) String() string {
	return "function"
}

func typesToString(types []Type) string {
	s := make([]string, len(types))
	for i, t := range types {
		s[i] = t.String()
	}
	return strings.Join(s, ", ")
}
