package types

import (
	"fmt"

	"ifjc/internal/token"
)

// Type is a static type tag. The language has no composite types, so a tag is
// all the checker needs.
type Type int

const (
	Unknown Type = iota
	Int
	Double
	String
	Bool
	Nil
	IntNil
	DoubleNil
	StringNil
	BoolNil
	Void
	Function
)

var typeNames = map[Type]string{
	Unknown:   "unknown",
	Int:       "Int",
	Double:    "Double",
	String:    "String",
	Bool:      "Bool",
	Nil:       "nil",
	IntNil:    "Int?",
	DoubleNil: "Double?",
	StringNil: "String?",
	BoolNil:   "Bool?",
	Void:      "Void",
	Function:  "function",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// FromToken maps a type keyword to its tag.
func FromToken(k token.Kind) (Type, bool) {
	switch k {
	case token.IntType:
		return Int, true
	case token.DoubleType:
		return Double, true
	case token.StringType:
		return String, true
	case token.BoolType:
		return Bool, true
	case token.IntNilType:
		return IntNil, true
	case token.DoubleNilType:
		return DoubleNil, true
	case token.StringNilType:
		return StringNil, true
	case token.BoolNilType:
		return BoolNil, true
	}
	return Unknown, false
}

func IsNilable(t Type) bool {
	switch t {
	case IntNil, DoubleNil, StringNil, BoolNil:
		return true
	}
	return false
}

// IsValue reports whether t can be held by a variable.
func IsValue(t Type) bool {
	switch t {
	case Void, Function, Nil:
		return false
	}
	return true
}

// Base strips the nilable marker: Int? -> Int. Other tags are returned as is.
func Base(t Type) Type {
	switch t {
	case IntNil:
		return Int
	case DoubleNil:
		return Double
	case StringNil:
		return String
	case BoolNil:
		return Bool
	}
	return t
}

// Optional returns the nilable form of a base type: Int -> Int?.
func Optional(t Type) Type {
	switch t {
	case Int:
		return IntNil
	case Double:
		return DoubleNil
	case String:
		return StringNil
	case Bool:
		return BoolNil
	}
	return t
}

// Assignable reports whether a value of type src can be stored in a slot of
// type dst without conversion.
func Assignable(dst, src Type) bool {
	if dst == Unknown || src == Unknown {
		return true
	}
	if dst == src {
		return true
	}
	if !IsNilable(dst) {
		return false
	}
	return src == Nil || Base(dst) == src
}

// Promotes reports whether an integer constant of type src must be converted
// with INT2FLOAT before it is stored in a slot of type dst.
func Promotes(dst, src Type, intConst bool) bool {
	return intConst && src == Int && Base(dst) == Double
}

// Join returns the narrowest type that both a and b are assignable to. It is
// used to merge argument types seen at different call sites of a function that
// has not been defined yet.
func Join(a, b Type) (Type, bool) {
	switch {
	case a == b:
		return a, true
	case a == Unknown:
		return b, true
	case b == Unknown:
		return a, true
	case a == Nil && IsValue(b):
		return Optional(Base(b)), true
	case b == Nil && IsValue(a):
		return Optional(Base(a)), true
	case IsNilable(a) && Base(a) == b:
		return a, true
	case IsNilable(b) && Base(b) == a:
		return b, true
	}
	return Unknown, false
}
