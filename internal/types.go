package jnibind

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Kind is the value category of a declared type. Every field, parameter and
// return value belongs to exactly one of the nine value categories, or to
// KindVoid in return position.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBoolean
	KindByte
	KindChar
	KindShort
	KindInt
	KindFloat
	KindLong
	KindDouble
	KindObject
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindChar:    "char",
	KindShort:   "short",
	KindInt:     "int",
	KindFloat:   "float",
	KindLong:    "long",
	KindDouble:  "double",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsPrimitive reports whether values of this kind travel as raw primitive
// values instead of object handles.
func (k Kind) IsPrimitive() bool {
	return k >= KindBoolean && k <= KindDouble
}

// Type is a declared value type: one of the primitive types, Void, or a
// *Class (which includes array classes created with ArrayOf).
type Type interface {
	Name() string
	Kind() Kind
	Signature() string
	GoType() string
	NativeType() api.ValueType
	ToWireType(o any) (uint64, error)
	FromWireType(wt uint64) any

	isType()
}

// Void is the value returned by methods declared with a void return type.
type Void struct{}

// Primitive is the set of Go types that carry primitive runtime values.
type Primitive interface {
	bool | int8 | uint16 | int16 | int32 | float32 | int64 | float64
}

// Value is the set of Go types a field, parameter or return value can have.
type Value interface {
	Primitive | *Object
}

// Result is the set of Go types a method can return.
type Result interface {
	Value | Void
}

// PrimitiveTypeOf returns the declared type matching the Go type T.
func PrimitiveTypeOf[T Primitive]() Type {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Boolean
	case int8:
		return Byte
	case uint16:
		return Char
	case int16:
		return Short
	case int32:
		return Int
	case float32:
		return Float
	case int64:
		return Long
	case float64:
		return Double
	}

	panic(fmt.Errorf("no primitive type for %T", zero))
}
