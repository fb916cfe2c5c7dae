package jnibind

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

type primitiveType struct {
	kind   Kind
	code   string
	goType string
	native api.ValueType
}

var (
	VoidType Type = &primitiveType{kind: KindVoid, code: "V", goType: "Void"}
	Boolean  Type = &primitiveType{kind: KindBoolean, code: "Z", goType: "bool", native: api.ValueTypeI32}
	Byte     Type = &primitiveType{kind: KindByte, code: "B", goType: "int8", native: api.ValueTypeI32}
	Char     Type = &primitiveType{kind: KindChar, code: "C", goType: "uint16", native: api.ValueTypeI32}
	Short    Type = &primitiveType{kind: KindShort, code: "S", goType: "int16", native: api.ValueTypeI32}
	Int      Type = &primitiveType{kind: KindInt, code: "I", goType: "int32", native: api.ValueTypeI32}
	Float    Type = &primitiveType{kind: KindFloat, code: "F", goType: "float32", native: api.ValueTypeF32}
	Long     Type = &primitiveType{kind: KindLong, code: "J", goType: "int64", native: api.ValueTypeI64}
	Double   Type = &primitiveType{kind: KindDouble, code: "D", goType: "float64", native: api.ValueTypeF64}
)

// PrimitiveTypes lists the eight primitive types in signature code order of
// the protocol (Z, B, C, S, I, F, J, D).
var PrimitiveTypes = []Type{Boolean, Byte, Char, Short, Int, Float, Long, Double}

func (pt *primitiveType) isType() {}

func (pt *primitiveType) Name() string {
	return pt.kind.String()
}

func (pt *primitiveType) Kind() Kind {
	return pt.kind
}

func (pt *primitiveType) Signature() string {
	return pt.code
}

func (pt *primitiveType) GoType() string {
	return pt.goType
}

// NativeType is the wire slot class of the type. Void has no slot and
// returns 0.
func (pt *primitiveType) NativeType() api.ValueType {
	return pt.native
}

func (pt *primitiveType) ToWireType(o any) (uint64, error) {
	switch pt.kind {
	case KindVoid:
		return 0, nil
	case KindBoolean:
		val, ok := o.(bool)
		if !ok {
			break
		}
		if val {
			return api.EncodeI32(1), nil
		}
		return api.EncodeI32(0), nil
	case KindByte:
		val, ok := o.(int8)
		if !ok {
			break
		}
		return api.EncodeI32(int32(val)), nil
	case KindChar:
		val, ok := o.(uint16)
		if !ok {
			break
		}
		return api.EncodeU32(uint32(val)), nil
	case KindShort:
		val, ok := o.(int16)
		if !ok {
			break
		}
		return api.EncodeI32(int32(val)), nil
	case KindInt:
		val, ok := o.(int32)
		if !ok {
			break
		}
		return api.EncodeI32(val), nil
	case KindFloat:
		val, ok := o.(float32)
		if !ok {
			break
		}
		return api.EncodeF32(val), nil
	case KindLong:
		val, ok := o.(int64)
		if !ok {
			break
		}
		return api.EncodeI64(val), nil
	case KindDouble:
		val, ok := o.(float64)
		if !ok {
			break
		}
		return api.EncodeF64(val), nil
	}

	return 0, fmt.Errorf("value must be of type %s, is %T: %w", pt.goType, o, ErrArgument)
}

func (pt *primitiveType) FromWireType(value uint64) any {
	switch pt.kind {
	case KindBoolean:
		// Only the low byte of a jboolean slot is defined.
		return uint8(value) != 0
	case KindByte:
		return int8(api.DecodeI32(value))
	case KindChar:
		return uint16(api.DecodeU32(value))
	case KindShort:
		return int16(api.DecodeI32(value))
	case KindInt:
		return api.DecodeI32(value)
	case KindFloat:
		return api.DecodeF32(value)
	case KindLong:
		return int64(value)
	case KindDouble:
		return api.DecodeF64(value)
	}

	return Void{}
}
