package jnitest

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/jerbob92/jnibind"
)

// Call is the invocation of a fake method.
type Call struct {
	Env *Env

	// This is the receiver, nil for static methods.
	This  *Object
	Class *Class
	Args  []uint64

	params []jnibind.Kind
}

// arg returns slot i after checking that the declared parameter travels in
// the slot class of typ. Reading a parameter as the wrong type is a bug in
// the fake method and panics.
func (c *Call) arg(i int, typ jnibind.Type) uint64 {
	if i < len(c.params) {
		if declared := slotType(c.params[i]); declared != typ.NativeType() {
			panic(fmt.Sprintf("argument %d is a %s in a %s slot, read as %s (%s slot)",
				i, c.params[i], api.ValueTypeName(declared), typ.Name(), api.ValueTypeName(typ.NativeType())))
		}
	}
	return c.Args[i]
}

// slotType returns the wire slot class values of kind travel in.
func slotType(kind jnibind.Kind) api.ValueType {
	if kind.IsPrimitive() {
		return jnibind.PrimitiveTypes[kind-jnibind.KindBoolean].NativeType()
	}
	return jnibind.ObjectClass.NativeType()
}

func (c *Call) Bool(i int) bool {
	return uint8(c.arg(i, jnibind.Boolean)) != 0
}

func (c *Call) Byte(i int) int8 {
	return int8(api.DecodeI32(c.arg(i, jnibind.Byte)))
}

func (c *Call) Char(i int) uint16 {
	return uint16(api.DecodeU32(c.arg(i, jnibind.Char)))
}

func (c *Call) Short(i int) int16 {
	return int16(api.DecodeI32(c.arg(i, jnibind.Short)))
}

func (c *Call) Int(i int) int32 {
	return api.DecodeI32(c.arg(i, jnibind.Int))
}

func (c *Call) Float(i int) float32 {
	return api.DecodeF32(c.arg(i, jnibind.Float))
}

func (c *Call) Long(i int) int64 {
	return int64(c.arg(i, jnibind.Long))
}

func (c *Call) Double(i int) float64 {
	return api.DecodeF64(c.arg(i, jnibind.Double))
}

// Object returns the object the reference argument i points to.
func (c *Call) Object(i int) *Object {
	return c.Env.Deref(decodeRef(c.arg(i, jnibind.ObjectClass)))
}

// Return hands o back to the caller as a local reference.
func (c *Call) Return(o *Object) uint64 {
	return Ref(c.Env.NewLocalRef(o))
}

// Throw makes exceptionClass pending on the calling thread.
func (c *Call) Throw(exceptionClass string, message string) {
	c.Env.vm.mu.Lock()
	defer c.Env.vm.mu.Unlock()
	c.Env.throw(exceptionClass, message)
}

// Encoders for method results.

func Bool(v bool) uint64 {
	if v {
		return api.EncodeI32(1)
	}
	return api.EncodeI32(0)
}

func Byte(v int8) uint64 {
	return api.EncodeI32(int32(v))
}

func Char(v uint16) uint64 {
	return api.EncodeU32(uint32(v))
}

func Short(v int16) uint64 {
	return api.EncodeI32(int32(v))
}

func Int(v int32) uint64 {
	return api.EncodeI32(v)
}

func Float(v float32) uint64 {
	return api.EncodeF32(v)
}

func Long(v int64) uint64 {
	return api.EncodeI64(v)
}

func Double(v float64) uint64 {
	return api.EncodeF64(v)
}

func Ref(ref jnibind.Ref) uint64 {
	return encodeRef(ref)
}

// Void is the result of methods returning void.
const Void uint64 = 0
