package jnibind

// Ref is an opaque handle to a value owned by the runtime: an object, a
// class, an array or a string. The zero Ref is the null reference.
type Ref uintptr

// Ref makes a raw handle usable wherever a Referent is accepted.
func (r Ref) Ref() Ref {
	return r
}

// FieldID identifies a resolved field. The zero FieldID is invalid.
type FieldID uintptr

// MethodID identifies a resolved method or constructor. The zero MethodID is
// invalid.
type MethodID uintptr

// Referent is anything that can hand out the runtime handle it wraps.
type Referent interface {
	Ref() Ref
}

func refOf(r Referent) Ref {
	if r == nil {
		return 0
	}
	return r.Ref()
}

// Env is the per-thread execution context of the runtime, the native
// interface table of a JNIEnv. An Env must only be used on the thread it
// was obtained on.
//
// Values cross the interface in uint64 slots with the layout of a jvalue:
// primitives are encoded with the wazero api encoders for their kind,
// references are encoded with api.EncodeExternref.
type Env interface {
	FindClass(name string) Ref
	ExceptionCheck() bool
	ExceptionClear()

	NewGlobalRef(obj Ref) Ref
	DeleteGlobalRef(obj Ref)
	DeleteLocalRef(obj Ref)
	IsSameObject(a, b Ref) bool
	IsInstanceOf(obj, class Ref) bool
	GetObjectClass(obj Ref) Ref

	// PushLocalFrame returns 0 on success and a negative value when the
	// runtime could not reserve the frame.
	PushLocalFrame(capacity int32) int32
	PopLocalFrame(result Ref) Ref

	GetFieldID(class Ref, name, sig string) FieldID
	GetStaticFieldID(class Ref, name, sig string) FieldID
	GetMethodID(class Ref, name, sig string) MethodID
	GetStaticMethodID(class Ref, name, sig string) MethodID

	GetField(obj Ref, field FieldID, kind Kind) uint64
	SetField(obj Ref, field FieldID, kind Kind, value uint64)
	GetStaticField(class Ref, field FieldID, kind Kind) uint64
	SetStaticField(class Ref, field FieldID, kind Kind, value uint64)
	CallMethod(obj Ref, method MethodID, kind Kind, args []uint64) uint64
	CallStaticMethod(class Ref, method MethodID, kind Kind, args []uint64) uint64
	NewObject(class Ref, constructor MethodID, args []uint64) Ref

	GetArrayLength(array Ref) int32
	NewPrimitiveArray(kind Kind, length int32) Ref
	NewObjectArray(length int32, elementClass Ref, initial Ref) Ref
	GetObjectArrayElement(array Ref, index int32) Ref
	SetObjectArrayElement(array Ref, index int32, value Ref)
	// GetArrayRegion and SetArrayRegion copy len(buf) elements starting at
	// start. buf is a slice of the Go type matching the element kind, for
	// example []int32 for an int[] array.
	GetArrayRegion(array Ref, start int32, buf any)
	SetArrayRegion(array Ref, start int32, buf any)

	NewString(chars []uint16) Ref
	GetStringLength(str Ref) int32
	GetStringRegion(str Ref, start int32, buf []uint16)
}
