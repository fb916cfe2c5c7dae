//go:build cgo && jni

package native

/*
#include "jni_helpers.h"
*/
import "C"

import (
	"unsafe"

	"github.com/tetratelabs/wazero/api"

	"github.com/jerbob92/jnibind"
)

// Env wraps the JNIEnv of one attached thread.
type Env struct {
	env *C.JNIEnv
}

var _ jnibind.Env = (*Env)(nil)

// WrapEnv wraps a JNIEnv pointer, for example the one handed to a native
// method implementation.
func WrapEnv(env unsafe.Pointer) *Env {
	return &Env{env: (*C.JNIEnv)(env)}
}

func (e *Env) FindClass(name string) jnibind.Ref {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return refOf(C.jobject(C.findClass(e.env, cName)))
}

func (e *Env) ExceptionCheck() bool {
	return C.exceptionCheck(e.env) != C.JNI_FALSE
}

func (e *Env) ExceptionClear() {
	C.exceptionClear(e.env)
}

func (e *Env) NewGlobalRef(obj jnibind.Ref) jnibind.Ref {
	return refOf(C.newGlobalRef(e.env, jobject(obj)))
}

func (e *Env) DeleteGlobalRef(obj jnibind.Ref) {
	C.deleteGlobalRef(e.env, jobject(obj))
}

func (e *Env) DeleteLocalRef(obj jnibind.Ref) {
	C.deleteLocalRef(e.env, jobject(obj))
}

func (e *Env) IsSameObject(a, b jnibind.Ref) bool {
	return C.isSameObject(e.env, jobject(a), jobject(b)) != C.JNI_FALSE
}

func (e *Env) IsInstanceOf(obj, class jnibind.Ref) bool {
	return C.isInstanceOf(e.env, jobject(obj), jclass(class)) != C.JNI_FALSE
}

func (e *Env) GetObjectClass(obj jnibind.Ref) jnibind.Ref {
	return refOf(C.jobject(C.getObjectClass(e.env, jobject(obj))))
}

func (e *Env) PushLocalFrame(capacity int32) int32 {
	return int32(C.pushLocalFrame(e.env, C.jint(capacity)))
}

func (e *Env) PopLocalFrame(result jnibind.Ref) jnibind.Ref {
	return refOf(C.popLocalFrame(e.env, jobject(result)))
}

func (e *Env) memberNames(name, sig string) (*C.char, *C.char, func()) {
	cName := C.CString(name)
	cSig := C.CString(sig)
	return cName, cSig, func() {
		C.free(unsafe.Pointer(cName))
		C.free(unsafe.Pointer(cSig))
	}
}

func (e *Env) GetFieldID(class jnibind.Ref, name, sig string) jnibind.FieldID {
	cName, cSig, free := e.memberNames(name, sig)
	defer free()
	return jnibind.FieldID(uintptr(unsafe.Pointer(C.getFieldID(e.env, jclass(class), cName, cSig))))
}

func (e *Env) GetStaticFieldID(class jnibind.Ref, name, sig string) jnibind.FieldID {
	cName, cSig, free := e.memberNames(name, sig)
	defer free()
	return jnibind.FieldID(uintptr(unsafe.Pointer(C.getStaticFieldID(e.env, jclass(class), cName, cSig))))
}

func (e *Env) GetMethodID(class jnibind.Ref, name, sig string) jnibind.MethodID {
	cName, cSig, free := e.memberNames(name, sig)
	defer free()
	return jnibind.MethodID(uintptr(unsafe.Pointer(C.getMethodID(e.env, jclass(class), cName, cSig))))
}

func (e *Env) GetStaticMethodID(class jnibind.Ref, name, sig string) jnibind.MethodID {
	cName, cSig, free := e.memberNames(name, sig)
	defer free()
	return jnibind.MethodID(uintptr(unsafe.Pointer(C.getStaticMethodID(e.env, jclass(class), cName, cSig))))
}

func (e *Env) GetField(obj jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind) uint64 {
	o, f := jobject(obj), jfieldID(field)
	switch kind {
	case jnibind.KindBoolean:
		return encodeBoolean(C.getBooleanField(e.env, o, f))
	case jnibind.KindByte:
		return api.EncodeI32(int32(C.getByteField(e.env, o, f)))
	case jnibind.KindChar:
		return api.EncodeU32(uint32(C.getCharField(e.env, o, f)))
	case jnibind.KindShort:
		return api.EncodeI32(int32(C.getShortField(e.env, o, f)))
	case jnibind.KindInt:
		return api.EncodeI32(int32(C.getIntField(e.env, o, f)))
	case jnibind.KindFloat:
		return api.EncodeF32(float32(C.getFloatField(e.env, o, f)))
	case jnibind.KindLong:
		return api.EncodeI64(int64(C.getLongField(e.env, o, f)))
	case jnibind.KindDouble:
		return api.EncodeF64(float64(C.getDoubleField(e.env, o, f)))
	case jnibind.KindObject:
		return encodeObject(C.getObjectField(e.env, o, f))
	}
	return 0
}

func (e *Env) SetField(obj jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind, value uint64) {
	o, f := jobject(obj), jfieldID(field)
	switch kind {
	case jnibind.KindBoolean:
		C.setBooleanField(e.env, o, f, jboolean(uint8(value) != 0))
	case jnibind.KindByte:
		C.setByteField(e.env, o, f, C.jbyte(api.DecodeI32(value)))
	case jnibind.KindChar:
		C.setCharField(e.env, o, f, C.jchar(api.DecodeU32(value)))
	case jnibind.KindShort:
		C.setShortField(e.env, o, f, C.jshort(api.DecodeI32(value)))
	case jnibind.KindInt:
		C.setIntField(e.env, o, f, C.jint(api.DecodeI32(value)))
	case jnibind.KindFloat:
		C.setFloatField(e.env, o, f, C.jfloat(api.DecodeF32(value)))
	case jnibind.KindLong:
		C.setLongField(e.env, o, f, C.jlong(int64(value)))
	case jnibind.KindDouble:
		C.setDoubleField(e.env, o, f, C.jdouble(api.DecodeF64(value)))
	case jnibind.KindObject:
		C.setObjectField(e.env, o, f, decodeObject(value))
	}
}

func (e *Env) GetStaticField(class jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind) uint64 {
	c, f := jclass(class), jfieldID(field)
	switch kind {
	case jnibind.KindBoolean:
		return encodeBoolean(C.getStaticBooleanField(e.env, c, f))
	case jnibind.KindByte:
		return api.EncodeI32(int32(C.getStaticByteField(e.env, c, f)))
	case jnibind.KindChar:
		return api.EncodeU32(uint32(C.getStaticCharField(e.env, c, f)))
	case jnibind.KindShort:
		return api.EncodeI32(int32(C.getStaticShortField(e.env, c, f)))
	case jnibind.KindInt:
		return api.EncodeI32(int32(C.getStaticIntField(e.env, c, f)))
	case jnibind.KindFloat:
		return api.EncodeF32(float32(C.getStaticFloatField(e.env, c, f)))
	case jnibind.KindLong:
		return api.EncodeI64(int64(C.getStaticLongField(e.env, c, f)))
	case jnibind.KindDouble:
		return api.EncodeF64(float64(C.getStaticDoubleField(e.env, c, f)))
	case jnibind.KindObject:
		return encodeObject(C.getStaticObjectField(e.env, c, f))
	}
	return 0
}

func (e *Env) SetStaticField(class jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind, value uint64) {
	c, f := jclass(class), jfieldID(field)
	switch kind {
	case jnibind.KindBoolean:
		C.setStaticBooleanField(e.env, c, f, jboolean(uint8(value) != 0))
	case jnibind.KindByte:
		C.setStaticByteField(e.env, c, f, C.jbyte(api.DecodeI32(value)))
	case jnibind.KindChar:
		C.setStaticCharField(e.env, c, f, C.jchar(api.DecodeU32(value)))
	case jnibind.KindShort:
		C.setStaticShortField(e.env, c, f, C.jshort(api.DecodeI32(value)))
	case jnibind.KindInt:
		C.setStaticIntField(e.env, c, f, C.jint(api.DecodeI32(value)))
	case jnibind.KindFloat:
		C.setStaticFloatField(e.env, c, f, C.jfloat(api.DecodeF32(value)))
	case jnibind.KindLong:
		C.setStaticLongField(e.env, c, f, C.jlong(int64(value)))
	case jnibind.KindDouble:
		C.setStaticDoubleField(e.env, c, f, C.jdouble(api.DecodeF64(value)))
	case jnibind.KindObject:
		C.setStaticObjectField(e.env, c, f, decodeObject(value))
	}
}

func (e *Env) CallMethod(obj jnibind.Ref, method jnibind.MethodID, kind jnibind.Kind, args []uint64) uint64 {
	o, m, a := jobject(obj), jmethodID(method), jvalues(args)
	switch kind {
	case jnibind.KindVoid:
		C.callVoidMethod(e.env, o, m, a)
	case jnibind.KindBoolean:
		return encodeBoolean(C.callBooleanMethod(e.env, o, m, a))
	case jnibind.KindByte:
		return api.EncodeI32(int32(C.callByteMethod(e.env, o, m, a)))
	case jnibind.KindChar:
		return api.EncodeU32(uint32(C.callCharMethod(e.env, o, m, a)))
	case jnibind.KindShort:
		return api.EncodeI32(int32(C.callShortMethod(e.env, o, m, a)))
	case jnibind.KindInt:
		return api.EncodeI32(int32(C.callIntMethod(e.env, o, m, a)))
	case jnibind.KindFloat:
		return api.EncodeF32(float32(C.callFloatMethod(e.env, o, m, a)))
	case jnibind.KindLong:
		return api.EncodeI64(int64(C.callLongMethod(e.env, o, m, a)))
	case jnibind.KindDouble:
		return api.EncodeF64(float64(C.callDoubleMethod(e.env, o, m, a)))
	case jnibind.KindObject:
		return encodeObject(C.callObjectMethod(e.env, o, m, a))
	}
	return 0
}

func (e *Env) CallStaticMethod(class jnibind.Ref, method jnibind.MethodID, kind jnibind.Kind, args []uint64) uint64 {
	c, m, a := jclass(class), jmethodID(method), jvalues(args)
	switch kind {
	case jnibind.KindVoid:
		C.callStaticVoidMethod(e.env, c, m, a)
	case jnibind.KindBoolean:
		return encodeBoolean(C.callStaticBooleanMethod(e.env, c, m, a))
	case jnibind.KindByte:
		return api.EncodeI32(int32(C.callStaticByteMethod(e.env, c, m, a)))
	case jnibind.KindChar:
		return api.EncodeU32(uint32(C.callStaticCharMethod(e.env, c, m, a)))
	case jnibind.KindShort:
		return api.EncodeI32(int32(C.callStaticShortMethod(e.env, c, m, a)))
	case jnibind.KindInt:
		return api.EncodeI32(int32(C.callStaticIntMethod(e.env, c, m, a)))
	case jnibind.KindFloat:
		return api.EncodeF32(float32(C.callStaticFloatMethod(e.env, c, m, a)))
	case jnibind.KindLong:
		return api.EncodeI64(int64(C.callStaticLongMethod(e.env, c, m, a)))
	case jnibind.KindDouble:
		return api.EncodeF64(float64(C.callStaticDoubleMethod(e.env, c, m, a)))
	case jnibind.KindObject:
		return encodeObject(C.callStaticObjectMethod(e.env, c, m, a))
	}
	return 0
}

func (e *Env) NewObject(class jnibind.Ref, constructor jnibind.MethodID, args []uint64) jnibind.Ref {
	return refOf(C.newObject(e.env, jclass(class), jmethodID(constructor), jvalues(args)))
}

func (e *Env) GetArrayLength(array jnibind.Ref) int32 {
	return int32(C.getArrayLength(e.env, jarray(array)))
}

func (e *Env) NewPrimitiveArray(kind jnibind.Kind, length int32) jnibind.Ref {
	n := C.jsize(length)
	var array C.jarray
	switch kind {
	case jnibind.KindBoolean:
		array = C.newBooleanArray(e.env, n)
	case jnibind.KindByte:
		array = C.newByteArray(e.env, n)
	case jnibind.KindChar:
		array = C.newCharArray(e.env, n)
	case jnibind.KindShort:
		array = C.newShortArray(e.env, n)
	case jnibind.KindInt:
		array = C.newIntArray(e.env, n)
	case jnibind.KindFloat:
		array = C.newFloatArray(e.env, n)
	case jnibind.KindLong:
		array = C.newLongArray(e.env, n)
	case jnibind.KindDouble:
		array = C.newDoubleArray(e.env, n)
	}
	return refOf(C.jobject(array))
}

func (e *Env) NewObjectArray(length int32, elementClass jnibind.Ref, initial jnibind.Ref) jnibind.Ref {
	return refOf(C.jobject(C.newObjectArray(e.env, C.jsize(length), jclass(elementClass), jobject(initial))))
}

func (e *Env) GetObjectArrayElement(array jnibind.Ref, index int32) jnibind.Ref {
	return refOf(C.getObjectArrayElement(e.env, jobjectArray(array), C.jsize(index)))
}

func (e *Env) SetObjectArrayElement(array jnibind.Ref, index int32, value jnibind.Ref) {
	C.setObjectArrayElement(e.env, jobjectArray(array), C.jsize(index), jobject(value))
}

func (e *Env) GetArrayRegion(array jnibind.Ref, start int32, buf any) {
	e.arrayRegion(array, start, buf, true)
}

func (e *Env) SetArrayRegion(array jnibind.Ref, start int32, buf any) {
	e.arrayRegion(array, start, buf, false)
}

func (e *Env) arrayRegion(array jnibind.Ref, start int32, buf any, get bool) {
	a, s := jarray(array), C.jsize(start)
	switch b := buf.(type) {
	case []bool:
		if len(b) == 0 {
			return
		}
		// Go stores bools as single bytes holding 0 or 1, like jboolean.
		p, n := (*C.jboolean)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getBooleanArrayRegion(e.env, a, s, n, p)
		} else {
			C.setBooleanArrayRegion(e.env, a, s, n, p)
		}
	case []int8:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jbyte)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getByteArrayRegion(e.env, a, s, n, p)
		} else {
			C.setByteArrayRegion(e.env, a, s, n, p)
		}
	case []uint16:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jchar)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getCharArrayRegion(e.env, a, s, n, p)
		} else {
			C.setCharArrayRegion(e.env, a, s, n, p)
		}
	case []int16:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jshort)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getShortArrayRegion(e.env, a, s, n, p)
		} else {
			C.setShortArrayRegion(e.env, a, s, n, p)
		}
	case []int32:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jint)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getIntArrayRegion(e.env, a, s, n, p)
		} else {
			C.setIntArrayRegion(e.env, a, s, n, p)
		}
	case []float32:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jfloat)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getFloatArrayRegion(e.env, a, s, n, p)
		} else {
			C.setFloatArrayRegion(e.env, a, s, n, p)
		}
	case []int64:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jlong)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getLongArrayRegion(e.env, a, s, n, p)
		} else {
			C.setLongArrayRegion(e.env, a, s, n, p)
		}
	case []float64:
		if len(b) == 0 {
			return
		}
		p, n := (*C.jdouble)(unsafe.Pointer(&b[0])), C.jsize(len(b))
		if get {
			C.getDoubleArrayRegion(e.env, a, s, n, p)
		} else {
			C.setDoubleArrayRegion(e.env, a, s, n, p)
		}
	default:
		log.Warningf("array region copy with unsupported buffer type %T", buf)
	}
}

func (e *Env) NewString(chars []uint16) jnibind.Ref {
	var p *C.jchar
	if len(chars) > 0 {
		p = (*C.jchar)(unsafe.Pointer(&chars[0]))
	}
	return refOf(C.jobject(C.newString(e.env, p, C.jsize(len(chars)))))
}

func (e *Env) GetStringLength(str jnibind.Ref) int32 {
	return int32(C.getStringLength(e.env, jstring(str)))
}

func (e *Env) GetStringRegion(str jnibind.Ref, start int32, buf []uint16) {
	if len(buf) == 0 {
		return
	}
	C.getStringRegion(e.env, jstring(str), C.jsize(start), C.jsize(len(buf)), (*C.jchar)(unsafe.Pointer(&buf[0])))
}
