//go:build cgo && jni

// Package native implements jnibind.Env on top of a real JNIEnv.
//
// Building it needs the JNI headers and, for CreatedVM, libjvm:
//
//	CGO_CFLAGS="-I$JAVA_HOME/include -I$JAVA_HOME/include/linux" \
//	CGO_LDFLAGS="-L$JAVA_HOME/lib/server -ljvm" \
//	go build -tags jni
//
// Wire slots are handed to the JNI A-variants as jvalue arrays as they are,
// which requires a little endian host.
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

func jobject(ref jnibind.Ref) C.jobject {
	return C.jobject(unsafe.Pointer(ref))
}

func jclass(ref jnibind.Ref) C.jclass {
	return C.jclass(unsafe.Pointer(ref))
}

func jarray(ref jnibind.Ref) C.jarray {
	return C.jarray(unsafe.Pointer(ref))
}

func jobjectArray(ref jnibind.Ref) C.jobjectArray {
	return C.jobjectArray(unsafe.Pointer(ref))
}

func jstring(ref jnibind.Ref) C.jstring {
	return C.jstring(unsafe.Pointer(ref))
}

func jfieldID(id jnibind.FieldID) C.jfieldID {
	return C.jfieldID(unsafe.Pointer(id))
}

func jmethodID(id jnibind.MethodID) C.jmethodID {
	return C.jmethodID(unsafe.Pointer(id))
}

func refOf(obj C.jobject) jnibind.Ref {
	return jnibind.Ref(uintptr(unsafe.Pointer(obj)))
}

// jvalues reinterprets wire slots as a jvalue array.
func jvalues(args []uint64) *C.jvalue {
	if len(args) == 0 {
		return nil
	}
	return (*C.jvalue)(unsafe.Pointer(&args[0]))
}

func jboolean(v bool) C.jboolean {
	if v {
		return C.JNI_TRUE
	}
	return C.JNI_FALSE
}

func encodeBoolean(v C.jboolean) uint64 {
	if v != 0 {
		return api.EncodeI32(1)
	}
	return api.EncodeI32(0)
}

func encodeObject(obj C.jobject) uint64 {
	return api.EncodeExternref(uintptr(unsafe.Pointer(obj)))
}

func decodeObject(value uint64) C.jobject {
	return jobject(jnibind.Ref(api.DecodeExternref(value)))
}
