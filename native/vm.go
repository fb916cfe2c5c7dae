//go:build cgo && jni

package native

/*
#include "jni_helpers.h"
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/tliron/commonlog"

	"github.com/jerbob92/jnibind"
)

var log = commonlog.GetLogger("jnibind.native")

var ErrNoVM = errors.New("no Java VM running in this process")

// VM is a Java VM running in this process.
type VM struct {
	vm *C.JavaVM
}

// CreatedVM returns the VM the process was started in, or the VM that loaded
// this library.
func CreatedVM() (*VM, error) {
	var vm *C.JavaVM
	var n C.jsize
	if res := C.getCreatedJavaVMs(&vm, 1, &n); res != C.JNI_OK {
		return nil, fmt.Errorf("could not list Java VMs (%d): %w", int(res), ErrNoVM)
	}
	if n == 0 || vm == nil {
		return nil, ErrNoVM
	}
	return &VM{vm: vm}, nil
}

// CreateVM starts a Java VM in this process. options are passed on as they
// are, for example -Djava.class.path=app.jar. Only one VM can be created
// per process.
func CreateVM(options ...string) (*VM, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cOptions := C.newOptions(C.jint(len(options)))
	defer C.free(unsafe.Pointer(cOptions))
	for i := range options {
		value := C.CString(options[i])
		defer C.free(unsafe.Pointer(value))
		C.setOption(cOptions, C.jint(i), value)
	}

	var vm *C.JavaVM
	var env *C.JNIEnv
	if res := C.createJavaVM(&vm, &env, cOptions, C.jint(len(options))); res != C.JNI_OK {
		return nil, fmt.Errorf("could not create Java VM (%d)", int(res))
	}

	// Threads are attached per goroutine through Attach.
	C.detachCurrentThread(vm)

	log.Debugf("created Java VM with %d option(s)", len(options))
	return &VM{vm: vm}, nil
}

// Destroy unloads the VM. It blocks until all other attached threads have
// detached.
func (vm *VM) Destroy() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if res := C.destroyJavaVM(vm.vm); res != C.JNI_OK {
		return fmt.Errorf("could not destroy Java VM (%d)", int(res))
	}
	return nil
}

// WrapVM wraps a JavaVM pointer, for example the one handed to JNI_OnLoad.
func WrapVM(vm unsafe.Pointer) *VM {
	return &VM{vm: (*C.JavaVM)(vm)}
}

// Attach locks the calling goroutine to its OS thread, attaches that thread
// to the VM when it is not attached yet and binds its Env to ctx through
// engine. The returned function undoes all of it and must be called from
// the same goroutine.
func (vm *VM) Attach(ctx context.Context, engine jnibind.Engine) (context.Context, func(), error) {
	runtime.LockOSThread()

	var env *C.JNIEnv
	attached := false
	switch res := C.getEnv(vm.vm, &env); res {
	case C.JNI_OK:
	case C.JNI_EDETACHED:
		if res := C.attachCurrentThread(vm.vm, &env); res != C.JNI_OK {
			runtime.UnlockOSThread()
			return ctx, func() {}, fmt.Errorf("could not attach thread to Java VM (%d)", int(res))
		}
		attached = true
	default:
		runtime.UnlockOSThread()
		return ctx, func() {}, fmt.Errorf("could not get JNI environment (%d)", int(res))
	}

	log.Debugf("thread bound to Java VM, newly attached: %t", attached)

	threadCtx := engine.Attach(ctx, &Env{env: env})
	return threadCtx, func() {
		engine.Detach(threadCtx)
		if attached {
			C.detachCurrentThread(vm.vm)
		}
		runtime.UnlockOSThread()
	}, nil
}
