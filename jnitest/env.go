package jnitest

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/jerbob92/jnibind"
)

// Env is the execution context of one thread. It implements jnibind.Env and
// must only be used by one goroutine at a time.
type Env struct {
	vm      *VM
	frames  [][]jnibind.Ref
	pending string
}

var _ jnibind.Env = (*Env)(nil)

// NewEnv returns an execution context with an empty base local frame.
func (vm *VM) NewEnv() *Env {
	return &Env{vm: vm, frames: [][]jnibind.Ref{nil}}
}

func (vm *VM) lock(name string, format string, args ...any) {
	vm.mu.Lock()
	vm.trace(name, format, args...)
}

func encodeRef(ref jnibind.Ref) uint64 {
	return api.EncodeExternref(uintptr(ref))
}

func decodeRef(value uint64) jnibind.Ref {
	return jnibind.Ref(api.DecodeExternref(value))
}

// newLocal creates a local reference in the innermost frame. The VM must be
// locked.
func (e *Env) newLocal(o *Object) jnibind.Ref {
	if o == nil {
		return 0
	}

	ref := e.vm.handles.allocate(&handle{object: o, env: e})
	top := len(e.frames) - 1
	e.frames[top] = append(e.frames[top], ref)
	e.vm.stats.LocalRefsCreated++
	return ref
}

// deref returns the object ref points to. The VM must be locked.
func (e *Env) deref(ref jnibind.Ref) *Object {
	if ref == 0 {
		return nil
	}

	h, err := e.vm.handles.get(ref)
	if err != nil || (!h.global && h.env != e) {
		e.vm.stats.InvalidRefs++
		return nil
	}
	return h.object
}

func (e *Env) classOf(ref jnibind.Ref) *Class {
	o := e.deref(ref)
	if o == nil {
		return nil
	}
	return o.meta
}

func (e *Env) throw(class string, message string) {
	if e.pending == "" {
		e.pending = class + ": " + message
	}
}

// NewLocalRef creates a local reference to o, as if o had been handed to
// native code.
func (e *Env) NewLocalRef(o *Object) jnibind.Ref {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return e.newLocal(o)
}

// Deref returns the object a reference points to, or nil for null, stale or
// foreign local references.
func (e *Env) Deref(ref jnibind.Ref) *Object {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return e.deref(ref)
}

// LoadClass returns a local reference to the class with the given path even
// when the class is hidden from FindClass.
func (e *Env) LoadClass(name string) jnibind.Ref {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()

	c, ok := e.vm.classes[name]
	if !ok {
		return 0
	}
	return e.newLocal(c.object)
}

// PendingException returns the pending exception as "class: message", or
// an empty string.
func (e *Env) PendingException() string {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return e.pending
}

// LocalRefs returns the number of local references alive in all frames.
func (e *Env) LocalRefs() int {
	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()

	n := 0
	for _, frame := range e.frames {
		n += len(frame)
	}
	return n
}

func (e *Env) FindClass(name string) jnibind.Ref {
	e.vm.lock("FindClass", "%s", name)
	defer e.vm.mu.Unlock()

	e.vm.stats.ClassLookups++
	e.vm.lookups["class "+name]++

	var c *Class
	if len(name) > 0 && name[0] == '[' {
		c = e.vm.arrayClass(name)
	} else {
		c = e.vm.classes[name]
	}

	if c == nil || c.hidden {
		e.throw("java/lang/NoClassDefFoundError", name)
		return 0
	}
	return e.newLocal(c.object)
}

func (e *Env) ExceptionCheck() bool {
	e.vm.lock("ExceptionCheck", "")
	defer e.vm.mu.Unlock()
	return e.pending != ""
}

func (e *Env) ExceptionClear() {
	e.vm.lock("ExceptionClear", "%s", e.pending)
	defer e.vm.mu.Unlock()
	e.pending = ""
}

func (e *Env) NewGlobalRef(obj jnibind.Ref) jnibind.Ref {
	e.vm.lock("NewGlobalRef", "%d", obj)
	defer e.vm.mu.Unlock()

	o := e.deref(obj)
	if o == nil {
		return 0
	}

	if e.vm.refusals > 0 {
		e.vm.refusals--
		return 0
	}

	e.vm.stats.GlobalRefsCreated++
	return e.vm.handles.allocate(&handle{object: o, global: true})
}

func (e *Env) DeleteGlobalRef(obj jnibind.Ref) {
	e.vm.lock("DeleteGlobalRef", "%d", obj)
	defer e.vm.mu.Unlock()

	if obj == 0 {
		return
	}

	h, err := e.vm.handles.get(obj)
	if err != nil || !h.global {
		e.vm.stats.InvalidReleases++
		return
	}

	_ = e.vm.handles.free(obj)
	e.vm.stats.GlobalRefsDeleted++
}

func (e *Env) DeleteLocalRef(obj jnibind.Ref) {
	e.vm.lock("DeleteLocalRef", "%d", obj)
	defer e.vm.mu.Unlock()

	if obj == 0 {
		return
	}

	h, err := e.vm.handles.get(obj)
	if err != nil || h.global || h.env != e {
		e.vm.stats.InvalidReleases++
		return
	}

	_ = e.vm.handles.free(obj)
	for i := range e.frames {
		for j, ref := range e.frames[i] {
			if ref == obj {
				e.frames[i] = append(e.frames[i][:j], e.frames[i][j+1:]...)
				return
			}
		}
	}
}

func (e *Env) IsSameObject(a, b jnibind.Ref) bool {
	e.vm.lock("IsSameObject", "%d %d", a, b)
	defer e.vm.mu.Unlock()
	return e.deref(a) == e.deref(b)
}

func (e *Env) IsInstanceOf(obj, class jnibind.Ref) bool {
	e.vm.lock("IsInstanceOf", "%d %d", obj, class)
	defer e.vm.mu.Unlock()

	o := e.deref(obj)
	if o == nil {
		return true
	}

	c := e.classOf(class)
	return c != nil && o.class.isA(c)
}

func (e *Env) GetObjectClass(obj jnibind.Ref) jnibind.Ref {
	e.vm.lock("GetObjectClass", "%d", obj)
	defer e.vm.mu.Unlock()

	o := e.deref(obj)
	if o == nil {
		return 0
	}
	return e.newLocal(o.class.object)
}

func (e *Env) PushLocalFrame(capacity int32) int32 {
	e.vm.lock("PushLocalFrame", "%d", capacity)
	defer e.vm.mu.Unlock()

	if capacity < 0 {
		e.throw("java/lang/OutOfMemoryError", "negative local frame capacity")
		return -1
	}

	e.frames = append(e.frames, make([]jnibind.Ref, 0, capacity))
	return 0
}

func (e *Env) PopLocalFrame(result jnibind.Ref) jnibind.Ref {
	e.vm.lock("PopLocalFrame", "%d", result)
	defer e.vm.mu.Unlock()

	o := e.deref(result)

	if len(e.frames) > 1 {
		top := e.frames[len(e.frames)-1]
		for _, ref := range top {
			_ = e.vm.handles.free(ref)
		}
		e.frames = e.frames[:len(e.frames)-1]
	} else {
		e.vm.stats.InvalidRefs++
	}

	return e.newLocal(o)
}

func (e *Env) lookupField(class jnibind.Ref, name, sig string, static bool) jnibind.FieldID {
	e.vm.stats.FieldLookups++

	c := e.classOf(class)
	if c == nil {
		e.throw("java/lang/NullPointerException", "class is null")
		return 0
	}

	e.vm.lookups["field "+c.name+"."+name+":"+sig]++
	f := c.findField(name, sig, static)
	if f == nil {
		e.throw("java/lang/NoSuchFieldError", name)
		return 0
	}
	return f.id
}

func (e *Env) GetFieldID(class jnibind.Ref, name, sig string) jnibind.FieldID {
	e.vm.lock("GetFieldID", "%s %s", name, sig)
	defer e.vm.mu.Unlock()
	return e.lookupField(class, name, sig, false)
}

func (e *Env) GetStaticFieldID(class jnibind.Ref, name, sig string) jnibind.FieldID {
	e.vm.lock("GetStaticFieldID", "%s %s", name, sig)
	defer e.vm.mu.Unlock()
	return e.lookupField(class, name, sig, true)
}

func (e *Env) lookupMethod(class jnibind.Ref, name, sig string, static bool) jnibind.MethodID {
	e.vm.stats.MethodLookups++

	c := e.classOf(class)
	if c == nil {
		e.throw("java/lang/NullPointerException", "class is null")
		return 0
	}

	e.vm.lookups["method "+c.name+"."+name+":"+sig]++
	m := c.findMethod(name, sig, static)
	if m == nil {
		e.throw("java/lang/NoSuchMethodError", name)
		return 0
	}
	return m.id
}

func (e *Env) GetMethodID(class jnibind.Ref, name, sig string) jnibind.MethodID {
	e.vm.lock("GetMethodID", "%s %s", name, sig)
	defer e.vm.mu.Unlock()
	return e.lookupMethod(class, name, sig, false)
}

func (e *Env) GetStaticMethodID(class jnibind.Ref, name, sig string) jnibind.MethodID {
	e.vm.lock("GetStaticMethodID", "%s %s", name, sig)
	defer e.vm.mu.Unlock()
	return e.lookupMethod(class, name, sig, true)
}

// fieldSlot returns the storage of an instance field. The VM must be locked.
func (e *Env) fieldSlot(obj jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind) *slot {
	o := e.deref(obj)
	if o == nil {
		e.throw("java/lang/NullPointerException", "receiver is null")
		return nil
	}

	f, ok := e.vm.fields[field]
	if !ok || f.static || f.kind != kind || !o.class.isA(f.owner) {
		e.throw("java/lang/IncompatibleClassChangeError", "bad field access")
		return nil
	}
	return o.fields[f.key()]
}

// staticSlot returns the storage of a static field. The VM must be locked.
func (e *Env) staticSlot(class jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind) *slot {
	c := e.classOf(class)
	f, ok := e.vm.fields[field]
	if c == nil || !ok || !f.static || f.kind != kind || !c.isA(f.owner) {
		e.throw("java/lang/IncompatibleClassChangeError", "bad static field access")
		return nil
	}
	return f.owner.statics[field]
}

func (e *Env) readSlot(s *slot, kind jnibind.Kind) uint64 {
	if s == nil {
		return 0
	}
	if kind == jnibind.KindObject {
		return encodeRef(e.newLocal(s.object))
	}
	return s.bits
}

func (e *Env) writeSlot(s *slot, kind jnibind.Kind, value uint64) {
	if s == nil {
		return
	}
	if kind == jnibind.KindObject {
		s.object = e.deref(decodeRef(value))
		return
	}
	s.bits = value
}

func (e *Env) GetField(obj jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind) uint64 {
	e.vm.lock("GetField", "%d %d %s", obj, field, kind)
	defer e.vm.mu.Unlock()
	return e.readSlot(e.fieldSlot(obj, field, kind), kind)
}

func (e *Env) SetField(obj jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind, value uint64) {
	e.vm.lock("SetField", "%d %d %s", obj, field, kind)
	defer e.vm.mu.Unlock()
	e.writeSlot(e.fieldSlot(obj, field, kind), kind, value)
}

func (e *Env) GetStaticField(class jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind) uint64 {
	e.vm.lock("GetStaticField", "%d %d %s", class, field, kind)
	defer e.vm.mu.Unlock()
	return e.readSlot(e.staticSlot(class, field, kind), kind)
}

func (e *Env) SetStaticField(class jnibind.Ref, field jnibind.FieldID, kind jnibind.Kind, value uint64) {
	e.vm.lock("SetStaticField", "%d %d %s", class, field, kind)
	defer e.vm.mu.Unlock()
	e.writeSlot(e.staticSlot(class, field, kind), kind, value)
}

func (e *Env) CallMethod(obj jnibind.Ref, method jnibind.MethodID, kind jnibind.Kind, args []uint64) uint64 {
	e.vm.lock("CallMethod", "%d %d %s", obj, method, kind)

	o := e.deref(obj)
	m, ok := e.vm.methods[method]
	switch {
	case o == nil:
		e.throw("java/lang/NullPointerException", "receiver is null")
		e.vm.mu.Unlock()
		return 0
	case !ok || m.static || m.ret != kind || !o.class.isA(m.owner):
		e.throw("java/lang/IncompatibleClassChangeError", "bad method call")
		e.vm.mu.Unlock()
		return 0
	}

	// Dispatch on the class of the receiver.
	if override := o.class.findMethod(m.name, m.sig, false); override != nil {
		m = override
	}

	e.vm.stats.Calls++
	e.vm.mu.Unlock()

	if m.impl == nil {
		return 0
	}
	return m.impl(&Call{Env: e, This: o, Class: o.class, Args: args, params: m.params})
}

func (e *Env) CallStaticMethod(class jnibind.Ref, method jnibind.MethodID, kind jnibind.Kind, args []uint64) uint64 {
	e.vm.lock("CallStaticMethod", "%d %d %s", class, method, kind)

	c := e.classOf(class)
	m, ok := e.vm.methods[method]
	if c == nil || !ok || !m.static || m.ret != kind {
		e.throw("java/lang/IncompatibleClassChangeError", "bad static method call")
		e.vm.mu.Unlock()
		return 0
	}

	e.vm.stats.Calls++
	e.vm.mu.Unlock()

	if m.impl == nil {
		return 0
	}
	return m.impl(&Call{Env: e, Class: c, Args: args, params: m.params})
}

func (e *Env) NewObject(class jnibind.Ref, constructor jnibind.MethodID, args []uint64) jnibind.Ref {
	e.vm.lock("NewObject", "%d %d", class, constructor)

	c := e.classOf(class)
	m, ok := e.vm.methods[constructor]
	if c == nil || !ok || m.name != "<init>" || m.owner != c {
		e.throw("java/lang/InstantiationError", "bad constructor")
		e.vm.mu.Unlock()
		return 0
	}

	o := e.vm.allocate(c)
	e.vm.stats.Calls++
	e.vm.mu.Unlock()

	if m.impl != nil {
		m.impl(&Call{Env: e, This: o, Class: c, Args: args, params: m.params})
	}

	e.vm.mu.Lock()
	defer e.vm.mu.Unlock()
	return e.newLocal(o)
}

func (e *Env) array(ref jnibind.Ref) *Object {
	o := e.deref(ref)
	if o == nil {
		e.throw("java/lang/NullPointerException", "array is null")
		return nil
	}
	if o.class.elem == "" {
		e.throw("java/lang/IllegalArgumentException", o.class.name+" is not an array")
		return nil
	}
	return o
}

func (e *Env) GetArrayLength(array jnibind.Ref) int32 {
	e.vm.lock("GetArrayLength", "%d", array)
	defer e.vm.mu.Unlock()

	o := e.array(array)
	if o == nil {
		return 0
	}
	if o.prims != nil {
		return int32(primitivesLen(o.prims))
	}
	return int32(len(o.elems))
}

func (e *Env) NewPrimitiveArray(kind jnibind.Kind, length int32) jnibind.Ref {
	e.vm.lock("NewPrimitiveArray", "%s %d", kind, length)
	defer e.vm.mu.Unlock()

	code := primitiveCode(kind)
	if code == "" || length < 0 {
		e.throw("java/lang/NegativeArraySizeException", "bad primitive array")
		return 0
	}

	o := e.vm.allocate(e.vm.arrayClass("[" + code))
	o.prims = newPrimitives(kind, int(length))
	return e.newLocal(o)
}

func (e *Env) NewObjectArray(length int32, elementClass jnibind.Ref, initial jnibind.Ref) jnibind.Ref {
	e.vm.lock("NewObjectArray", "%d %d", length, elementClass)
	defer e.vm.mu.Unlock()

	elem := e.classOf(elementClass)
	if elem == nil || length < 0 {
		e.throw("java/lang/NegativeArraySizeException", "bad object array")
		return 0
	}

	o := e.vm.allocate(e.vm.arrayClass("[" + elem.signature()))
	o.elems = make([]*Object, length)
	if init := e.deref(initial); init != nil {
		for i := range o.elems {
			o.elems[i] = init
		}
	}
	return e.newLocal(o)
}

func (e *Env) GetObjectArrayElement(array jnibind.Ref, index int32) jnibind.Ref {
	e.vm.lock("GetObjectArrayElement", "%d %d", array, index)
	defer e.vm.mu.Unlock()

	o := e.array(array)
	if o == nil {
		return 0
	}
	if index < 0 || int(index) >= len(o.elems) {
		e.throw("java/lang/ArrayIndexOutOfBoundsException", "index out of bounds")
		return 0
	}
	return e.newLocal(o.elems[index])
}

func (e *Env) SetObjectArrayElement(array jnibind.Ref, index int32, value jnibind.Ref) {
	e.vm.lock("SetObjectArrayElement", "%d %d %d", array, index, value)
	defer e.vm.mu.Unlock()

	o := e.array(array)
	if o == nil {
		return
	}
	if index < 0 || int(index) >= len(o.elems) {
		e.throw("java/lang/ArrayIndexOutOfBoundsException", "index out of bounds")
		return
	}
	o.elems[index] = e.deref(value)
}

func (e *Env) GetArrayRegion(array jnibind.Ref, start int32, buf any) {
	e.vm.lock("GetArrayRegion", "%d %d", array, start)
	defer e.vm.mu.Unlock()

	o := e.array(array)
	if o == nil {
		return
	}
	if err := copyRegion(o.prims, int(start), buf, true); err != nil {
		e.throw("java/lang/ArrayIndexOutOfBoundsException", err.Error())
	}
}

func (e *Env) SetArrayRegion(array jnibind.Ref, start int32, buf any) {
	e.vm.lock("SetArrayRegion", "%d %d", array, start)
	defer e.vm.mu.Unlock()

	o := e.array(array)
	if o == nil {
		return
	}
	if err := copyRegion(o.prims, int(start), buf, false); err != nil {
		e.throw("java/lang/ArrayIndexOutOfBoundsException", err.Error())
	}
}

func (e *Env) NewString(chars []uint16) jnibind.Ref {
	e.vm.lock("NewString", "%d", len(chars))
	defer e.vm.mu.Unlock()

	o := e.vm.allocate(e.vm.classes["java/lang/String"])
	o.chars = append([]uint16{}, chars...)
	return e.newLocal(o)
}

func (e *Env) GetStringLength(str jnibind.Ref) int32 {
	e.vm.lock("GetStringLength", "%d", str)
	defer e.vm.mu.Unlock()

	o := e.deref(str)
	if o == nil {
		e.throw("java/lang/NullPointerException", "string is null")
		return 0
	}
	return int32(len(o.chars))
}

func (e *Env) GetStringRegion(str jnibind.Ref, start int32, buf []uint16) {
	e.vm.lock("GetStringRegion", "%d %d", str, start)
	defer e.vm.mu.Unlock()

	o := e.deref(str)
	if o == nil {
		e.throw("java/lang/NullPointerException", "string is null")
		return
	}
	if start < 0 || int(start)+len(buf) > len(o.chars) {
		e.throw("java/lang/StringIndexOutOfBoundsException", "region out of bounds")
		return
	}
	copy(buf, o.chars[start:])
}
