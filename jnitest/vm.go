// Package jnitest provides an in-process fake of the runtime native
// interface. A VM holds classes, objects and the reference tables; every Env
// created from it behaves like the execution context of one attached thread.
package jnitest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jerbob92/jnibind"
)

// Stats counts the traffic an Env implementation saw.
type Stats struct {
	// Invocations counts every call of an Env operation.
	Invocations int

	ClassLookups  int
	FieldLookups  int
	MethodLookups int
	Calls         int

	LocalRefsCreated  int
	GlobalRefsCreated int
	GlobalRefsDeleted int

	// InvalidReleases counts DeleteGlobalRef and DeleteLocalRef calls with a
	// reference that was not live, for example a double release.
	InvalidReleases int

	// InvalidRefs counts uses of stale references and of local references on
	// a thread that does not own them.
	InvalidRefs int
}

type VM struct {
	mu sync.Mutex

	classes  map[string]*Class
	handles  *handleTable
	fields   map[jnibind.FieldID]*fieldDef
	methods  map[jnibind.MethodID]*methodDef
	nextID   uintptr
	stats    Stats
	lookups  map[string]int
	onCall   func(name string, detail string)
	refusals int
}

// NewVM returns a VM that knows java/lang/Object, java/lang/String and
// java/lang/Class.
func NewVM() *VM {
	vm := &VM{
		classes: map[string]*Class{},
		handles: newHandleTable(),
		fields:  map[jnibind.FieldID]*fieldDef{},
		methods: map[jnibind.MethodID]*methodDef{},
		lookups: map[string]int{},
	}

	object := vm.DefineClass("java/lang/Object", nil)
	vm.DefineClass("java/lang/String", object)
	vm.DefineClass("java/lang/Class", object)
	return vm
}

// OnCall installs a trace callback that is invoked for every Env operation.
// The callback runs with the VM locked and must not call back into it.
func (vm *VM) OnCall(fn func(name string, detail string)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.onCall = fn
}

func (vm *VM) Stats() Stats {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.stats
}

// Lookups returns how often the class, field or method with the given key
// was looked up. Keys are "class path", "field path.name:sig" and
// "method path.name:sig".
func (vm *VM) Lookups(key string) int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.lookups[key]
}

// LiveGlobalRefs returns the number of global references not yet deleted.
func (vm *VM) LiveGlobalRefs() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.handles.globals
}

// RefuseGlobalRefs makes the next n NewGlobalRef calls fail.
func (vm *VM) RefuseGlobalRefs(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.refusals = n
}

func (vm *VM) trace(name string, format string, args ...any) {
	vm.stats.Invocations++
	if vm.onCall != nil {
		vm.onCall(name, fmt.Sprintf(format, args...))
	}
}

func (vm *VM) newID() uintptr {
	vm.nextID++
	return vm.nextID
}

// Class is a class known to the VM.
type Class struct {
	vm      *VM
	name    string
	super   *Class
	hidden  bool
	elem    string
	object  *Object
	fields  []*fieldDef
	methods []*methodDef
	statics map[jnibind.FieldID]*slot
}

type fieldDef struct {
	id     jnibind.FieldID
	owner  *Class
	name   string
	sig    string
	static bool
	kind   jnibind.Kind
}

func (f *fieldDef) key() string {
	return f.name + ":" + f.sig
}

// MethodFunc implements a method of a fake class. The returned slot is
// decoded according to the return kind of the method; reference results
// must be created with Call.Return.
type MethodFunc func(c *Call) uint64

type methodDef struct {
	id     jnibind.MethodID
	owner  *Class
	name   string
	sig    string
	static bool
	ret    jnibind.Kind
	params []jnibind.Kind
	impl   MethodFunc
}

// DefineClass defines a class with the given path and superclass. Defining
// a path twice returns the existing class.
func (vm *VM) DefineClass(name string, super *Class) *Class {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.defineClass(name, super)
}

func (vm *VM) defineClass(name string, super *Class) *Class {
	if existing, ok := vm.classes[name]; ok {
		return existing
	}

	if super == nil && name != "java/lang/Object" {
		super = vm.classes["java/lang/Object"]
	}

	c := &Class{
		vm:      vm,
		name:    name,
		super:   super,
		statics: map[jnibind.FieldID]*slot{},
	}
	c.object = &Object{vm: vm, class: vm.classes["java/lang/Class"], meta: c}
	vm.classes[name] = c

	if name == "java/lang/Class" {
		// java/lang/Class is an instance of itself.
		c.object.class = c
		for _, other := range vm.classes {
			if other.object.class == nil {
				other.object.class = c
			}
		}
	}
	return c
}

// Class returns the class with the given path, or nil.
func (vm *VM) Class(name string) *Class {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.classes[name]
}

// arrayClass returns the class of arrays with the given signature, defining
// it on first use. It returns nil for signatures of unknown element classes.
func (vm *VM) arrayClass(sig string) *Class {
	if existing, ok := vm.classes[sig]; ok {
		return existing
	}

	elem := strings.TrimPrefix(sig, "[")
	if elem == "" {
		return nil
	}

	switch elem[0] {
	case 'Z', 'B', 'C', 'S', 'I', 'F', 'J', 'D':
		if len(elem) != 1 {
			return nil
		}
	case '[':
		if vm.arrayClass(elem) == nil {
			return nil
		}
	case 'L':
		if !strings.HasSuffix(elem, ";") || vm.classes[elem[1:len(elem)-1]] == nil {
			return nil
		}
	default:
		return nil
	}

	c := vm.defineClass(sig, nil)
	c.elem = elem
	return c
}

func (c *Class) Name() string {
	return c.name
}

func (c *Class) Super() *Class {
	return c.super
}

// Hide makes the class invisible to FindClass. Hidden classes can only be
// found through LoadHidden, like classes of a foreign class loader.
func (c *Class) Hide() *Class {
	c.vm.mu.Lock()
	defer c.vm.mu.Unlock()
	c.hidden = true
	return c
}

func (c *Class) isA(other *Class) bool {
	for p := c; p != nil; p = p.super {
		if p == other {
			return true
		}
	}
	return false
}

func (c *Class) signature() string {
	if c.elem != "" {
		return c.name
	}
	return "L" + c.name + ";"
}

// Field declares an instance field.
func (c *Class) Field(name, sig string) *Class {
	return c.addField(name, sig, false)
}

// StaticField declares a static field.
func (c *Class) StaticField(name, sig string) *Class {
	return c.addField(name, sig, true)
}

func (c *Class) addField(name, sig string, static bool) *Class {
	c.vm.mu.Lock()
	defer c.vm.mu.Unlock()

	f := &fieldDef{
		id:     jnibind.FieldID(c.vm.newID()),
		owner:  c,
		name:   name,
		sig:    sig,
		static: static,
		kind:   jnibind.KindOfSignature(sig),
	}
	c.fields = append(c.fields, f)
	c.vm.fields[f.id] = f
	if static {
		c.statics[f.id] = &slot{}
	}
	return c
}

// Method declares an instance method implemented by impl.
func (c *Class) Method(name, sig string, impl MethodFunc) *Class {
	return c.addMethod(name, sig, false, impl)
}

// StaticMethod declares a static method implemented by impl.
func (c *Class) StaticMethod(name, sig string, impl MethodFunc) *Class {
	return c.addMethod(name, sig, true, impl)
}

// Constructor declares a constructor with the given method signature, which
// must return V. impl initializes Call.This.
func (c *Class) Constructor(sig string, impl MethodFunc) *Class {
	return c.addMethod("<init>", sig, false, impl)
}

func (c *Class) addMethod(name, sig string, static bool, impl MethodFunc) *Class {
	c.vm.mu.Lock()
	defer c.vm.mu.Unlock()

	m := &methodDef{
		id:     jnibind.MethodID(c.vm.newID()),
		owner:  c,
		name:   name,
		sig:    sig,
		static: static,
		ret:    jnibind.KindOfSignature(jnibind.ReturnSignature(sig)),
		impl:   impl,
	}
	for _, param := range jnibind.ParamSignatures(sig) {
		m.params = append(m.params, jnibind.KindOfSignature(param))
	}
	c.methods = append(c.methods, m)
	c.vm.methods[m.id] = m
	return c
}

func (c *Class) findField(name, sig string, static bool) *fieldDef {
	for p := c; p != nil; p = p.super {
		for _, f := range p.fields {
			if f.name == name && f.sig == sig && f.static == static {
				return f
			}
		}
	}
	return nil
}

func (c *Class) findMethod(name, sig string, static bool) *methodDef {
	for p := c; p != nil; p = p.super {
		for _, m := range p.methods {
			if m.name == name && m.sig == sig && m.static == static {
				return m
			}
		}
		if name == "<init>" {
			// Constructors are not inherited.
			break
		}
	}
	return nil
}

// slot holds a field value: raw bits for primitives, an object for
// references.
type slot struct {
	bits   uint64
	object *Object
}

// Object is a value on the fake heap.
type Object struct {
	vm     *VM
	class  *Class
	fields map[string]*slot

	// meta is the class an object of class java/lang/Class stands for.
	meta *Class

	elems []*Object
	prims any
	chars []uint16

	// Data is free for method implementations to keep Go-side state in.
	Data any
}

func (o *Object) Class() *Class {
	return o.class
}

// ClassValue returns the class a class object stands for.
func (o *Object) ClassValue() *Class {
	return o.meta
}

// New allocates an object of class c without running a constructor.
func (c *Class) New() *Object {
	c.vm.mu.Lock()
	defer c.vm.mu.Unlock()
	return c.vm.allocate(c)
}

func (vm *VM) allocate(c *Class) *Object {
	o := &Object{vm: vm, class: c, fields: map[string]*slot{}}
	for p := c; p != nil; p = p.super {
		for _, f := range p.fields {
			if !f.static {
				o.fields[f.key()] = &slot{}
			}
		}
	}
	return o
}

// NewStringObject allocates a string object holding value.
func (vm *VM) NewStringObject(value string) *Object {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	o := vm.allocate(vm.classes["java/lang/String"])
	for _, r := range value {
		if r >= 0x10000 {
			r -= 0x10000
			o.chars = append(o.chars, uint16(0xd800+(r>>10)), uint16(0xdc00+(r&0x3ff)))
			continue
		}
		o.chars = append(o.chars, uint16(r))
	}
	return o
}

// StringValue returns the contents of a string object as a Go string.
func (o *Object) StringValue() string {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()

	var sb strings.Builder
	for i := 0; i < len(o.chars); i++ {
		c := rune(o.chars[i])
		if c >= 0xd800 && c < 0xdc00 && i+1 < len(o.chars) {
			c = 0x10000 + (c-0xd800)<<10 + (rune(o.chars[i+1]) - 0xdc00)
			i++
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// SetChars replaces the UTF-16 contents of a string object.
func (o *Object) SetChars(chars []uint16) {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	o.chars = append([]uint16(nil), chars...)
}

// Chars returns a copy of the UTF-16 contents of a string object.
func (o *Object) Chars() []uint16 {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	return append([]uint16(nil), o.chars...)
}

// Get returns the raw slot of the instance field name with signature sig.
func (o *Object) Get(name, sig string) uint64 {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	if s, ok := o.fields[name+":"+sig]; ok {
		return s.bits
	}
	return 0
}

// Set writes the raw slot of the instance field name with signature sig.
func (o *Object) Set(name, sig string, bits uint64) {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	if s, ok := o.fields[name+":"+sig]; ok {
		s.bits = bits
	}
}

// GetObject returns the object held by a reference field.
func (o *Object) GetObject(name, sig string) *Object {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	if s, ok := o.fields[name+":"+sig]; ok {
		return s.object
	}
	return nil
}

// SetObject stores value in a reference field.
func (o *Object) SetObject(name, sig string, value *Object) {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	if s, ok := o.fields[name+":"+sig]; ok {
		s.object = value
	}
}

// Elements returns the elements of an object array.
func (o *Object) Elements() []*Object {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	return append([]*Object(nil), o.elems...)
}

// Primitives returns a copy of the elements of a primitive array, for
// example an []int32 for an int[] array.
func (o *Object) Primitives() any {
	o.vm.mu.Lock()
	defer o.vm.mu.Unlock()
	return clonePrimitives(o.prims)
}
