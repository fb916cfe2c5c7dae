package jnibind

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero/api"
)

// declarationIDs hands out the identity of every class and member
// declaration. Resolution state is cached per engine under this identity.
var declarationIDs atomic.Uint64

func nextDeclarationID() uint64 {
	return declarationIDs.Add(1)
}

// Class is the declaration of a runtime class. Declarations are immutable,
// hold no runtime state and can be shared by any number of engines.
type Class struct {
	id     uint64
	path   string
	sig    string
	parent *Class
	elem   Type

	membersLock sync.Mutex
	members     []Member
}

type ClassOption func(c *Class)

// Extends makes parent the base of the declared class: the members of parent
// become reachable from the declared class and its instances.
func Extends(parent *Class) ClassOption {
	return func(c *Class) {
		c.parent = parent
	}
}

// DeclareClass declares the class with the given protocol path, for example
// "java/lang/String". The path is used verbatim for the lookup.
func DeclareClass(path string, options ...ClassOption) *Class {
	if path == "" {
		panic(fmt.Errorf("class path can not be empty"))
	}

	c := &Class{
		id:   nextDeclarationID(),
		path: path,
		sig:  "L" + path + ";",
	}
	for i := range options {
		options[i](c)
	}

	for p := c.parent; p != nil; p = p.parent {
		if p == c {
			panic(fmt.Errorf("class %s extends itself", path))
		}
	}

	return c
}

var arrayClasses sync.Map

// ArrayOf returns the array class with elements of type elem. Array classes
// are shared: every call with the same element signature returns the same
// declaration.
func ArrayOf(elem Type) *Class {
	if elem == nil || elem.Kind() == KindVoid {
		panic(fmt.Errorf("array element type must be a value type"))
	}

	sig := "[" + elem.Signature()
	if existing, ok := arrayClasses.Load(sig); ok {
		return existing.(*Class)
	}

	c := &Class{
		id:   nextDeclarationID(),
		path: sig,
		sig:  sig,
		elem: elem,
	}
	actual, _ := arrayClasses.LoadOrStore(sig, c)
	return actual.(*Class)
}

func (c *Class) isType() {}

// Name returns the protocol path of the class. For array classes the path
// is the array signature itself.
func (c *Class) Name() string {
	return c.path
}

func (c *Class) Kind() Kind {
	return KindObject
}

func (c *Class) Signature() string {
	return c.sig
}

func (c *Class) GoType() string {
	return "*Object"
}

func (c *Class) NativeType() api.ValueType {
	return api.ValueTypeExternref
}

func (c *Class) ToWireType(o any) (uint64, error) {
	switch v := o.(type) {
	case nil:
		return api.EncodeExternref(0), nil
	case Referent:
		return api.EncodeExternref(uintptr(v.Ref())), nil
	}
	return 0, fmt.Errorf("value for %s must be a reference, is %T: %w", c.path, o, ErrArgument)
}

func (c *Class) FromWireType(value uint64) any {
	return Wrap(Ref(api.DecodeExternref(value)))
}

func (c *Class) Parent() *Class {
	return c.parent
}

// Element returns the element type of an array class, or nil.
func (c *Class) Element() Type {
	return c.elem
}

func (c *Class) IsArray() bool {
	return c.elem != nil
}

// IsA reports whether c is other or derives from it. Two declarations of the
// same path are the same class.
func (c *Class) IsA(other *Class) bool {
	for p := c; p != nil; p = p.parent {
		if p == other || p.path == other.path {
			return true
		}
	}
	return false
}

func (c *Class) addMember(m Member) {
	c.membersLock.Lock()
	defer c.membersLock.Unlock()
	c.members = append(c.members, m)
}

// Members returns the members declared on c followed by the members it
// inherits, nearest base first.
func (c *Class) Members() []Member {
	var members []Member
	for p := c; p != nil; p = p.parent {
		p.membersLock.Lock()
		members = append(members, p.members...)
		p.membersLock.Unlock()
	}
	return members
}

// Resolve returns the promoted class reference, looking the class up on
// first use.
func (c *Class) Resolve(ctx context.Context) (Ref, error) {
	t := currentThread(ctx)
	if t == nil {
		return 0, ErrNotAttached
	}
	return t.engine.resolveClass(ctx, t, c)
}

func (c *Class) resolutionError() *ResolutionError {
	return &ResolutionError{What: "class", Class: c.path}
}

// Wrap views obj as an instance of c.
func (c *Class) Wrap(obj *Object) Instance {
	return Instance{Object: obj, class: c}
}

func (c *Class) String() string {
	return c.path
}

// Instance is an object viewed through a class declaration. All members of
// the class and its bases can be accessed through it.
type Instance struct {
	*Object
	class *Class
}

func (i Instance) Class() *Class {
	return i.class
}

// Clone returns an Instance of the same class holding a clone of the object.
func (i Instance) Clone(ctx context.Context) (Instance, error) {
	obj, err := i.Object.Clone(ctx)
	return Instance{Object: obj, class: i.class}, err
}

var (
	ObjectClass = DeclareClass("java/lang/Object")
	StringClass = DeclareClass("java/lang/String", Extends(ObjectClass))
)
