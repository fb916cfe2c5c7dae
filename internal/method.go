package jnibind

import (
	"context"
	"fmt"
)

// Method is a typed method declaration. R is the Go type of the result: one
// of the Primitive types, *Object for methods returning a reference, or Void.
type Method[R Result] struct {
	member
}

// NewMethod declares a method of owner with a primitive return type.
func NewMethod[R Primitive](owner *Class, name string, modifier Modifier, params ...Type) *Method[R] {
	return declareMethod[R](owner, name, modifier, PrimitiveTypeOf[R](), params)
}

// NewObjectMethod declares a method of owner returning a reference of class
// ret.
func NewObjectMethod(owner *Class, name string, ret *Class, modifier Modifier, params ...Type) *Method[*Object] {
	return declareMethod[*Object](owner, name, modifier, ret, params)
}

// NewVoidMethod declares a method of owner without a result.
func NewVoidMethod(owner *Class, name string, modifier Modifier, params ...Type) *Method[Void] {
	return declareMethod[Void](owner, name, modifier, VoidType, params)
}

func declareMethod[R Result](owner *Class, name string, modifier Modifier, ret Type, params []Type) *Method[R] {
	m := &Method[R]{member: newMember(owner, name, MemberMethod, modifier, ret, params)}
	owner.addMember(m)
	return m
}

// Call invokes the method on this with the given arguments. Every argument
// must have the exact Go type of its declared parameter; reference
// parameters accept nil or any Referent. On failure the zero result is
// returned together with the error, and nothing is invoked.
func (m *Method[R]) Call(ctx context.Context, this Instance, arguments ...any) (R, error) {
	var zero R
	if m.static {
		return zero, fmt.Errorf("could not call %s: %w", m.humanName(), ErrStaticMismatch)
	}
	return m.invoke(ctx, this, arguments)
}

// CallStatic invokes a static method.
func (m *Method[R]) CallStatic(ctx context.Context, arguments ...any) (R, error) {
	var zero R
	if !m.static {
		return zero, fmt.Errorf("could not call %s: %w", m.humanName(), ErrStaticMismatch)
	}
	return m.invoke(ctx, Instance{}, arguments)
}

func (m *Method[R]) invoke(ctx context.Context, this Instance, arguments []any) (R, error) {
	var zero R

	a, err := m.prepare(ctx, this)
	if err != nil {
		return zero, fmt.Errorf("could not call %s: %w", m.humanName(), err)
	}

	argsWired, err := m.marshal(arguments)
	if err != nil {
		return zero, fmt.Errorf("could not call %s: %w", m.humanName(), err)
	}

	var res uint64
	if m.static {
		res = a.env().CallStaticMethod(a.class, MethodID(a.id), m.typ.Kind(), argsWired)
	} else {
		res = a.env().CallMethod(a.receiver, MethodID(a.id), m.typ.Kind(), argsWired)
	}

	return m.typ.FromWireType(res).(R), nil
}

// On binds the method to this. Static methods ignore the instance.
func (m *Method[R]) On(this Instance) BoundMethod[R] {
	return BoundMethod[R]{method: m, this: this}
}

// BoundMethod is a method declaration bound to a receiver.
type BoundMethod[R Result] struct {
	method *Method[R]
	this   Instance
}

func (b BoundMethod[R]) Call(ctx context.Context, arguments ...any) (R, error) {
	if b.method.static {
		return b.method.CallStatic(ctx, arguments...)
	}
	return b.method.Call(ctx, b.this, arguments...)
}

// Constructor is the declaration of a constructor of a class, the instance
// method named "<init>" with a void return type.
type Constructor struct {
	member
}

const constructorName = "<init>"

func NewConstructor(owner *Class, params ...Type) *Constructor {
	c := &Constructor{member: newMember(owner, constructorName, MemberMethod, NonStatic, VoidType, params)}
	c.constructor = true
	owner.addMember(c)
	return c
}

// New creates a new instance of the owning class and returns a scoped
// reference to it.
func (c *Constructor) New(ctx context.Context, arguments ...any) (*Object, error) {
	a, err := c.prepare(ctx, Instance{})
	if err != nil {
		return Wrap(0), fmt.Errorf("could not construct %s: %w", c.owner.path, err)
	}

	argsWired, err := c.marshal(arguments)
	if err != nil {
		return Wrap(0), fmt.Errorf("could not construct %s: %w", c.owner.path, err)
	}

	return Wrap(a.env().NewObject(a.class, MethodID(a.id), argsWired)), nil
}

// NewInstance is New viewed through the owning class.
func (c *Constructor) NewInstance(ctx context.Context, arguments ...any) (Instance, error) {
	obj, err := c.New(ctx, arguments...)
	return c.owner.Wrap(obj), err
}
