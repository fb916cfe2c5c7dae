package jnibind

import (
	"context"
	"fmt"
)

// Field is a typed field declaration. T is the Go type of the field value:
// one of the Primitive types, or *Object for fields of a class or array type.
type Field[T Value] struct {
	member
}

// NewField declares a primitive field of owner.
func NewField[T Primitive](owner *Class, name string, modifier Modifier) *Field[T] {
	f := &Field[T]{member: newMember(owner, name, MemberField, modifier, PrimitiveTypeOf[T](), nil)}
	owner.addMember(f)
	return f
}

// NewObjectField declares a field of owner holding a reference of class typ.
func NewObjectField(owner *Class, name string, typ *Class, modifier Modifier) *Field[*Object] {
	f := &Field[*Object]{member: newMember(owner, name, MemberField, modifier, typ, nil)}
	owner.addMember(f)
	return f
}

// Get reads the field of this. On any failure the zero value is returned
// together with the error, and nothing is read.
func (f *Field[T]) Get(ctx context.Context, this Instance) (T, error) {
	var zero T
	if f.static {
		return zero, fmt.Errorf("could not get %s: %w", f.humanName(), ErrStaticMismatch)
	}

	a, err := f.prepare(ctx, this)
	if err != nil {
		return zero, fmt.Errorf("could not get %s: %w", f.humanName(), err)
	}

	wire := a.env().GetField(a.receiver, FieldID(a.id), f.typ.Kind())
	return f.typ.FromWireType(wire).(T), nil
}

// Set writes the field of this.
func (f *Field[T]) Set(ctx context.Context, this Instance, value T) error {
	if f.static {
		return fmt.Errorf("could not set %s: %w", f.humanName(), ErrStaticMismatch)
	}

	a, err := f.prepare(ctx, this)
	if err != nil {
		return fmt.Errorf("could not set %s: %w", f.humanName(), err)
	}

	wire, err := f.typ.ToWireType(value)
	if err != nil {
		return fmt.Errorf("could not set %s: %w", f.humanName(), err)
	}

	a.env().SetField(a.receiver, FieldID(a.id), f.typ.Kind(), wire)
	return nil
}

// GetStatic reads a static field.
func (f *Field[T]) GetStatic(ctx context.Context) (T, error) {
	var zero T
	if !f.static {
		return zero, fmt.Errorf("could not get %s: %w", f.humanName(), ErrStaticMismatch)
	}

	a, err := f.prepare(ctx, Instance{})
	if err != nil {
		return zero, fmt.Errorf("could not get %s: %w", f.humanName(), err)
	}

	wire := a.env().GetStaticField(a.class, FieldID(a.id), f.typ.Kind())
	return f.typ.FromWireType(wire).(T), nil
}

// SetStatic writes a static field.
func (f *Field[T]) SetStatic(ctx context.Context, value T) error {
	if !f.static {
		return fmt.Errorf("could not set %s: %w", f.humanName(), ErrStaticMismatch)
	}

	a, err := f.prepare(ctx, Instance{})
	if err != nil {
		return fmt.Errorf("could not set %s: %w", f.humanName(), err)
	}

	wire, err := f.typ.ToWireType(value)
	if err != nil {
		return fmt.Errorf("could not set %s: %w", f.humanName(), err)
	}

	a.env().SetStaticField(a.class, FieldID(a.id), f.typ.Kind(), wire)
	return nil
}

// On binds the field to this. Static fields ignore the instance.
func (f *Field[T]) On(this Instance) BoundField[T] {
	return BoundField[T]{field: f, this: this}
}

// BoundField is a field declaration bound to a receiver.
type BoundField[T Value] struct {
	field *Field[T]
	this  Instance
}

func (b BoundField[T]) Get(ctx context.Context) (T, error) {
	if b.field.static {
		return b.field.GetStatic(ctx)
	}
	return b.field.Get(ctx, b.this)
}

func (b BoundField[T]) Set(ctx context.Context, value T) error {
	if b.field.static {
		return b.field.SetStatic(ctx, value)
	}
	return b.field.Set(ctx, b.this, value)
}
