package jnibind

import (
	"context"
	"fmt"
)

// Lifetime is the lifetime class of the reference held by an Object.
type Lifetime uint8

const (
	// Scoped references are local references owned by the current native
	// frame. They are never released by the Object and must not outlive
	// the frame or cross threads.
	Scoped Lifetime = iota

	// Promoted references are global references the Object owns. They stay
	// valid across frames and threads until released.
	Promoted
)

func (l Lifetime) String() string {
	if l == Promoted {
		return "promoted"
	}
	return "scoped"
}

// noCopy makes go vet flag Objects copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Object holds one runtime reference together with its lifetime class.
// Objects are handled through pointers; all methods accept a nil receiver
// and treat it as a scoped null reference, except Assign, which has nothing
// to assign to and returns ErrNullReceiver.
type Object struct {
	noCopy   noCopy
	ref      Ref
	lifetime Lifetime
}

// Wrap returns a scoped Object for ref.
func Wrap(ref Ref) *Object {
	return &Object{ref: ref, lifetime: Scoped}
}

// ObjectOf returns src when it is an Object and a scoped Object for the
// reference it holds otherwise.
func ObjectOf(src Referent) *Object {
	if o, ok := src.(*Object); ok {
		return o
	}
	return Wrap(refOf(src))
}

// Promote returns a promoted Object that owns a new global reference to src.
// A null src yields an empty promoted Object and no error.
func Promote(ctx context.Context, src Referent) (*Object, error) {
	o := &Object{lifetime: Promoted}

	ref := refOf(src)
	if ref == 0 {
		return o, nil
	}

	t := currentThread(ctx)
	if t == nil {
		return o, fmt.Errorf("could not promote reference: %w", ErrNotAttached)
	}

	o.ref = t.env.NewGlobalRef(ref)
	if o.ref == 0 {
		return o, ErrPromotion
	}
	return o, nil
}

// NewReference returns an Object for src with the requested lifetime.
func NewReference(ctx context.Context, src Referent, lifetime Lifetime) (*Object, error) {
	if lifetime == Promoted {
		return Promote(ctx, src)
	}
	return Wrap(refOf(src)), nil
}

func (o *Object) Ref() Ref {
	if o == nil {
		return 0
	}
	return o.ref
}

func (o *Object) Lifetime() Lifetime {
	if o == nil {
		return Scoped
	}
	return o.lifetime
}

func (o *Object) IsNil() bool {
	return o.Ref() == 0
}

// Clone returns a new Object of the same lifetime class referring to the same
// runtime object. Cloning a promoted Object creates a new global reference.
func (o *Object) Clone(ctx context.Context) (*Object, error) {
	return NewReference(ctx, o, o.Lifetime())
}

// Assign makes o refer to the object src refers to. The lifetime class of o
// is kept: a promoted o establishes its new global reference before it
// releases the one it held, so assigning o to itself is safe.
func (o *Object) Assign(ctx context.Context, src Referent) error {
	if o == nil {
		return fmt.Errorf("could not assign to nil object: %w", ErrNullReceiver)
	}

	next := refOf(src)
	if o.lifetime == Scoped {
		o.ref = next
		return nil
	}

	t := currentThread(ctx)
	if t == nil {
		return fmt.Errorf("could not assign promoted reference: %w", ErrNotAttached)
	}

	var err error
	if next != 0 {
		next = t.env.NewGlobalRef(next)
		if next == 0 {
			err = ErrPromotion
		}
	}

	old := o.ref
	o.ref = next
	if old != 0 {
		t.env.DeleteGlobalRef(old)
	}
	return err
}

// Release gives up the reference. A promoted reference is deleted from the
// runtime, which requires an attached context; on an unattached context the
// reference is kept and ErrNotAttached is returned. Releasing twice is a
// no-op.
func (o *Object) Release(ctx context.Context) error {
	if o == nil || o.ref == 0 {
		return nil
	}

	if o.lifetime == Promoted {
		t := currentThread(ctx)
		if t == nil {
			return fmt.Errorf("could not release promoted reference: %w", ErrNotAttached)
		}
		t.env.DeleteGlobalRef(o.ref)
	}

	o.ref = 0
	return nil
}

// IsSameObject reports whether o and other refer to the same runtime object.
// Two null references are the same object.
func (o *Object) IsSameObject(ctx context.Context, other Referent) (bool, error) {
	t := currentThread(ctx)
	if t == nil {
		return false, ErrNotAttached
	}
	return t.env.IsSameObject(o.Ref(), refOf(other)), nil
}

// IsInstanceOf reports whether o is an instance of class. A null reference is
// an instance of every class.
func (o *Object) IsInstanceOf(ctx context.Context, class *Class) (bool, error) {
	t := currentThread(ctx)
	if t == nil {
		return false, ErrNotAttached
	}

	classRef, err := t.engine.resolveClass(ctx, t, class)
	if err != nil {
		return false, err
	}
	return t.env.IsInstanceOf(o.Ref(), classRef), nil
}

func (o *Object) String() string {
	return fmt.Sprintf("Object(%#x, %s)", uintptr(o.Ref()), o.Lifetime())
}
