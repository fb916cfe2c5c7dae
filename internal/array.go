package jnibind

import (
	"context"
	"fmt"
	"math"
)

// Array is a typed view of a runtime array. T is the Go element type: a
// Primitive type, or *Object for arrays of references.
type Array[T Value] struct {
	*Object
	elem Type
}

// PrimitiveArray views obj as an array with elements of type T.
func PrimitiveArray[T Primitive](obj *Object) Array[T] {
	return Array[T]{Object: obj, elem: PrimitiveTypeOf[T]()}
}

// ObjectArray views obj as an array with elements of class elem.
func ObjectArray(elem *Class, obj *Object) Array[*Object] {
	return Array[*Object]{Object: obj, elem: elem}
}

func (a Array[T]) ElementType() Type {
	return a.elem
}

// Class returns the array class, whose name equals its signature.
func (a Array[T]) Class() *Class {
	return ArrayOf(a.elem)
}

func (a Array[T]) Len(ctx context.Context) (int32, error) {
	t := currentThread(ctx)
	if t == nil {
		return 0, ErrNotAttached
	}

	if a.Ref() == 0 {
		return 0, fmt.Errorf("could not get array length: %w", ErrNullReceiver)
	}

	return t.env.GetArrayLength(a.Ref()), nil
}

// ToSlice copies the array into a new slice. Primitive arrays are copied
// with a single region copy, reference arrays element by element; the
// returned elements are scoped references.
func (a Array[T]) ToSlice(ctx context.Context) ([]T, error) {
	t := currentThread(ctx)
	if t == nil {
		return nil, ErrNotAttached
	}

	ref := a.Ref()
	if ref == 0 {
		return nil, fmt.Errorf("could not copy array: %w", ErrNullReceiver)
	}
	if a.elem == nil {
		return nil, fmt.Errorf("could not copy array without element type: %w", ErrArgument)
	}

	length := t.env.GetArrayLength(ref)
	if length < 0 {
		length = 0
	}

	if a.elem.Kind() == KindObject {
		elements := make([]T, 0, length)
		for i := int32(0); i < length; i++ {
			elements = append(elements, any(Wrap(t.env.GetObjectArrayElement(ref, i))).(T))
		}
		return elements, nil
	}

	elements := make([]T, length)
	if length > 0 {
		t.env.GetArrayRegion(ref, 0, elements)
	}
	return elements, nil
}

// CreateArray allocates a primitive array holding a copy of values. An empty
// slice yields an allocated empty array, not a null reference.
func CreateArray[T Primitive](ctx context.Context, values []T) (Array[T], error) {
	elem := PrimitiveTypeOf[T]()
	empty := Array[T]{Object: Wrap(0), elem: elem}

	length, err := arrayLength(len(values))
	if err != nil {
		return empty, err
	}

	t := currentThread(ctx)
	if t == nil {
		return empty, ErrNotAttached
	}

	ref := t.env.NewPrimitiveArray(elem.Kind(), length)
	if ref == 0 {
		return empty, fmt.Errorf("could not create %s array of length %d: %w", elem.Name(), len(values), ErrAllocation)
	}

	if len(values) > 0 {
		t.env.SetArrayRegion(ref, 0, values)
	}

	return Array[T]{Object: Wrap(ref), elem: elem}, nil
}

// CreateObjectArray allocates an array of class elem holding values. The
// element class is resolved through the engine cache.
func CreateObjectArray[E Referent](ctx context.Context, elem *Class, values []E) (Array[*Object], error) {
	empty := Array[*Object]{Object: Wrap(0), elem: elem}

	length, err := arrayLength(len(values))
	if err != nil {
		return empty, err
	}

	t := currentThread(ctx)
	if t == nil {
		return empty, ErrNotAttached
	}

	elemClass, err := t.engine.resolveClass(ctx, t, elem)
	if err != nil {
		return empty, fmt.Errorf("could not create %s array: %w", elem.path, err)
	}

	ref := t.env.NewObjectArray(length, elemClass, 0)
	if ref == 0 {
		return empty, fmt.Errorf("could not create %s array of length %d: %w", elem.path, len(values), ErrAllocation)
	}

	for i := range values {
		t.env.SetObjectArrayElement(ref, int32(i), refOf(values[i]))
	}

	return Array[*Object]{Object: Wrap(ref), elem: elem}, nil
}

// arrayLength checks that n elements fit in a runtime array, whose length is
// a jsize.
func arrayLength(n int) (int32, error) {
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("array of %d elements exceeds the maximum length %d: %w", n, math.MaxInt32, ErrArgument)
	}
	return int32(n), nil
}
