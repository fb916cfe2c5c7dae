package jnibind

import (
	"context"
	"fmt"
)

// Frame is a local reference frame. Every scoped reference created while the
// frame is the innermost one is released when it is popped.
type Frame struct {
	env    Env
	popped bool
}

// PushFrame pushes a local frame with room for capacity local references.
// A capacity of 0 or less uses the capacity configured on the engine.
func PushFrame(ctx context.Context, capacity int32) (*Frame, error) {
	t := currentThread(ctx)
	if t == nil {
		return nil, ErrNotAttached
	}

	if capacity <= 0 {
		capacity = t.engine.config.GetFrameCapacity()
	}

	if t.env.PushLocalFrame(capacity) < 0 {
		if t.env.ExceptionCheck() {
			t.env.ExceptionClear()
		}
		return nil, fmt.Errorf("could not push local frame with capacity %d: %w", capacity, ErrAllocation)
	}

	return &Frame{env: t.env}, nil
}

// Pop pops the frame. Popping more than once is a no-op.
func (f *Frame) Pop() {
	if f == nil || f.popped {
		return
	}
	f.popped = true
	f.env.PopLocalFrame(0)
}

// PopWith pops the frame and returns a scoped reference, valid in the
// enclosing frame, to the object result refers to.
func (f *Frame) PopWith(result Referent) *Object {
	if f == nil || f.popped {
		return Wrap(0)
	}
	f.popped = true
	return Wrap(f.env.PopLocalFrame(refOf(result)))
}
