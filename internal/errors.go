package jnibind

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAttached is returned by every operation performed with a context
	// that carries no live thread binding.
	ErrNotAttached = errors.New("thread is not attached to the runtime")

	// ErrUnresolved is returned when a class, field or method could not be
	// found by the runtime. The failure is cached, the binding stays inert.
	ErrUnresolved = errors.New("binding could not be resolved")

	ErrNullReceiver         = errors.New("receiver is null")
	ErrIncompatibleReceiver = errors.New("receiver is not an instance of the declaring class")
	ErrStaticMismatch       = errors.New("member is accessed with the wrong staticness")
	ErrArgument             = errors.New("invalid argument")
	ErrPromotion            = errors.New("runtime refused to create a global reference")
	ErrAllocation           = errors.New("runtime could not allocate the value")
)

// ResolutionError describes a failed class or member lookup.
type ResolutionError struct {
	// What is "class", "fieldID" or "methodID".
	What      string
	Class     string
	Name      string
	Signature string
}

func (e *ResolutionError) Error() string {
	if e.What == "class" {
		return fmt.Sprintf("failed to find class: %s", e.Class)
	}
	return fmt.Sprintf("failed to find %s: %s %s (in %s)", e.What, e.Name, e.Signature, e.Class)
}

func (e *ResolutionError) Unwrap() error {
	return ErrUnresolved
}
