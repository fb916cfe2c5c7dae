package jnitest

import (
	"fmt"

	"github.com/jerbob92/jnibind"
)

// handle is one entry of the reference table. Local handles belong to the
// Env that created them, global handles can be used from any Env.
type handle struct {
	object *Object
	global bool
	env    *Env
}

// handleTable hands out references. Handles are never reused, so a stale or
// double released reference is always detected.
type handleTable struct {
	allocated []*handle
	live      int
	globals   int
}

func newHandleTable() *handleTable {
	// Slot 0 is reserved so that the zero reference is always null.
	return &handleTable{allocated: []*handle{nil}}
}

func (ht *handleTable) get(ref jnibind.Ref) (*handle, error) {
	id := int(ref)
	if id < 1 || id > len(ht.allocated)-1 {
		return nil, fmt.Errorf("invalid reference: %d", id)
	}

	h := ht.allocated[id]
	if h == nil {
		return nil, fmt.Errorf("reference %d was already released", id)
	}
	return h, nil
}

func (ht *handleTable) allocate(h *handle) jnibind.Ref {
	id := len(ht.allocated)
	ht.allocated = append(ht.allocated, h)
	ht.live++
	if h.global {
		ht.globals++
	}
	return jnibind.Ref(id)
}

func (ht *handleTable) free(ref jnibind.Ref) error {
	h, err := ht.get(ref)
	if err != nil {
		return err
	}

	ht.allocated[int(ref)] = nil
	ht.live--
	if h.global {
		ht.globals--
	}
	return nil
}
