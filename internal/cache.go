package jnibind

import (
	"sync"
)

// classEntry caches the promoted class reference of one class declaration.
// A resolved entry with a zero ref records a failed lookup.
type classEntry struct {
	mu       sync.RWMutex
	resolved bool
	ref      Ref
}

// memberEntry caches the identifier of one field or method declaration
// together with the class reference it was resolved against.
type memberEntry struct {
	mu       sync.RWMutex
	resolved bool
	class    Ref
	id       uintptr
}

// descriptorCache holds the resolution state of every declaration that has
// been used with an engine. Entries are created on first use and live until
// the engine is shut down.
type descriptorCache struct {
	mu      sync.RWMutex
	classes map[uint64]*classEntry
	members map[uint64]*memberEntry
}

func newDescriptorCache() *descriptorCache {
	return &descriptorCache{
		classes: map[uint64]*classEntry{},
		members: map[uint64]*memberEntry{},
	}
}

func (c *descriptorCache) class(id uint64) *classEntry {
	c.mu.RLock()
	entry, ok := c.classes[id]
	c.mu.RUnlock()
	if ok {
		return entry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok = c.classes[id]
	if !ok {
		entry = &classEntry{}
		c.classes[id] = entry
	}
	return entry
}

func (c *descriptorCache) member(id uint64) *memberEntry {
	c.mu.RLock()
	entry, ok := c.members[id]
	c.mu.RUnlock()
	if ok {
		return entry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok = c.members[id]
	if !ok {
		entry = &memberEntry{}
		c.members[id] = entry
	}
	return entry
}

func (c *descriptorCache) len() (classes int, members int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.classes), len(c.members)
}
