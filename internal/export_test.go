package jnibind

func (m *member) declaration() *member {
	return m
}

// HoldMemberEntry read-locks the cache entry of m until the returned function
// is called.
func HoldMemberEntry(e IEngine, m interface{ declaration() *member }) (release func()) {
	entry := e.(*engine).cache.Load().member(m.declaration().id)
	entry.mu.RLock()
	return entry.mu.RUnlock
}

var ArrayLength = arrayLength
