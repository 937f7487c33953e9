package store

import (
	"sync"

	"github.com/chazu/javelin/capsule"
)

// Index is an in-memory content-addressed index of loaded methods,
// keyed by capsule digest. A batch run uses it to skip duplicate
// capsules without touching the database.
type Index struct {
	mu      sync.RWMutex
	methods map[[32]byte]*capsule.Method
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{methods: make(map[[32]byte]*capsule.Method)}
}

// Add indexes a method under its digest and reports whether the digest
// was newly added. Re-adding replaces the method. Methods with a zero
// digest are silently ignored.
func (ix *Index) Add(d [32]byte, m *capsule.Method) bool {
	if d == ([32]byte{}) {
		return false
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, exists := ix.methods[d]
	ix.methods[d] = m
	return !exists
}

// Lookup returns the method for the given digest, or nil.
func (ix *Index) Lookup(d [32]byte) *capsule.Method {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.methods[d]
}

// Has returns true if the index contains the digest.
func (ix *Index) Has(d [32]byte) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.methods[d]
	return ok
}

// Len returns the number of indexed methods.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.methods)
}
