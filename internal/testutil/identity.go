package testutil

import (
	"fmt"
	"sync"
)

// SequentialIdentity generates deterministic instance IDs: prefix-1,
// prefix-2, and so on.
//
// This replaces the production UUIDv7 generator in tests so instance
// IDs are stable across runs and golden traces compare byte-identical.
//
// Thread-safety: Safe for concurrent use via internal mutex.
type SequentialIdentity struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIdentity creates a generator with the given ID prefix.
//
// If prefix is empty, "obj" is used.
func NewSequentialIdentity(prefix string) *SequentialIdentity {
	if prefix == "" {
		prefix = "obj"
	}
	return &SequentialIdentity{prefix: prefix}
}

// NewID returns the next deterministic ID.
//
// Implements object.IdentityGenerator.
func (g *SequentialIdentity) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset(), the next NewID() returns
// prefix-1 again.
func (g *SequentialIdentity) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
