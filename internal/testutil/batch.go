package testutil

import (
	"fmt"
	"sync"
)

// SequentialBatchIDs generates "<prefix>-1", "<prefix>-2", ... so tests can
// assert on batch ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialBatchIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequentialBatchIDs creates a generator. An empty prefix means "batch".
func NewSequentialBatchIDs(prefix string) *SequentialBatchIDs {
	if prefix == "" {
		prefix = "batch"
	}
	return &SequentialBatchIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialBatchIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequentialBatchIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
