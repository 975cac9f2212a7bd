package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialBatchIDs_Sequence(t *testing.T) {
	gen := NewSequentialBatchIDs("import")

	assert.Equal(t, "import-1", gen.Generate())
	assert.Equal(t, "import-2", gen.Generate())

	gen.Reset()
	assert.Equal(t, "import-1", gen.Generate())
}

func TestSequentialBatchIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "batch-1", NewSequentialBatchIDs("").Generate())
}

func TestSequentialBatchIDs_ThreadSafe(t *testing.T) {
	gen := NewSequentialBatchIDs("")

	var mu sync.Mutex
	seen := map[string]bool{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every id is distinct.
	assert.Len(t, seen, 1000)
}
