package checkpoint

import (
	"sync"

	"github.com/flowhive/supervisor/core"
)

// InMemory is a thread-safe, process-local checkpointer keyed by thread ID.
// Stored states are cloned on both write and read so callers can never
// mutate a snapshot after the fact.
type InMemory struct {
	mu     sync.RWMutex
	states map[string]*core.State
}

// NewInMemory creates an empty in-memory checkpointer.
func NewInMemory() *InMemory {
	return &InMemory{states: make(map[string]*core.State)}
}

// Get returns the latest snapshot for a thread, if any.
func (c *InMemory) Get(threadID string) (*core.State, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state, ok := c.states[threadID]
	if !ok {
		return nil, false, nil
	}
	return state.Clone(), true, nil
}

// Put stores a snapshot for a thread, replacing any previous one.
func (c *InMemory) Put(threadID string, state *core.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states[threadID] = state.Clone()
	return nil
}

// Delete removes a thread's snapshot.
func (c *InMemory) Delete(threadID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.states, threadID)
}
