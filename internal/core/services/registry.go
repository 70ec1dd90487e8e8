package services

import (
	"sync"

	"github.com/evidentia-labs/evidentia/internal/core/domain"
)

// TaskRegistry is the in-memory task-state map keyed by document id.
// It is the only shared mutable structure in the scheduler; every
// read-modify-write goes through its mutex.
type TaskRegistry struct {
	mu     sync.Mutex
	states map[string]domain.TaskState
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		states: make(map[string]domain.TaskState),
	}
}

// Get returns the recorded state for a document and whether one exists.
func (r *TaskRegistry) Get(id domain.DocID) (domain.TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[id.String()]
	return state, ok
}

// Set records the state for a document unconditionally.
func (r *TaskRegistry) Set(id domain.DocID, state domain.TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[id.String()] = state
}

// CompareAndSwap transitions the document from old to new atomically.
// It returns false when the current state is not old, which is how job
// submission is gated to one extraction per document.
func (r *TaskRegistry) CompareAndSwap(id domain.DocID, old, new domain.TaskState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := id.String()
	if r.states[key] != old {
		return false
	}
	r.states[key] = new
	return true
}
