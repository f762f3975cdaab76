package llm

import (
	"fmt"
	"sync"
)

// ModelRoster hands out model names to agents at session construction.
// Assignment is round-robin so a multi-model roster spreads agents across
// models deterministically (the position in the pool decides the model, not
// chance - re-running a session assigns the same models).
type ModelRoster struct {
	mu     sync.Mutex
	models []string
	next   int
}

// NewModelRoster creates a roster over the configured model names.
func NewModelRoster(models []string) (*ModelRoster, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("model roster cannot be empty")
	}

	owned := make([]string, len(models))
	copy(owned, models)

	return &ModelRoster{models: owned}, nil
}

// Next returns the next model in round-robin order.
func (r *ModelRoster) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	model := r.models[r.next%len(r.models)]
	r.next++
	return model
}

// Models returns a copy of the roster's model names.
func (r *ModelRoster) Models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.models))
	copy(out, r.models)
	return out
}
