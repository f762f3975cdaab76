package agent

import "fmt"

// Pool holds the session's actors in a fixed order. Lookups are by unique
// name; iteration order is insertion order, which the scheduler relies on
// for deterministic fallbacks.
type Pool struct {
	actors []Actor
	byName map[string]Actor
}

// NewPool validates every descriptor and rejects duplicate names.
func NewPool(actors ...Actor) (*Pool, error) {
	if len(actors) == 0 {
		return nil, fmt.Errorf("agent pool cannot be empty")
	}

	p := &Pool{
		actors: make([]Actor, 0, len(actors)),
		byName: make(map[string]Actor, len(actors)),
	}
	for _, a := range actors {
		desc := a.Descriptor()
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid agent descriptor: %w", err)
		}
		if _, exists := p.byName[desc.Name]; exists {
			return nil, fmt.Errorf("duplicate agent name: %s", desc.Name)
		}
		p.byName[desc.Name] = a
		p.actors = append(p.actors, a)
	}
	return p, nil
}

// Get returns the actor with the given name.
func (p *Pool) Get(name string) (Actor, bool) {
	a, ok := p.byName[name]
	return a, ok
}

// Len returns the number of actors in the pool.
func (p *Pool) Len() int {
	return len(p.actors)
}

// Names returns all agent names in pool order.
func (p *Pool) Names() []string {
	names := make([]string, len(p.actors))
	for i, a := range p.actors {
		names[i] = a.Descriptor().Name
	}
	return names
}

// Descriptors returns a copy of every actor's descriptor in pool order.
func (p *Pool) Descriptors() []Descriptor {
	descs := make([]Descriptor, len(p.actors))
	for i, a := range p.actors {
		descs[i] = a.Descriptor()
	}
	return descs
}

// Critics returns the names of all critic-role actors in pool order.
func (p *Pool) Critics() []string {
	var names []string
	for _, a := range p.actors {
		if desc := a.Descriptor(); desc.IsCritic() {
			names = append(names, desc.Name)
		}
	}
	return names
}

// ByNames resolves names to actors, skipping any that are not in the pool.
func (p *Pool) ByNames(names []string) []Actor {
	actors := make([]Actor, 0, len(names))
	for _, name := range names {
		if a, ok := p.byName[name]; ok {
			actors = append(actors, a)
		}
	}
	return actors
}
