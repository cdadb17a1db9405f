package engine

import (
	"fmt"
	"sort"
)

// Constructor builds a strategy instance from its parameters.
type Constructor func(params Params) (Strategy, error)

// Registry maps strategy keys to constructors. It is built once at startup
// and passed by reference wherever lookup is needed; there is deliberately no
// package-level registry.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor under the given key. Registering the same key
// twice is a programming error and is rejected.
func (r *Registry) Register(key string, ctor Constructor) error {
	if _, ok := r.constructors[key]; ok {
		return fmt.Errorf("strategy %q already registered", key)
	}
	r.constructors[key] = ctor
	return nil
}

// Create instantiates the strategy registered under key.
func (r *Registry) Create(key string, params Params) (Strategy, error) {
	ctor, ok := r.constructors[key]
	if !ok {
		return nil, fmt.Errorf("strategy %q not found, available: %v", key, r.List())
	}
	return ctor(params)
}

// List returns the sorted registered keys.
func (r *Registry) List() []string {
	keys := make([]string, 0, len(r.constructors))
	for key := range r.constructors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
