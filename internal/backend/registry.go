package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownProvider is returned by Select for identifiers not in the registry.
var ErrUnknownProvider = errors.New("unknown provider")

// Registry maps provider identifiers to backend definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates a registry holding defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a definition. Identifiers must be unique.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("duplicate backend id: %s", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	return def, ok
}

// Select returns the definition for id or an error wrapping ErrUnknownProvider.
func (r *Registry) Select(id string) (Definition, error) {
	id = strings.TrimSpace(id)
	if def, ok := r.Lookup(id); ok {
		return def, nil
	}
	return Definition{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProvider, id, strings.Join(r.IDs(), ", "))
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
