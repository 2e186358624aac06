package atlas

import (
	"sort"
	"sync"
)

// Registry stores the atlases managed by Sync.
type Registry struct {
	atlases map[string]*Instance
	mu      sync.RWMutex
}

// NewRegistry creates a new atlas registry.
func NewRegistry() *Registry {
	return &Registry{
		atlases: make(map[string]*Instance),
	}
}

// Set adds an atlas instance to the registry.
func (r *Registry) Set(instance *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.atlases[instance.Name] = instance
}

// Get returns the atlas instance with the given name.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.atlases[name]
	return instance, ok
}

// List returns all atlas instances sorted by name.
func (r *Registry) List() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instances := make([]*Instance, 0, len(r.atlases))
	for _, instance := range r.atlases {
		instances = append(instances, instance)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].Name < instances[j].Name })

	return instances
}

// Delete deletes the atlas instance with the given name.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.atlases, name)
}
