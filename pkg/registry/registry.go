// Package registry tracks live twin instances for one session. Entries exist
// only while a twin is materialized; the durable directory is elsewhere.
package registry

import "sync"

// Registry is the owned table of live instances, keyed by profile name.
// At most one live instance per name is guaranteed by PutIfAbsent.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

func New() *Registry {
	return &Registry{
		instances: make(map[string]*Instance),
	}
}

// PutIfAbsent atomically registers inst under name unless a live instance is
// already present. A dead leftover entry does not block re-spawn; it is
// replaced. Registration wires the instance's termination hook so that an
// instance that terminates on its own always deregisters itself.
func (r *Registry) PutIfAbsent(name string, inst *Instance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.instances[name]; ok && existing.Live() {
		return false
	}

	inst.setOnTerminate(func() {
		r.removeInstance(name, inst)
	})
	r.instances[name] = inst
	return true
}

// Get returns the instance registered under name, if any.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// IsLive reports whether name has a registered, still-live instance.
func (r *Registry) IsLive(name string) bool {
	r.mu.RLock()
	inst, ok := r.instances[name]
	r.mu.RUnlock()
	return ok && inst.Live()
}

// Remove drops the entry for name without terminating it. Callers that want
// the full teardown go through Instance.Terminate, which removes the entry
// via the termination hook.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}

// Len reports how many entries are registered, live or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// removeInstance deletes the entry only if it still maps to inst, so a
// terminating instance never evicts its replacement.
func (r *Registry) removeInstance(name string, inst *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.instances[name]; ok && current == inst {
		delete(r.instances, name)
	}
}
