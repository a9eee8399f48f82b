package registry

import (
	"sync"

	"twinhost/pkg/world"
)

// Instance is one materialized twin. It holds a non-owning back-reference to
// the profile name; the profile outlives the instance.
type Instance struct {
	ProfileName string
	Pos         world.Position

	mu          sync.Mutex
	entity      world.Entity
	live        bool
	onTerminate func()
}

func NewInstance(profileName string, entity world.Entity, pos world.Position) *Instance {
	return &Instance{
		ProfileName: profileName,
		Pos:         pos,
		entity:      entity,
		live:        true,
	}
}

// EntityID returns the world entity's identifier.
func (i *Instance) EntityID() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.entity == nil {
		return ""
	}
	return i.entity.ID()
}

// Live reports whether the embodiment is still materialized.
func (i *Instance) Live() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.live
}

// Terminate releases the world entity and fires the deregistration hook.
// Idempotent: only the first call has any effect.
func (i *Instance) Terminate() {
	i.mu.Lock()
	if !i.live {
		i.mu.Unlock()
		return
	}
	i.live = false
	entity := i.entity
	hook := i.onTerminate
	i.mu.Unlock()

	if entity != nil {
		entity.Terminate()
	}
	if hook != nil {
		hook()
	}
}

func (i *Instance) setOnTerminate(fn func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onTerminate = fn
}
