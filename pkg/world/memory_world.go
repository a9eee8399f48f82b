package world

import (
	"sync"

	"github.com/google/uuid"

	"twinhost/pkg/twin"
)

// MemoryWorld is an in-process world with a bounded entity budget. It backs
// local runs and tests; the Discord-backed world lives in pkg/bot.
type MemoryWorld struct {
	mu          sync.Mutex
	maxEntities int
	entities    map[string]*memoryEntity
}

func NewMemoryWorld(maxEntities int) *MemoryWorld {
	if maxEntities <= 0 {
		maxEntities = 16
	}
	return &MemoryWorld{
		maxEntities: maxEntities,
		entities:    make(map[string]*memoryEntity),
	}
}

func (w *MemoryWorld) SpawnEntity(profile *twin.Profile, at Locus) (Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.entities) >= w.maxEntities {
		return nil, &twin.ResourceError{Reason: "entity budget exhausted"}
	}

	e := &memoryEntity{
		id:    uuid.NewString(),
		world: w,
	}
	w.entities[e.id] = e
	return e, nil
}

// EntityCount reports how many entities are currently materialized.
func (w *MemoryWorld) EntityCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entities)
}

type memoryEntity struct {
	id    string
	world *MemoryWorld
	once  sync.Once
}

func (e *memoryEntity) ID() string { return e.id }

func (e *memoryEntity) Terminate() {
	e.once.Do(func() {
		e.world.mu.Lock()
		defer e.world.mu.Unlock()
		delete(e.world.entities, e.id)
	})
}
