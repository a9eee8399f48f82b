package bot

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"twinhost/pkg/twin"
	"twinhost/pkg/world"
)

// ChannelWorld embodies twins as chat presences: spawning announces the twin
// in the requester's channel, termination announces it leaving. Entity slots
// are bounded so a runaway operator can't flood the session.
type ChannelWorld struct {
	session Session

	mu          sync.Mutex
	maxEntities int
	entities    map[string]*channelEntity
}

func NewChannelWorld(session Session, maxEntities int) *ChannelWorld {
	if maxEntities <= 0 {
		maxEntities = 16
	}
	return &ChannelWorld{
		session:     session,
		maxEntities: maxEntities,
		entities:    make(map[string]*channelEntity),
	}
}

func (w *ChannelWorld) SpawnEntity(profile *twin.Profile, at world.Locus) (world.Entity, error) {
	w.mu.Lock()
	if len(w.entities) >= w.maxEntities {
		w.mu.Unlock()
		return nil, &twin.ResourceError{Reason: fmt.Sprintf("entity limit (%d) reached", w.maxEntities)}
	}

	e := &channelEntity{
		id:      uuid.NewString(),
		name:    profile.DisplayName,
		channel: at.Channel,
		world:   w,
	}
	w.entities[e.id] = e
	w.mu.Unlock()

	announcement := fmt.Sprintf("✨ %s appeared!", profile.DisplayName)
	if profile.MinecraftUsername != "" {
		announcement = fmt.Sprintf("✨ %s appeared! (skin: %s)", profile.DisplayName, profile.MinecraftUsername)
	}
	if _, err := w.session.ChannelMessageSend(at.Channel, announcement); err != nil {
		log.Printf("Error announcing spawn of %s: %v", profile.DisplayName, err)
	}

	return e, nil
}

type channelEntity struct {
	id      string
	name    string
	channel string
	world   *ChannelWorld
	once    sync.Once
}

func (e *channelEntity) ID() string { return e.id }

func (e *channelEntity) Terminate() {
	e.once.Do(func() {
		e.world.mu.Lock()
		delete(e.world.entities, e.id)
		e.world.mu.Unlock()

		if _, err := e.world.session.ChannelMessageSend(e.channel, fmt.Sprintf("💨 %s left.", e.name)); err != nil {
			log.Printf("Error announcing removal of %s: %v", e.name, err)
		}
	})
}
