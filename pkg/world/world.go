package world

import "twinhost/pkg/twin"

// Position is where an embodied twin stands in the session world.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// Locus is the requester's current location: the session channel they issued
// the command from plus their position/orientation within it.
type Locus struct {
	Channel string
	Pos     Position
}

// Entity is one embodied twin. Terminate releases whatever the world
// allocated for it and must be safe to call more than once.
type Entity interface {
	ID() string
	Terminate()
}

// World is the session boundary that materializes twins. Implementations own
// all embodiment resources; construction failure surfaces as a ResourceError.
type World interface {
	SpawnEntity(profile *twin.Profile, at Locus) (Entity, error)
}
