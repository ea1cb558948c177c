package core

import "strconv"

// ActorID is a stable integer handle into the actor arena
// A destroyed actor is a handle no longer present in the arena
type ActorID uint32

// NoActor is the zero handle, never assigned to a live actor
const NoActor ActorID = 0

func (id ActorID) String() string {
	if id == NoActor {
		return "actor:none"
	}
	return "actor:" + strconv.FormatUint(uint64(id), 10)
}
