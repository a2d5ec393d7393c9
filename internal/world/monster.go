package world

import "time"

// BehaviorState is a monster's AI state.
type BehaviorState uint8

const (
	MonsterRoaring BehaviorState = iota // spawn entry state, immobile
	MonsterIdle
	MonsterHunting
	MonsterLost
)

func (s BehaviorState) String() string {
	switch s {
	case MonsterRoaring:
		return "ROARING"
	case MonsterIdle:
		return "IDLE"
	case MonsterHunting:
		return "HUNTING"
	case MonsterLost:
		return "LOST"
	}
	return "UNKNOWN"
}

// Monster is one AI-controlled hunter in a lobby.
// TargetID is non-empty only in HUNTING and always names an ALIVE player;
// it is cleared when the target dies or disconnects.
type Monster struct {
	ID        string
	Archetype string

	Pos  Vec3
	Gaze Vec3

	Health    float64
	MaxHealth float64

	State             BehaviorState
	TargetID          string
	LastSeenTargetPos Vec3
	LastSightTime     time.Time
	NextAttackTime    time.Time
	SpawnTime         time.Time

	// Wander heading while IDLE/LOST; renewed when WanderUntil passes.
	WanderDir   Vec3
	WanderUntil time.Time
}
