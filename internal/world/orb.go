package world

import "time"

// Orb is a collectible score pickup. Collected is monotonic: once set it
// stays set until the respawn system replaces the orb with a fresh one.
type Orb struct {
	ID          string
	Pos         Vec3
	Value       int
	Collected   bool
	CollectedAt time.Time
}
