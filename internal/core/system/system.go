package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: dispatch last tick's events
	PhaseUpdate                  // 1: monster AI, spawning
	PhasePostUpdate              // 2: regen, shrink, respawns, timeouts, match end
	PhaseOutput                  // 3: snapshot broadcast + session flush
	PhaseCleanup                 // 4: lobby GC, dead session reap
)

// System is the interface every per-tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
