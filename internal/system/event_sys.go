package system

import (
	"time"

	"github.com/duskfall/server/internal/core/event"
	coresys "github.com/duskfall/server/internal/core/system"
)

// EventSystem rotates the event bus at tick start and dispatches everything
// emitted during the previous tick.
// Phase 0 (PreUpdate) — must run before any other system.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
