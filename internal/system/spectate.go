package system

import (
	"time"

	"github.com/duskfall/server/internal/config"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/world"
)

// SpectateSystem flips DEAD players to SPECTATING after a short delay, once
// the death camera has had its moment.
// Phase 2 (PostUpdate).
type SpectateSystem struct {
	registry *lobby.Registry
	cfg      config.GameConfig
	now      func() time.Time
}

func NewSpectateSystem(registry *lobby.Registry, cfg config.GameConfig) *SpectateSystem {
	return &SpectateSystem{registry: registry, cfg: cfg, now: time.Now}
}

func (s *SpectateSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpectateSystem) Update(_ time.Duration) {
	now := s.now()
	s.registry.AllLobbies(func(l *world.Lobby) {
		l.AllPlayers(func(p *world.Player) {
			if p.State == world.StateDead && now.Sub(p.DiedAt) >= s.cfg.SpectateDelay {
				p.State = world.StateSpectating
			}
		})
	})
}
