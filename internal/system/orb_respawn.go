package system

import (
	"time"

	"github.com/duskfall/server/internal/config"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/world"
)

// OrbRespawnSystem replaces collected orbs after the respawn delay so the
// arena's total orb count holds steady through a match.
// Phase 2 (PostUpdate).
type OrbRespawnSystem struct {
	registry *lobby.Registry
	cfg      config.OrbConfig
	now      func() time.Time
}

func NewOrbRespawnSystem(registry *lobby.Registry, cfg config.OrbConfig) *OrbRespawnSystem {
	return &OrbRespawnSystem{registry: registry, cfg: cfg, now: time.Now}
}

func (s *OrbRespawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *OrbRespawnSystem) Update(_ time.Duration) {
	now := s.now()
	s.registry.AllLobbies(func(l *world.Lobby) {
		if !l.Active {
			return
		}
		var expired []string
		l.AllOrbs(func(o *world.Orb) {
			if o.Collected && now.Sub(o.CollectedAt) >= s.cfg.RespawnDelay {
				expired = append(expired, o.ID)
			}
		})
		for _, id := range expired {
			l.RemoveOrb(id)
			l.AddOrb(l.Arena.RandomPosition(l.Rng(), 0.5), s.cfg.Value)
		}
	})
}
