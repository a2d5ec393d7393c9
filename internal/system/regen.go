package system

import (
	"time"

	"github.com/duskfall/server/internal/config"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/world"
)

// RegenSystem trickles health back to living players in active matches.
// Phase 2 (PostUpdate) — runs every tick, an absolute timestamp gates the
// actual regen pulse.
type RegenSystem struct {
	registry *lobby.Registry
	cfg      config.RegenConfig
	nextAt   time.Time
	now      func() time.Time
}

func NewRegenSystem(registry *lobby.Registry, cfg config.RegenConfig) *RegenSystem {
	return &RegenSystem{registry: registry, cfg: cfg, now: time.Now}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(_ time.Duration) {
	now := s.now()
	if now.Before(s.nextAt) {
		return
	}
	s.nextAt = now.Add(s.cfg.Interval)

	s.registry.AllLobbies(func(l *world.Lobby) {
		if !l.Active {
			return
		}
		l.AllPlayers(func(p *world.Player) {
			l.RegenPlayer(p.ID, s.cfg.Amount)
		})
	})
}
