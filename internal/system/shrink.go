package system

import (
	"time"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/core/event"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/world"
)

// ShrinkSystem contracts the arena once the shrink phase begins and hurts
// players caught outside the safe radius.
// Phase 2 (PostUpdate).
type ShrinkSystem struct {
	registry *lobby.Registry
	cfg      config.ArenaConfig
	bus      *event.Bus
	now      func() time.Time
}

func NewShrinkSystem(registry *lobby.Registry, cfg config.ArenaConfig, bus *event.Bus) *ShrinkSystem {
	return &ShrinkSystem{registry: registry, cfg: cfg, bus: bus, now: time.Now}
}

func (s *ShrinkSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ShrinkSystem) Update(dt time.Duration) {
	now := s.now()
	s.registry.AllLobbies(func(l *world.Lobby) {
		if !l.Active {
			return
		}
		l.Arena.SetSafeRadius(s.radiusAt(l.MatchTime(now), l.Arena.InitialRadius, l.Arena.FinalRadius))
		s.damageOutside(l, dt, now)
	})
}

// radiusAt interpolates linearly from the initial to the final radius over
// the shrink window.
func (s *ShrinkSystem) radiusAt(elapsed time.Duration, initial, final float64) float64 {
	if elapsed <= s.cfg.ShrinkStart {
		return initial
	}
	progress := float64(elapsed-s.cfg.ShrinkStart) / float64(s.cfg.ShrinkDuration)
	if progress >= 1 {
		return final
	}
	return initial - (initial-final)*progress
}

func (s *ShrinkSystem) damageOutside(l *world.Lobby, dt time.Duration, now time.Time) {
	if s.cfg.OutsideDamagePerS <= 0 {
		return
	}
	dmg := s.cfg.OutsideDamagePerS * dt.Seconds()
	l.AllPlayers(func(p *world.Player) {
		if !p.Alive() || l.Arena.InBounds(p.Pos) {
			return
		}
		if l.DamagePlayer(p.ID, dmg, now) {
			event.Emit(s.bus, PlayerDiedEvent{
				LobbyCode: l.Code,
				PlayerID:  p.ID,
			})
		}
	})
}
