package system

import (
	"time"

	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// BroadcastSystem serializes world snapshots and pushes buffered output to
// the write goroutines.
// Phase 3 (Output).
//
// The simulation runs every tick; snapshots only go out every Nth tick, where
// N = sim rate / broadcast rate. Buffered messages from handlers and other
// systems flush every tick regardless.
type BroadcastSystem struct {
	registry *lobby.Registry
	sessions *net.SessionTable
	every    uint64
	tick     uint64
	now      func() time.Time
}

func NewBroadcastSystem(registry *lobby.Registry, sessions *net.SessionTable, simHz, broadcastHz int) *BroadcastSystem {
	every := uint64(1)
	if broadcastHz > 0 && simHz > broadcastHz {
		every = uint64(simHz / broadcastHz)
	}
	return &BroadcastSystem{
		registry: registry,
		sessions: sessions,
		every:    every,
		now:      time.Now,
	}
}

func (s *BroadcastSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *BroadcastSystem) Update(_ time.Duration) {
	s.tick++
	if s.tick%s.every == 0 {
		now := s.now()
		s.registry.AllLobbies(func(l *world.Lobby) {
			if l.Active {
				s.broadcastSnapshot(l, now)
			}
		})
	}
	s.sessions.Each(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

func (s *BroadcastSystem) broadcastSnapshot(l *world.Lobby, now time.Time) {
	payload := net.Encode(net.MsgStateUpdate, s.snapshot(l, now))
	l.AllPlayers(func(p *world.Player) {
		p.Send(payload)
	})
}

func (s *BroadcastSystem) snapshot(l *world.Lobby, now time.Time) net.StateUpdatePayload {
	snap := net.StateUpdatePayload{
		Tick:       s.tick,
		MatchMS:    l.MatchTime(now).Milliseconds(),
		SafeRadius: l.Arena.SafeRadius,
		Players:    make([]net.PlayerSnapshot, 0, l.PlayerCount()),
		Monsters:   make([]net.MonsterSnapshot, 0, l.MonsterCount()),
		Orbs:       make([]net.OrbSnapshot, 0, l.OrbCount()),
	}
	l.AllPlayers(func(p *world.Player) {
		snap.Players = append(snap.Players, net.PlayerSnapshot{
			ID:         p.ID,
			Username:   p.Username,
			Pos:        wireVec(p.Pos),
			Rot:        net.Rot{Pitch: p.Rot.Pitch, Yaw: p.Rot.Yaw},
			Health:     p.Health,
			MaxHealth:  p.MaxHealth,
			Score:      p.Score,
			State:      p.State.String(),
			Attachment: p.Attachment.String(),
			AttachedTo: p.AttachedTo,
		})
	})
	l.AllMonsters(func(m *world.Monster) {
		snap.Monsters = append(snap.Monsters, net.MonsterSnapshot{
			ID:        m.ID,
			Archetype: m.Archetype,
			Pos:       wireVec(m.Pos),
			Gaze:      wireVec(m.Gaze),
			State:     m.State.String(),
		})
	})
	l.AllOrbs(func(o *world.Orb) {
		if o.Collected {
			return
		}
		snap.Orbs = append(snap.Orbs, net.OrbSnapshot{
			ID:    o.ID,
			Pos:   wireVec(o.Pos),
			Value: o.Value,
		})
	})
	return snap
}

func wireVec(v world.Vec3) net.Vec {
	return net.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
