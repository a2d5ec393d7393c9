package system

import (
	"time"

	"github.com/duskfall/server/internal/core/event"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/data"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/scripting"
	"github.com/duskfall/server/internal/world"
)

// MonsterAISystem drives every monster's behavior state machine.
// Phase 1 (Update).
//
// Go owns sensing, chasing and attacking; Lua only picks wander headings for
// monsters that are not aware of a target. A missing or broken script falls
// back to the built-in bounded wander.
type MonsterAISystem struct {
	registry *lobby.Registry
	monsters *data.MonsterTable
	lua      *scripting.Engine
	bus      *event.Bus
	now      func() time.Time
}

func NewMonsterAISystem(registry *lobby.Registry, monsters *data.MonsterTable, lua *scripting.Engine, bus *event.Bus) *MonsterAISystem {
	return &MonsterAISystem{
		registry: registry,
		monsters: monsters,
		lua:      lua,
		bus:      bus,
		now:      time.Now,
	}
}

func (s *MonsterAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MonsterAISystem) Update(dt time.Duration) {
	now := s.now()
	s.registry.AllLobbies(func(l *world.Lobby) {
		if !l.Active {
			return
		}
		l.AllMonsters(func(m *world.Monster) {
			s.tickMonster(l, m, dt, now)
		})
	})
}

func (s *MonsterAISystem) tickMonster(l *world.Lobby, m *world.Monster, dt time.Duration, now time.Time) {
	arch := s.monsters.Get(m.Archetype)
	if arch == nil {
		return
	}

	switch m.State {
	case world.MonsterRoaring:
		// Immobile on entry; the roar is the players' warning.
		if now.Sub(m.SpawnTime) >= time.Duration(arch.RoarDurationMS)*time.Millisecond {
			m.State = world.MonsterIdle
		}

	case world.MonsterIdle:
		if s.acquireTarget(l, m, arch, now) {
			return
		}
		s.wander(l, m, arch, dt, now, false)

	case world.MonsterHunting:
		s.hunt(l, m, arch, dt, now)

	case world.MonsterLost:
		if s.acquireTarget(l, m, arch, now) {
			return
		}
		if now.Sub(m.LastSightTime) >= time.Duration(arch.SearchDurationMS)*time.Millisecond {
			m.State = world.MonsterIdle
			return
		}
		// Head for the last known position, then sweep around it.
		if world.PlanarDist(m.Pos, m.LastSeenTargetPos) > 1.0 {
			s.moveToward(l, m, m.LastSeenTargetPos, arch.MoveSpeed, dt)
		} else {
			s.wander(l, m, arch, dt, now, true)
		}
	}
}

// acquireTarget scans for the nearest visible alive player. Detection is
// planar distance only; obstacles do not occlude.
func (s *MonsterAISystem) acquireTarget(l *world.Lobby, m *world.Monster, arch *data.MonsterArchetype, now time.Time) bool {
	target := s.nearestAlive(l, m.Pos, arch.VisionRange)
	if target == nil {
		return false
	}
	m.State = world.MonsterHunting
	m.TargetID = target.ID
	m.LastSeenTargetPos = target.Pos
	m.LastSightTime = now
	return true
}

func (s *MonsterAISystem) nearestAlive(l *world.Lobby, from world.Vec3, radius float64) *world.Player {
	var best *world.Player
	bestDist := radius
	l.AllPlayers(func(p *world.Player) {
		if !p.Alive() {
			return
		}
		d := world.PlanarDist(from, p.Pos)
		if d <= bestDist {
			bestDist = d
			best = p
		}
	})
	return best
}

func (s *MonsterAISystem) hunt(l *world.Lobby, m *world.Monster, arch *data.MonsterArchetype, dt time.Duration, now time.Time) {
	target := l.Player(m.TargetID)
	if target == nil || !target.Alive() {
		// Nothing left to hunt; no point searching a corpse.
		m.TargetID = ""
		m.State = world.MonsterIdle
		return
	}

	dist := world.PlanarDist(m.Pos, target.Pos)
	if dist <= arch.VisionRange {
		m.LastSeenTargetPos = target.Pos
		m.LastSightTime = now
	} else if now.Sub(m.LastSightTime) >= time.Duration(arch.LoseSightMS)*time.Millisecond {
		m.TargetID = ""
		m.State = world.MonsterLost
		return
	}

	if dist <= arch.AttackRange {
		m.Gaze = target.Pos.Sub(m.Pos).PlanarNormalized()
		if !now.Before(m.NextAttackTime) {
			// Damage scales off the victim's own pool, so every archetype
			// kills any player in the same number of hits.
			dmg := target.MaxHealth * arch.AttackDamagePercent
			if l.DamagePlayer(target.ID, dmg, now) {
				event.Emit(s.bus, PlayerDiedEvent{
					LobbyCode: l.Code,
					PlayerID:  target.ID,
					KillerID:  m.ID,
				})
				m.TargetID = ""
				m.State = world.MonsterIdle
			}
			m.NextAttackTime = now.Add(time.Duration(arch.AttackIntervalMS) * time.Millisecond)
		}
		return
	}

	s.moveToward(l, m, m.LastSeenTargetPos, arch.MoveSpeed, dt)
}

func (s *MonsterAISystem) moveToward(l *world.Lobby, m *world.Monster, dest world.Vec3, speed float64, dt time.Duration) {
	dir := dest.Sub(m.Pos).PlanarNormalized()
	if dir.PlanarLen() == 0 {
		return
	}
	next := l.Arena.Clamp(m.Pos.Add(dir.Scale(speed * dt.Seconds())))
	if l.Arena.BlockedByObstacle(next, 0.5) {
		// Slide along whichever axis stays clear.
		slideX := world.Vec3{X: next.X, Y: m.Pos.Y, Z: m.Pos.Z}
		slideZ := world.Vec3{X: m.Pos.X, Y: m.Pos.Y, Z: next.Z}
		switch {
		case !l.Arena.BlockedByObstacle(slideX, 0.5):
			next = slideX
		case !l.Arena.BlockedByObstacle(slideZ, 0.5):
			next = slideZ
		default:
			return
		}
	}
	m.Pos = next
	m.Gaze = dir
}

// wander drifts a monster that has no target. Lua decides the heading; the
// fallback turns a fresh random heading every two seconds and steers away
// from the arena edge.
func (s *MonsterAISystem) wander(l *world.Lobby, m *world.Monster, arch *data.MonsterArchetype, dt time.Duration, now time.Time, lost bool) {
	if now.After(m.WanderUntil) || m.WanderDir.PlanarLen() == 0 {
		s.pickHeading(l, m, now, lost)
	}
	next := l.Arena.Clamp(m.Pos.Add(m.WanderDir.Scale(arch.WanderSpeed * dt.Seconds())))
	if l.Arena.BlockedByObstacle(next, 0.5) {
		// Bounce off and pick again next tick.
		m.WanderDir = m.WanderDir.Scale(-1)
		m.WanderUntil = now
		return
	}
	m.Pos = next
	m.Gaze = m.WanderDir
}

func (s *MonsterAISystem) pickHeading(l *world.Lobby, m *world.Monster, now time.Time, lost bool) {
	if s.lua != nil {
		cmd := s.lua.RunWander(scripting.WanderContext{
			MonsterID:  m.ID,
			Archetype:  m.Archetype,
			X:          m.Pos.X,
			Z:          m.Pos.Z,
			DirX:       m.WanderDir.X,
			DirZ:       m.WanderDir.Z,
			DistCenter: m.Pos.PlanarLen(),
			SafeRadius: l.Arena.SafeRadius,
			Lost:       lost,
			HeadingAge: 1 << 20, // only consulted on expiry, always re-pick
		})
		if cmd != nil {
			m.WanderDir = world.Vec3{X: cmd.DirX, Z: cmd.DirZ}.PlanarNormalized()
			m.WanderUntil = now.Add(time.Duration(cmd.HoldMS) * time.Millisecond)
			if m.WanderDir.PlanarLen() > 0 {
				return
			}
		}
	}
	m.WanderDir = world.RandomPlanarDir(l.Rng())
	m.WanderUntil = now.Add(2 * time.Second)
}
