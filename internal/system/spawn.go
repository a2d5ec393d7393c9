package system

import (
	"math"
	"time"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/core/event"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/data"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/world"
)

// SpawnSystem keeps each active lobby's monster population at its target.
// Phase 1 (Update).
//
// The target ramps with match time: nothing during the grace period, a single
// monster after it, then one per living player once the ramp delay passes.
// The whole deficit spawns in one tick, so reinforcements arrive as a burst
// rather than a trickle.
type SpawnSystem struct {
	registry *lobby.Registry
	monsters *data.MonsterTable
	cfg      config.MonsterConfig
	bus      *event.Bus
	now      func() time.Time
}

func NewSpawnSystem(registry *lobby.Registry, monsters *data.MonsterTable, cfg config.MonsterConfig, bus *event.Bus) *SpawnSystem {
	return &SpawnSystem{
		registry: registry,
		monsters: monsters,
		cfg:      cfg,
		bus:      bus,
		now:      time.Now,
	}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	now := s.now()
	s.registry.AllLobbies(func(l *world.Lobby) {
		if !l.Active {
			return
		}
		deficit := s.targetCount(l, now) - l.MonsterCount()
		for i := 0; i < deficit; i++ {
			s.spawnOne(l, now)
		}
	})
}

func (s *SpawnSystem) targetCount(l *world.Lobby, now time.Time) int {
	elapsed := l.MatchTime(now)
	switch {
	case elapsed < s.cfg.SpawnDelay:
		return 0
	case elapsed < s.cfg.RampDelay:
		return 1
	default:
		return l.AlivePlayerCount()
	}
}

func (s *SpawnSystem) spawnOne(l *world.Lobby, now time.Time) {
	arch := s.monsters.Get(s.cfg.DefaultArchetype)
	if arch == nil {
		return
	}

	m := &world.Monster{
		ID:        l.NextMonsterID(),
		Archetype: arch.Name,
		Pos:       s.spawnPosition(l),
		Gaze:      world.RandomPlanarDir(l.Rng()),
		Health:    arch.MaxHealth,
		MaxHealth: arch.MaxHealth,
		State:     world.MonsterRoaring,
		SpawnTime: now,
	}
	l.SpawnMonster(m)
	event.Emit(s.bus, MonsterSpawnedEvent{
		LobbyCode: l.Code,
		MonsterID: m.ID,
		Archetype: m.Archetype,
	})
}

// spawnPosition places a monster behind a random living player: the anchor's
// position minus their gaze, scaled by the spawn distance. That puts the roar
// just outside the anchor's view.
func (s *SpawnSystem) spawnPosition(l *world.Lobby) world.Vec3 {
	alive := l.AlivePlayers()
	if len(alive) == 0 {
		return l.Arena.RandomPosition(l.Rng(), 1.0)
	}
	anchor := alive[l.Rng().Intn(len(alive))]

	gaze := anchor.Gaze.PlanarNormalized()
	if gaze.PlanarLen() == 0 {
		gaze = world.Vec3{Z: 1}
	}
	pos := l.Arena.Clamp(anchor.Pos.Sub(gaze.Scale(s.cfg.SpawnDistance)))
	if l.Arena.BlockedByObstacle(pos, 0.5) {
		pos = l.Arena.RandomPosition(l.Rng(), 0.5)
	}
	return pos
}

// IsInBlindSpot reports whether a point sits in the rear cone the player
// cannot see: within halfAngleDeg of straight behind the gaze.
func IsInBlindSpot(playerPos, gaze, point world.Vec3, halfAngleDeg float64) bool {
	dir := point.Sub(playerPos).PlanarNormalized()
	if dir.PlanarLen() == 0 {
		return false
	}
	g := gaze.PlanarNormalized()
	if g.PlanarLen() == 0 {
		return false
	}
	// cos of the angle off straight-behind; behind means dot(gaze, dir) < 0.
	limit := math.Cos(math.Pi - halfAngleDeg*math.Pi/180)
	return world.PlanarDot(g, dir) <= limit
}
