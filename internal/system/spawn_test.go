package system

import (
	"math"
	"testing"
	"time"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/core/event"
	"github.com/duskfall/server/internal/world"
)

func spawnConfig() config.MonsterConfig {
	return config.MonsterConfig{
		DefaultArchetype: "stalker",
		SpawnDelay:       30 * time.Second,
		RampDelay:        120 * time.Second,
		SpawnDistance:    12,
		BlindSpotHalfDeg: 60,
	}
}

func TestSpawnCadence(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash", "birch", "cedar")
	sys := NewSpawnSystem(reg, testArchetypes(), spawnConfig(), event.NewBus())

	sys.now = fixedClock(t0.Add(10 * time.Second))
	sys.Update(0)
	if l.MonsterCount() != 0 {
		t.Fatalf("monsters during grace period = %d, want 0", l.MonsterCount())
	}

	sys.now = fixedClock(t0.Add(31 * time.Second))
	sys.Update(0)
	if l.MonsterCount() != 1 {
		t.Fatalf("monsters after grace period = %d, want 1", l.MonsterCount())
	}

	// Past the ramp the deficit fills in a single tick.
	sys.now = fixedClock(t0.Add(121 * time.Second))
	sys.Update(0)
	if l.MonsterCount() != 3 {
		t.Fatalf("monsters after ramp = %d, want 3", l.MonsterCount())
	}

	// A death lowers the target but never despawns the surplus.
	l.DamagePlayer("cedar", 1000, t0.Add(121*time.Second))
	sys.Update(0)
	if l.MonsterCount() != 3 {
		t.Fatalf("monsters after a death = %d, want 3", l.MonsterCount())
	}
}

func TestSpawnPlacedBehindAnchor(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash")
	ash := l.Player("ash")
	ash.Pos = world.Vec3{}
	ash.Gaze = world.Vec3{Z: 1}

	sys := NewSpawnSystem(reg, testArchetypes(), spawnConfig(), event.NewBus())
	sys.now = fixedClock(t0.Add(31 * time.Second))
	sys.Update(0)

	var m *world.Monster
	l.AllMonsters(func(mm *world.Monster) { m = mm })
	if m == nil {
		t.Fatal("no monster spawned")
	}
	if m.State != world.MonsterRoaring {
		t.Fatalf("spawn state = %v, want ROARING", m.State)
	}
	if math.Abs(m.Pos.X) > 1e-9 || math.Abs(m.Pos.Z+12) > 1e-9 {
		t.Fatalf("spawn pos = %+v, want directly behind the anchor at z=-12", m.Pos)
	}
}

func TestIsInBlindSpot(t *testing.T) {
	origin := world.Vec3{}
	gaze := world.Vec3{Z: 1}

	if !IsInBlindSpot(origin, gaze, world.Vec3{Z: -5}, 60) {
		t.Fatal("point straight behind not in blind spot")
	}
	if IsInBlindSpot(origin, gaze, world.Vec3{Z: 5}, 60) {
		t.Fatal("point straight ahead counted as blind spot")
	}
	if IsInBlindSpot(origin, gaze, world.Vec3{X: 5}, 60) {
		t.Fatal("point at 90 degrees counted inside a 60 degree cone")
	}
	if !IsInBlindSpot(origin, gaze, world.Vec3{X: 5}, 95) {
		t.Fatal("point at 90 degrees outside a 95 degree cone")
	}
}
