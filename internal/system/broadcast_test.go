package system

import (
	"testing"
	"time"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

func TestBroadcastDivisor(t *testing.T) {
	reg := testRegistry()
	table := net.NewSessionTable()

	cases := []struct {
		simHz, broadcastHz int
		want               uint64
	}{
		{60, 30, 2},
		{60, 60, 1},
		{60, 20, 3},
		{30, 60, 1},
		{60, 0, 1},
	}
	for _, c := range cases {
		sys := NewBroadcastSystem(reg, table, c.simHz, c.broadcastHz)
		if sys.every != c.want {
			t.Errorf("every(%d, %d) = %d, want %d", c.simHz, c.broadcastHz, sys.every, c.want)
		}
	}
}

func TestSnapshotContents(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash", "birch")
	l.AddOrb(world.Vec3{X: 5}, 10)
	kept := l.AddOrb(world.Vec3{X: -5}, 10)

	var collected string
	l.AllOrbs(func(o *world.Orb) {
		if o.ID != kept.ID {
			collected = o.ID
		}
	})
	l.CollectOrb(collected, t0)

	l.SpawnMonster(&world.Monster{ID: l.NextMonsterID(), Archetype: "stalker", SpawnTime: t0})

	sys := NewBroadcastSystem(reg, net.NewSessionTable(), 60, 30)
	snap := sys.snapshot(l, t0.Add(10*time.Second))

	if snap.MatchMS != 10000 {
		t.Fatalf("match time = %d, want 10000", snap.MatchMS)
	}
	if snap.SafeRadius != 100 {
		t.Fatalf("safe radius = %v, want 100", snap.SafeRadius)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(snap.Players))
	}
	if snap.Players[0].State != "ALIVE" {
		t.Fatalf("player state = %q, want ALIVE", snap.Players[0].State)
	}
	if len(snap.Monsters) != 1 || snap.Monsters[0].State != "ROARING" {
		t.Fatalf("monsters = %+v, want one ROARING", snap.Monsters)
	}
	if len(snap.Orbs) != 1 || snap.Orbs[0].ID != kept.ID {
		t.Fatalf("orbs = %+v, want only the uncollected one", snap.Orbs)
	}
}
