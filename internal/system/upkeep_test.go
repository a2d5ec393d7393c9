package system

import (
	"testing"
	"time"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/world"
)

func TestRegenPulsesOnInterval(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash", "birch")
	l.Player("ash").Health = 50

	sys := NewRegenSystem(reg, config.RegenConfig{Interval: 2 * time.Second, Amount: 1})

	sys.now = fixedClock(t0)
	sys.Update(0)
	if got := l.Player("ash").Health; got != 51 {
		t.Fatalf("health after first pulse = %v, want 51", got)
	}

	sys.now = fixedClock(t0.Add(1 * time.Second))
	sys.Update(0)
	if got := l.Player("ash").Health; got != 51 {
		t.Fatalf("health inside interval = %v, want 51", got)
	}

	sys.now = fixedClock(t0.Add(2 * time.Second))
	sys.Update(0)
	if got := l.Player("ash").Health; got != 52 {
		t.Fatalf("health after second pulse = %v, want 52", got)
	}
}

func TestOrbRespawnReplacesCollected(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash", "birch")
	orb := l.AddOrb(world.Vec3{X: 5}, 10)
	l.CollectOrb(orb.ID, t0)

	sys := NewOrbRespawnSystem(reg, config.OrbConfig{Value: 10, RespawnDelay: 8 * time.Second})

	sys.now = fixedClock(t0.Add(7 * time.Second))
	sys.Update(0)
	stillThere := false
	l.AllOrbs(func(o *world.Orb) {
		if o.ID == orb.ID {
			stillThere = true
		}
	})
	if !stillThere {
		t.Fatal("orb replaced before the respawn delay passed")
	}

	sys.now = fixedClock(t0.Add(8 * time.Second))
	sys.Update(0)

	uncollected := 0
	l.AllOrbs(func(o *world.Orb) {
		if o.ID == orb.ID {
			t.Fatal("collected orb still present after respawn")
		}
		if !o.Collected {
			uncollected++
		}
	})
	if uncollected != 1 {
		t.Fatalf("uncollected orbs = %d, want 1", uncollected)
	}
}

func TestSpectateAfterDelay(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash", "birch")
	l.DamagePlayer("ash", 1000, t0)

	sys := NewSpectateSystem(reg, config.GameConfig{SpectateDelay: 5 * time.Second})

	sys.now = fixedClock(t0.Add(4 * time.Second))
	sys.Update(0)
	if got := l.Player("ash").State; got != world.StateDead {
		t.Fatalf("state before delay = %v, want DEAD", got)
	}

	sys.now = fixedClock(t0.Add(5 * time.Second))
	sys.Update(0)
	if got := l.Player("ash").State; got != world.StateSpectating {
		t.Fatalf("state after delay = %v, want SPECTATING", got)
	}
}

func TestAttachRequestTimeout(t *testing.T) {
	reg := testRegistry()
	l := startedLobby(reg, "ash", "birch")
	if !l.RequestAttachment("ash", "birch", t0) {
		t.Fatal("request refused")
	}

	sys := NewAttachTimeoutSystem(reg, config.AttachmentConfig{RequestTimeout: 15 * time.Second})

	sys.now = fixedClock(t0.Add(14 * time.Second))
	sys.Update(0)
	if got := l.Player("ash").Attachment; got != world.AttachRequestSent {
		t.Fatalf("state inside timeout = %v, want REQUEST_SENT", got)
	}

	sys.now = fixedClock(t0.Add(15 * time.Second))
	sys.Update(0)
	if l.Player("ash").Attachment != world.AttachAlone || l.Player("birch").Attachment != world.AttachAlone {
		t.Fatal("expired request did not reset both sides")
	}
}
