package system

import (
	"testing"
	"time"

	"github.com/duskfall/server/internal/core/event"
	"github.com/duskfall/server/internal/net"
)

func TestLastAliveEndsMatch(t *testing.T) {
	reg := testRegistry()
	bus := event.NewBus()
	l := startedLobby(reg, "ash", "birch")
	l.AddScore("ash", 30)
	l.DamagePlayer("birch", 1000, t0.Add(time.Minute))

	var ended []MatchEndedEvent
	event.Subscribe(bus, func(ev MatchEndedEvent) { ended = append(ended, ev) })

	sys := NewMatchEndSystem(reg, bus)
	sys.now = fixedClock(t0.Add(time.Minute))
	sys.Update(0)

	if l.Active {
		t.Fatal("match still active with one player alive")
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(ended) != 1 {
		t.Fatalf("end events = %d, want 1", len(ended))
	}
	ev := ended[0]
	if ev.Reason != EndReasonLastAlive {
		t.Fatalf("reason = %q, want %q", ev.Reason, EndReasonLastAlive)
	}
	if ev.DurationMS != 60000 {
		t.Fatalf("duration = %d, want 60000", ev.DurationMS)
	}
	winners := 0
	for _, p := range ev.Players {
		if p.Winner {
			winners++
			if p.PlayerID != "ash" {
				t.Fatalf("winner = %q, want ash", p.PlayerID)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("winner count = %d, want 1", winners)
	}
}

func TestArenaClosedEndsMatch(t *testing.T) {
	reg := testRegistry()
	bus := event.NewBus()
	l := startedLobby(reg, "ash", "birch")
	l.Arena.SetSafeRadius(10)

	var ended []MatchEndedEvent
	event.Subscribe(bus, func(ev MatchEndedEvent) { ended = append(ended, ev) })

	sys := NewMatchEndSystem(reg, bus)
	sys.now = fixedClock(t0.Add(3 * time.Minute))
	sys.Update(0)

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(ended) != 1 || ended[0].Reason != EndReasonArenaClosed {
		t.Fatalf("end events = %+v, want one arena_closed", ended)
	}
	// Both survivors tie at zero: both win.
	for _, p := range ended[0].Players {
		if !p.Winner {
			t.Fatalf("tied player %q not marked winner", p.PlayerID)
		}
	}
}

func TestAbandonedSlotsPurgedAtMatchEnd(t *testing.T) {
	reg := testRegistry()
	bus := event.NewBus()
	l := startedLobby(reg, "ash", "birch")
	l.Player("birch").Session = &net.Session{ID: 1}
	l.DamagePlayer("ash", 1000, t0)

	sys := NewMatchEndSystem(reg, bus)
	sys.now = fixedClock(t0.Add(time.Minute))
	sys.Update(0)

	if l.Player("ash") != nil {
		t.Fatal("session-less slot survived match end")
	}
	if l.Player("birch") == nil {
		t.Fatal("connected player dropped at match end")
	}
}
