package event

import "testing"

type pingEvent struct{ n int }
type otherEvent struct{}

func TestEmitDeliversNextSwap(t *testing.T) {
	bus := NewBus()
	var got []int
	Subscribe(bus, func(ev pingEvent) { got = append(got, ev.n) })

	Emit(bus, pingEvent{n: 1})
	bus.DispatchAll()
	if len(got) != 0 {
		t.Fatal("event delivered before buffer swap")
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v, want [1]", got)
	}

	// A second swap with nothing emitted delivers nothing again.
	bus.SwapBuffers()
	bus.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("stale events redelivered: %v", got)
	}
}

func TestDispatchIsTyped(t *testing.T) {
	bus := NewBus()
	pings, others := 0, 0
	Subscribe(bus, func(pingEvent) { pings++ })
	Subscribe(bus, func(otherEvent) { others++ })

	Emit(bus, pingEvent{})
	Emit(bus, pingEvent{})
	Emit(bus, otherEvent{})
	bus.SwapBuffers()
	bus.DispatchAll()

	if pings != 2 || others != 1 {
		t.Fatalf("pings = %d others = %d, want 2 and 1", pings, others)
	}
}

func TestEmitDuringDispatchLandsNextTick(t *testing.T) {
	bus := NewBus()
	count := 0
	Subscribe(bus, func(ev pingEvent) {
		count++
		if ev.n < 2 {
			Emit(bus, pingEvent{n: ev.n + 1})
		}
	})

	Emit(bus, pingEvent{n: 1})
	bus.SwapBuffers()
	bus.DispatchAll()
	if count != 1 {
		t.Fatalf("count after first tick = %d, want 1", count)
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if count != 2 {
		t.Fatalf("count after second tick = %d, want 2", count)
	}
}
