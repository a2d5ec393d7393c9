package system

import (
	"testing"
	"time"
)

type recordingSystem struct {
	phase Phase
	log   *[]Phase
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.phase)
}

func TestTickRunsPhasesInOrder(t *testing.T) {
	r := NewRunner()
	var log []Phase
	for _, p := range []Phase{PhaseCleanup, PhaseUpdate, PhaseOutput, PhasePreUpdate, PhasePostUpdate} {
		r.Register(&recordingSystem{phase: p, log: &log})
	}

	r.Tick(16 * time.Millisecond)

	want := []Phase{PhasePreUpdate, PhaseUpdate, PhasePostUpdate, PhaseOutput, PhaseCleanup}
	if len(log) != len(want) {
		t.Fatalf("ran %d systems, want %d", len(log), len(want))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("phase order %v, want %v", log, want)
		}
	}
}

func TestRegisterAfterTickResorts(t *testing.T) {
	r := NewRunner()
	var log []Phase
	r.Register(&recordingSystem{phase: PhaseOutput, log: &log})
	r.Tick(0)

	r.Register(&recordingSystem{phase: PhasePreUpdate, log: &log})
	log = log[:0]
	r.Tick(0)

	if len(log) != 2 || log[0] != PhasePreUpdate || log[1] != PhaseOutput {
		t.Fatalf("phase order after late register = %v", log)
	}
}
