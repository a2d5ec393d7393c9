package system

import (
	"time"

	"github.com/duskfall/server/internal/core/event"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// Match end reasons.
const (
	EndReasonLastAlive   = "last_alive"
	EndReasonArenaClosed = "arena_closed"
)

// MatchEndSystem closes out matches whose end condition fired this tick: it
// notifies every player, emits the archive event, and resets the lobby for a
// rematch.
// Phase 2 (PostUpdate).
type MatchEndSystem struct {
	registry *lobby.Registry
	bus      *event.Bus
	now      func() time.Time
}

func NewMatchEndSystem(registry *lobby.Registry, bus *event.Bus) *MatchEndSystem {
	return &MatchEndSystem{registry: registry, bus: bus, now: time.Now}
}

func (s *MatchEndSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MatchEndSystem) Update(_ time.Duration) {
	now := s.now()
	var ended []*world.Lobby
	s.registry.AllLobbies(func(l *world.Lobby) {
		if s.registry.ShouldEndMatch(l) {
			ended = append(ended, l)
		}
	})
	for _, l := range ended {
		s.endMatch(l, now)
	}
}

func (s *MatchEndSystem) endMatch(l *world.Lobby, now time.Time) {
	reason := EndReasonLastAlive
	if l.Arena.FullyShrunk() {
		reason = EndReasonArenaClosed
	}
	duration := l.MatchTime(now).Milliseconds()

	winners := s.registry.Winners(l)
	isWinner := make(map[string]bool, len(winners))
	for _, w := range winners {
		isWinner[w.ID] = true
	}

	var scores []net.ScoreEntry
	var entries []MatchEntry
	l.AllPlayers(func(p *world.Player) {
		scores = append(scores, net.ScoreEntry{
			PlayerID: p.ID,
			Username: p.Username,
			Score:    p.Score,
			Winner:   isWinner[p.ID],
		})
		entries = append(entries, MatchEntry{
			PlayerID: p.ID,
			Username: p.Username,
			Score:    p.Score,
			Winner:   isWinner[p.ID],
		})
	})

	payload := net.Encode(net.MsgMatchEnd, net.MatchEndPayload{Reason: reason, Scores: scores})
	l.AllPlayers(func(p *world.Player) {
		p.Send(payload)
	})

	event.Emit(s.bus, MatchEndedEvent{
		LobbyCode:  l.Code,
		Reason:     reason,
		DurationMS: duration,
		EndedAt:    now,
		Players:    entries,
	})

	s.registry.EndMatch(l)

	// Abandoned slots kept alive for reconnection die with the match.
	var gone []string
	l.AllPlayers(func(p *world.Player) {
		if p.Session == nil || p.Session.IsClosed() {
			gone = append(gone, p.ID)
		}
	})
	for _, id := range gone {
		s.registry.RemovePlayer(id)
	}
}
