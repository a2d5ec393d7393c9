package system

import "time"

// PlayerDiedEvent fires the tick after a player's health reaches zero.
type PlayerDiedEvent struct {
	LobbyCode string
	PlayerID  string
	KillerID  string // monster id, "" for arena damage
}

// MatchEndedEvent carries the final standings of a finished match. The
// archive subscriber persists it; sessions are notified synchronously by the
// match end system before this event is dispatched.
type MatchEndedEvent struct {
	LobbyCode  string
	Reason     string
	DurationMS int64
	EndedAt    time.Time
	Players    []MatchEntry
}

// MatchEntry is one player's final line.
type MatchEntry struct {
	PlayerID string
	Username string
	Score    int
	Winner   bool
}

// MonsterSpawnedEvent fires when the spawn director places a monster.
type MonsterSpawnedEvent struct {
	LobbyCode string
	MonsterID string
	Archetype string
}
