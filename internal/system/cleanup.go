package system

import (
	"time"

	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/net"
)

// CleanupSystem reaps closed sessions and collects abandoned lobbies.
// Phase 4 (Cleanup) — always last.
type CleanupSystem struct {
	registry *lobby.Registry
	sessions *net.SessionTable
}

func NewCleanupSystem(registry *lobby.Registry, sessions *net.SessionTable) *CleanupSystem {
	return &CleanupSystem{registry: registry, sessions: sessions}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.sessions.Reap()
	s.registry.CollectEmpty()
}
