package system

import (
	"time"

	"github.com/duskfall/server/internal/config"
	coresys "github.com/duskfall/server/internal/core/system"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// AttachTimeoutSystem cancels pairing requests that were never answered and
// tells the requester their offer lapsed.
// Phase 2 (PostUpdate).
type AttachTimeoutSystem struct {
	registry *lobby.Registry
	cfg      config.AttachmentConfig
	now      func() time.Time
}

func NewAttachTimeoutSystem(registry *lobby.Registry, cfg config.AttachmentConfig) *AttachTimeoutSystem {
	return &AttachTimeoutSystem{registry: registry, cfg: cfg, now: time.Now}
}

func (s *AttachTimeoutSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *AttachTimeoutSystem) Update(_ time.Duration) {
	now := s.now()
	s.registry.AllLobbies(func(l *world.Lobby) {
		for _, id := range l.ExpireAttachmentRequests(s.cfg.RequestTimeout, now) {
			if p := l.Player(id); p != nil {
				p.Send(net.Encode(net.MsgAttachDeclined, net.AttachResultPayload{}))
			}
		}
	})
}
