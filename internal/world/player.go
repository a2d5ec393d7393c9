package world

import (
	"time"

	"github.com/duskfall/server/internal/net"
)

// LifecycleState tracks whether a player is participating in the match.
type LifecycleState uint8

const (
	StateAlive LifecycleState = iota
	StateDead
	StateSpectating
)

func (s LifecycleState) String() string {
	switch s {
	case StateAlive:
		return "ALIVE"
	case StateDead:
		return "DEAD"
	case StateSpectating:
		return "SPECTATING"
	}
	return "UNKNOWN"
}

// AttachmentState is the player's position in the pairing protocol.
type AttachmentState uint8

const (
	AttachAlone AttachmentState = iota
	AttachRequestSent
	AttachRequestReceived
	AttachAttached
)

func (s AttachmentState) String() string {
	switch s {
	case AttachAlone:
		return "ALONE"
	case AttachRequestSent:
		return "REQUEST_SENT"
	case AttachRequestReceived:
		return "REQUEST_RECEIVED"
	case AttachAttached:
		return "ATTACHED"
	}
	return "UNKNOWN"
}

// Player holds in-memory data for a player in one lobby.
// Accessed only from the game loop goroutine — no locks needed.
type Player struct {
	ID       string
	Username string
	Session  *net.Session // nil in tests

	Pos  Vec3
	Rot  Rotation
	Gaze Vec3 // unit forward vector

	Health    float64
	MaxHealth float64
	Score     int
	State     LifecycleState

	BlinkCooldownEnd time.Time
	LastAttackTime   time.Time // last time this player took a hit
	DiedAt           time.Time

	// Pairing. AttachedTo is always symmetric: if set, the partner's
	// AttachedTo names this player and both states are ATTACHED.
	Attachment     AttachmentState
	AttachedTo     string // partner id, "" when not attached
	PendingPartner string // other side of an in-flight request
	RequestAt      time.Time

	JoinedAt time.Time
}

// Alive reports whether the player counts toward the living player set.
func (p *Player) Alive() bool {
	return p.State == StateAlive
}

// Send buffers an outbound message if the player has a live session.
func (p *Player) Send(data []byte) {
	if p.Session != nil {
		p.Session.Send(data)
	}
}
