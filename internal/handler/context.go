package handler

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/core/event"
	"github.com/duskfall/server/internal/data"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/net"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	Registry  *lobby.Registry
	Sessions  *net.SessionTable
	Monsters  *data.MonsterTable
	Obstacles *data.ObstacleTable
	Bus       *event.Bus
}

// HandlerFunc processes one decoded client message on the game loop.
type HandlerFunc func(sess *net.Session, payload json.RawMessage, deps *Deps)

// Dispatcher routes inbound messages by type, enforcing per-type minimum
// intervals. Over-limit messages are dropped silently; a client that floods
// gets ignored, not disconnected.
type Dispatcher struct {
	deps     *Deps
	handlers map[string]HandlerFunc
	limits   map[string]time.Duration
	now      func() time.Time
}

func NewDispatcher(deps *Deps) *Dispatcher {
	d := &Dispatcher{
		deps:     deps,
		handlers: make(map[string]HandlerFunc),
		limits:   make(map[string]time.Duration),
		now:      time.Now,
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) register(msgType string, limit time.Duration, fn HandlerFunc) {
	d.handlers[msgType] = fn
	if limit > 0 {
		d.limits[msgType] = limit
	}
}

func (d *Dispatcher) registerAll() {
	rl := d.deps.Config.RateLimit
	if !rl.Enabled {
		rl = config.RateLimitConfig{}
	}

	d.register(net.MsgJoinLobby, 0, HandleJoinLobby)
	d.register(net.MsgStartMatch, 0, HandleStartMatch)
	d.register(net.MsgLeaveLobby, 0, HandleLeaveLobby)
	d.register(net.MsgPlayerInput, rl.InputInterval, HandlePlayerInput)
	d.register(net.MsgBlinkAction, rl.BlinkInterval, HandleBlinkAction)
	d.register(net.MsgCollectOrb, rl.OrbInterval, HandleCollectOrb)
	d.register(net.MsgAttachRequest, rl.AttachInterval, HandleAttachRequest)
	d.register(net.MsgAttachResponse, rl.AttachInterval, HandleAttachResponse)
	d.register(net.MsgDetach, rl.AttachInterval, HandleDetach)
	d.register(net.MsgBroadcastTimer, rl.TimerInterval, HandleBroadcastTimer)
}

// Dispatch runs the handler for one inbound message. Unknown types get an
// error reply; rate-limited ones are dropped.
func (d *Dispatcher) Dispatch(in net.Inbound) {
	sess := in.Session
	if sess == nil || sess.IsClosed() {
		return
	}

	fn, ok := d.handlers[in.Env.Type]
	if !ok {
		sess.SendNow(net.MsgError, net.ErrorPayload{
			Code:    "unknown_type",
			Message: "unrecognized message type",
		})
		return
	}

	if limit, limited := d.limits[in.Env.Type]; limited {
		if !d.allow(sess, in.Env.Type, limit) {
			return
		}
	}

	fn(sess, in.Env.Payload, d.deps)
}

// allow enforces the per-type minimum interval for one session.
func (d *Dispatcher) allow(sess *net.Session, msgType string, limit time.Duration) bool {
	now := d.now()
	if sess.LastMsgAt == nil {
		sess.LastMsgAt = make(map[string]time.Time)
	}
	if last, ok := sess.LastMsgAt[msgType]; ok && now.Sub(last) < limit {
		return false
	}
	sess.LastMsgAt[msgType] = now
	return true
}

// HandleDisconnect cleans up after a dead session: the player leaves their
// lobby exactly as if they had sent leave_lobby.
func HandleDisconnect(sess *net.Session, deps *Deps) {
	if sess.PlayerID == "" {
		return
	}
	removeFromLobby(sess, deps)
}
