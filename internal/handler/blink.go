package handler

import (
	"encoding/json"
	"time"

	"github.com/duskfall/server/internal/net"
)

// HandleBlinkAction teleports the player a short distance if the cooldown
// has elapsed. A blink on cooldown answers with the remaining wait instead
// of moving anything.
func HandleBlinkAction(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.BlinkActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil || !l.Active {
		return
	}
	p := l.Player(sess.PlayerID)
	if p == nil || !p.Alive() {
		return
	}

	now := time.Now()
	if !l.CanBlink(p.ID, now) {
		sess.SendNow(net.MsgCooldownNotice, net.CooldownNoticePayload{
			Action:      "blink",
			RemainingMS: p.BlinkCooldownEnd.Sub(now).Milliseconds(),
		})
		sess.SendNow(net.MsgBlinkResponse, net.BlinkResponsePayload{
			Accepted: false,
			Pos:      net.Vec{X: p.Pos.X, Y: p.Pos.Y, Z: p.Pos.Z},
		})
		return
	}

	target := gameVec(req.Target)
	if !target.Finite() {
		return
	}
	dest := l.Arena.Clamp(target)
	if l.Arena.BlockedByObstacle(dest, 0.2) {
		sess.SendNow(net.MsgBlinkResponse, net.BlinkResponsePayload{
			Accepted: false,
			Pos:      net.Vec{X: p.Pos.X, Y: p.Pos.Y, Z: p.Pos.Z},
		})
		return
	}

	p.Pos = dest
	l.ExecuteBlink(p.ID, deps.Config.Blink.Cooldown, now)
	sess.SendNow(net.MsgBlinkResponse, net.BlinkResponsePayload{
		Accepted:   true,
		Pos:        net.Vec{X: dest.X, Y: dest.Y, Z: dest.Z},
		CooldownMS: deps.Config.Blink.Cooldown.Milliseconds(),
	})
}
