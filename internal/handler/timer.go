package handler

import (
	"encoding/json"

	"github.com/duskfall/server/internal/net"
)

const maxTimerDurationS = 600

// HandleBroadcastTimer relays a player-set timer (a rally countdown, a
// "regroup in 30" call) to players near the caller. The server does not track
// the timer; it only fans the announcement out within earshot.
func HandleBroadcastTimer(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.BroadcastTimerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	if req.DurationS <= 0 || req.DurationS > maxTimerDurationS {
		return
	}
	if len(req.Label) > 64 {
		req.Label = req.Label[:64]
	}
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil {
		return
	}
	sender := l.Player(sess.PlayerID)
	if sender == nil {
		return
	}

	msg := net.Encode(net.MsgBroadcastTimer, net.BroadcastTimerNotice{
		Label:     req.Label,
		DurationS: req.DurationS,
		From:      sess.PlayerID,
	})
	sender.Send(msg)
	for _, member := range l.GetNearbyPlayers(sess.PlayerID, deps.Config.Timer.Radius) {
		member.Send(msg)
	}
}
