package handler

import (
	"encoding/json"
	"time"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// HandleCollectOrb awards an orb's value to the collector. The store's
// check-and-set makes duplicate collect messages for the same orb worthless,
// so two players racing for one orb can never both score it.
func HandleCollectOrb(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.CollectOrbPayload
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

	value := l.CollectOrb(req.OrbID, time.Now())
	if value == 0 {
		return
	}
	l.AddScore(p.ID, value)

	msg := net.Encode(net.MsgOrbCollected, net.OrbCollectedPayload{
		OrbID:    req.OrbID,
		PlayerID: p.ID,
		Value:    value,
		NewScore: p.Score,
	})
	l.AllPlayers(func(member *world.Player) {
		member.Send(msg)
	})
}
