package handler

import (
	"encoding/json"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// HandlePlayerInput applies a client transform update. Clients are
// authoritative over their own movement; the server only rejects garbage
// numbers and clamps to the safe radius. Dead players' input is ignored.
func HandlePlayerInput(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.PlayerInputPayload
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
	l.UpdateTransform(sess.PlayerID,
		gameVec(req.Pos),
		world.Rotation{Pitch: req.Rot.Pitch, Yaw: req.Rot.Yaw},
		gameVec(req.Gaze))
}

func gameVec(v net.Vec) world.Vec3 {
	return world.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
