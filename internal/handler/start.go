package handler

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// HandleStartMatch begins the match for the sender's lobby: obstacles and
// orbs are generated, the arena resets, and every member gets match_start.
// Any lobby member can start once the player minimum is met.
func HandleStartMatch(sess *net.Session, _ json.RawMessage, deps *Deps) {
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil {
		sendError(sess, "not_in_lobby", "join a lobby first")
		return
	}
	if !deps.Registry.CanStartMatch(l) {
		sendError(sess, "cannot_start", "not enough players or match already running")
		return
	}

	now := time.Now()
	l.Arena.Obstacles = generateObstacles(l, deps)
	seedOrbs(l, deps)
	respawnPlayers(l, now)
	deps.Registry.StartMatch(l, now)

	wireObstacles := make([]net.Obstacle, len(l.Arena.Obstacles))
	for i, o := range l.Arena.Obstacles {
		wireObstacles[i] = net.Obstacle{MinX: o.MinX, MinZ: o.MinZ, MaxX: o.MaxX, MaxZ: o.MaxZ}
	}
	payload := net.Encode(net.MsgMatchStart, net.MatchStartPayload{
		LobbyCode:  l.Code,
		SafeRadius: l.Arena.SafeRadius,
		Obstacles:  wireObstacles,
	})
	l.AllPlayers(func(p *world.Player) {
		p.Send(payload)
	})

	deps.Log.Info("match starting",
		zap.String("lobby", l.Code),
		zap.Int("players", l.PlayerCount()),
		zap.Int("obstacles", len(l.Arena.Obstacles)))
}

// generateObstacles scatters weighted templates across the arena, keeping
// them away from the rim so the shrink never strands anyone inside one.
func generateObstacles(l *world.Lobby, deps *Deps) []world.Obstacle {
	count := deps.Config.Arena.ObstacleCount
	if deps.Obstacles == nil || deps.Obstacles.Count() == 0 || count <= 0 {
		return nil
	}
	rng := l.Rng()
	out := make([]world.Obstacle, 0, count)
	for i := 0; i < count; i++ {
		tpl := deps.Obstacles.Pick(rng.Intn(deps.Obstacles.TotalWeight()))
		if tpl == nil {
			break
		}
		center := l.Arena.RandomPosition(rng, 0)
		center = center.Scale(0.8)
		out = append(out, world.Obstacle{
			MinX: center.X - tpl.Width/2,
			MinZ: center.Z - tpl.Depth/2,
			MaxX: center.X + tpl.Width/2,
			MaxZ: center.Z + tpl.Depth/2,
		})
	}
	return out
}

func seedOrbs(l *world.Lobby, deps *Deps) {
	for i := 0; i < deps.Config.Orbs.InitialCount; i++ {
		l.AddOrb(l.Arena.RandomPosition(l.Rng(), 0.5), deps.Config.Orbs.Value)
	}
}

// respawnPlayers re-rolls every member's spawn so nobody starts where the
// pre-match lobby left them, or inside a freshly placed obstacle.
func respawnPlayers(l *world.Lobby, now time.Time) {
	l.AllPlayers(func(p *world.Player) {
		p.Pos = l.Arena.RandomPosition(l.Rng(), 1.0)
		p.Health = p.MaxHealth
		p.State = world.StateAlive
		p.Score = 0
		p.BlinkCooldownEnd = time.Time{}
		p.JoinedAt = now
	})
}
