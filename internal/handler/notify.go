package handler

import (
	"github.com/duskfall/server/internal/core/event"
	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/system"
	"github.com/duskfall/server/internal/world"
)

// RegisterNotifications subscribes the client-facing fan-out for events the
// simulation systems publish on the bus. The handlers run on the game loop
// when the event system dispatches at tick start, one tick after the fact.
func RegisterNotifications(deps *Deps) {
	event.Subscribe(deps.Bus, func(ev system.PlayerDiedEvent) {
		notifyLobby(deps, ev.LobbyCode, net.Encode(net.MsgPlayerDied, net.PlayerDiedPayload{
			PlayerID: ev.PlayerID,
			KillerID: ev.KillerID,
		}))
	})
	event.Subscribe(deps.Bus, func(ev system.MonsterSpawnedEvent) {
		notifyLobby(deps, ev.LobbyCode, net.Encode(net.MsgMonsterSpawned, net.MonsterSpawnedPayload{
			MonsterID: ev.MonsterID,
			Archetype: ev.Archetype,
		}))
	})
}

func notifyLobby(deps *Deps, code string, msg []byte) {
	l := deps.Registry.Lobby(code)
	if l == nil {
		return
	}
	l.AllPlayers(func(p *world.Player) {
		p.Send(msg)
	})
}
