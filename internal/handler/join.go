package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// HandleJoinLobby places a connection into a lobby: an explicit code joins
// that lobby, an empty code matchmakes into any open one (creating a fresh
// lobby when none has room). A previousId reclaims a player slot left behind
// by a dropped connection mid-match.
func HandleJoinLobby(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.JoinLobbyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		sendError(sess, "bad_payload", "malformed join_lobby payload")
		return
	}
	if sess.PlayerID != "" {
		sendError(sess, "already_joined", "session is already in a lobby")
		return
	}
	if req.Username == "" {
		sendError(sess, "bad_username", "username is required")
		return
	}

	if req.PreviousID != "" && tryReconnect(sess, req, deps) {
		return
	}

	var l *world.Lobby
	if req.LobbyCode != "" {
		l = deps.Registry.Lobby(req.LobbyCode)
		if l == nil {
			sendError(sess, "no_such_lobby", "lobby code not found")
			return
		}
	} else {
		l = deps.Registry.FindAvailableLobby()
		if l == nil {
			l = deps.Registry.CreateLobby()
		}
		if l == nil {
			sendError(sess, "server_full", "no lobby slots available")
			return
		}
	}

	playerID := uuid.NewString()
	if !deps.Registry.AddPlayer(l, playerID, req.Username, sess, time.Now()) {
		sendError(sess, "lobby_unavailable", "lobby is full or mid-match")
		return
	}
	sess.PlayerID = playerID
	sess.LobbyCode = l.Code

	deps.Log.Info("player joined",
		zap.String("player", playerID),
		zap.String("lobby", l.Code),
		zap.String("username", req.Username))

	sess.SendNow(net.MsgJoinResponse, net.JoinResponsePayload{
		PlayerID:  playerID,
		LobbyCode: l.Code,
		InMatch:   l.Active,
	})
}

// tryReconnect reclaims an abandoned player slot. The slot must exist in the
// named lobby and have no live session attached.
func tryReconnect(sess *net.Session, req net.JoinLobbyPayload, deps *Deps) bool {
	l := deps.Registry.LobbyForPlayer(req.PreviousID)
	if l == nil || (req.LobbyCode != "" && req.LobbyCode != l.Code) {
		return false
	}
	p := l.Player(req.PreviousID)
	if p == nil || (p.Session != nil && !p.Session.IsClosed()) {
		return false
	}

	p.Session = sess
	sess.PlayerID = p.ID
	sess.LobbyCode = l.Code

	deps.Log.Info("player reconnected",
		zap.String("player", p.ID),
		zap.String("lobby", l.Code))

	sess.SendNow(net.MsgJoinResponse, net.JoinResponsePayload{
		PlayerID:    p.ID,
		LobbyCode:   l.Code,
		InMatch:     l.Active,
		Reconnected: true,
	})
	return true
}

// HandleLeaveLobby removes the player from their lobby voluntarily.
func HandleLeaveLobby(sess *net.Session, _ json.RawMessage, deps *Deps) {
	if sess.PlayerID == "" {
		return
	}
	removeFromLobby(sess, deps)
	sess.PlayerID = ""
	sess.LobbyCode = ""
}

// removeFromLobby takes a player out of their lobby. During an active match
// the entity stays behind with no session so the player can reconnect; the
// slot is reclaimed or dropped when the match ends.
func removeFromLobby(sess *net.Session, deps *Deps) {
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil {
		return
	}
	if l.Active {
		if p := l.Player(sess.PlayerID); p != nil {
			p.Session = nil
			l.DetachPlayers(p.ID)
			notifyDetached(l, p.ID)
		}
		return
	}
	deps.Registry.RemovePlayer(sess.PlayerID)
}

func sendError(sess *net.Session, code, msg string) {
	sess.SendNow(net.MsgError, net.ErrorPayload{Code: code, Message: msg})
}
