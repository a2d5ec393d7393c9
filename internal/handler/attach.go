package handler

import (
	"encoding/json"
	"time"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// HandleAttachRequest opens a pairing offer to another player. Both sides
// must be alive and unpaired; anything else is a silent refusal so stale
// requests cannot be used to probe lobby state.
func HandleAttachRequest(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.AttachRequestPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil || !l.Active {
		return
	}
	if !l.RequestAttachment(sess.PlayerID, req.TargetID, time.Now()) {
		sess.SendNow(net.MsgAttachDeclined, net.AttachResultPayload{PartnerID: req.TargetID})
		return
	}

	from := l.Player(sess.PlayerID)
	if target := l.Player(req.TargetID); target != nil {
		target.Send(net.Encode(net.MsgAttachRequested, net.AttachRequestedPayload{
			RequesterID: from.ID,
			Username:    from.Username,
		}))
	}
}

// HandleAttachResponse answers a pending offer. Accepting pairs both
// players; declining returns both to unpaired.
func HandleAttachResponse(sess *net.Session, payload json.RawMessage, deps *Deps) {
	var req net.AttachResponsePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil {
		return
	}

	if !req.Accept {
		l.DeclineAttachment(sess.PlayerID)
		if requester := l.Player(req.RequesterID); requester != nil {
			requester.Send(net.Encode(net.MsgAttachDeclined, net.AttachResultPayload{
				PartnerID: sess.PlayerID,
			}))
		}
		return
	}

	if !l.AcceptAttachment(sess.PlayerID, req.RequesterID) {
		sess.SendNow(net.MsgAttachDeclined, net.AttachResultPayload{PartnerID: req.RequesterID})
		return
	}
	if requester := l.Player(req.RequesterID); requester != nil {
		requester.Send(net.Encode(net.MsgAttachAccepted, net.AttachResultPayload{
			PartnerID: sess.PlayerID,
		}))
	}
	sess.SendNow(net.MsgAttachAccepted, net.AttachResultPayload{PartnerID: req.RequesterID})
}

// HandleDetach breaks the sender's attachment or cancels their pending
// request. Harmless when there is nothing to break.
func HandleDetach(sess *net.Session, _ json.RawMessage, deps *Deps) {
	l := deps.Registry.LobbyForPlayer(sess.PlayerID)
	if l == nil {
		return
	}
	p := l.Player(sess.PlayerID)
	if p == nil || p.Attachment == world.AttachAlone {
		return
	}
	l.DetachPlayers(sess.PlayerID)
	notifyDetached(l, sess.PlayerID)
}

// notifyDetached tells the lobby the pairing ended.
func notifyDetached(l *world.Lobby, playerID string) {
	p := l.Player(playerID)
	if p == nil {
		return
	}
	msg := net.Encode(net.MsgPlayerDetached, net.PlayerDetachedPayload{PlayerID: playerID})
	p.Send(msg)
	// The partner link is already cleared; broadcast keeps everyone honest.
	l.AllPlayers(func(member *world.Player) {
		if member.ID != playerID {
			member.Send(msg)
		}
	})
}
