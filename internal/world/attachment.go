package world

import "time"

// Attachment pairing. Both sides of every transition mutate together so the
// symmetry invariant (ATTACHED ⇔ partner ATTACHED to us) can never be
// observed broken between ticks.

// RequestAttachment moves requester to REQUEST_SENT and target to
// REQUEST_RECEIVED. Both players must exist, be ALIVE and be ALONE.
func (l *Lobby) RequestAttachment(fromID, toID string, now time.Time) bool {
	if fromID == toID {
		return false
	}
	from := l.players[fromID]
	to := l.players[toID]
	if from == nil || to == nil || !from.Alive() || !to.Alive() {
		return false
	}
	if from.Attachment != AttachAlone || to.Attachment != AttachAlone {
		return false
	}
	from.Attachment = AttachRequestSent
	from.PendingPartner = toID
	from.RequestAt = now
	to.Attachment = AttachRequestReceived
	to.PendingPartner = fromID
	to.RequestAt = now
	return true
}

// AcceptAttachment completes the pairing. The accepter must be in
// REQUEST_RECEIVED with a pending request from exactly this requester, and
// the requester must still be waiting on the accepter. Both move to ATTACHED.
func (l *Lobby) AcceptAttachment(accepterID, requesterID string) bool {
	acc := l.players[accepterID]
	req := l.players[requesterID]
	if acc == nil || req == nil || !acc.Alive() || !req.Alive() {
		return false
	}
	if acc.Attachment != AttachRequestReceived || acc.PendingPartner != requesterID {
		return false
	}
	if req.Attachment != AttachRequestSent || req.PendingPartner != accepterID {
		return false
	}
	acc.Attachment = AttachAttached
	acc.AttachedTo = requesterID
	acc.PendingPartner = ""
	req.Attachment = AttachAttached
	req.AttachedTo = accepterID
	req.PendingPartner = ""
	return true
}

// DeclineAttachment cancels an in-flight request from either side. Both
// participants return to ALONE. Safe to call on any state.
func (l *Lobby) DeclineAttachment(id string) {
	p := l.players[id]
	if p == nil {
		return
	}
	if p.Attachment != AttachRequestSent && p.Attachment != AttachRequestReceived {
		return
	}
	partner := l.players[p.PendingPartner]
	resetPending(p)
	if partner != nil && partner.PendingPartner == id {
		resetPending(partner)
	}
}

// DetachPlayers breaks an attachment or cancels a pending request involving
// the given player. Idempotent; the partner is always reset too.
func (l *Lobby) DetachPlayers(id string) {
	p := l.players[id]
	if p == nil {
		return
	}
	switch p.Attachment {
	case AttachAttached:
		partner := l.players[p.AttachedTo]
		p.Attachment = AttachAlone
		p.AttachedTo = ""
		if partner != nil && partner.AttachedTo == id {
			partner.Attachment = AttachAlone
			partner.AttachedTo = ""
		}
	case AttachRequestSent, AttachRequestReceived:
		l.DeclineAttachment(id)
	}
}

// ExpireAttachmentRequests cancels pending requests older than timeout and
// returns the requester ids whose requests expired, for notification.
func (l *Lobby) ExpireAttachmentRequests(timeout time.Duration, now time.Time) []string {
	var expired []string
	for id, p := range l.players {
		if p.Attachment == AttachRequestSent && now.Sub(p.RequestAt) >= timeout {
			expired = append(expired, id)
			l.DeclineAttachment(id)
		}
	}
	return expired
}

func resetPending(p *Player) {
	p.Attachment = AttachAlone
	p.PendingPartner = ""
	p.RequestAt = time.Time{}
}
