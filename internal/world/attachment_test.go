package world

import (
	"testing"
	"time"
)

func pairLobby(t *testing.T) (*Lobby, time.Time) {
	t.Helper()
	l := testLobby()
	now := time.Now()
	l.AddPlayer("a", "a", nil, now)
	l.AddPlayer("b", "b", nil, now)
	l.AddPlayer("c", "c", nil, now)
	return l, now
}

func TestRequestAcceptAttachment(t *testing.T) {
	l, now := pairLobby(t)

	if !l.RequestAttachment("a", "b", now) {
		t.Fatal("request rejected")
	}
	if s := l.Player("a").Attachment; s != AttachRequestSent {
		t.Fatalf("requester state = %v, want REQUEST_SENT", s)
	}
	if s := l.Player("b").Attachment; s != AttachRequestReceived {
		t.Fatalf("target state = %v, want REQUEST_RECEIVED", s)
	}

	if !l.AcceptAttachment("b", "a") {
		t.Fatal("accept rejected")
	}
	a, b := l.Player("a"), l.Player("b")
	if a.Attachment != AttachAttached || b.Attachment != AttachAttached {
		t.Fatalf("states = %v/%v, want ATTACHED/ATTACHED", a.Attachment, b.Attachment)
	}
	if a.AttachedTo != "b" || b.AttachedTo != "a" {
		t.Fatalf("links = %q/%q, want symmetric", a.AttachedTo, b.AttachedTo)
	}
}

func TestRequestRequiresBothAlone(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)
	l.AcceptAttachment("b", "a")

	if l.RequestAttachment("c", "a", now) {
		t.Fatal("request to an attached player succeeded")
	}
	if l.RequestAttachment("a", "c", now) {
		t.Fatal("request from an attached player succeeded")
	}
	if s := l.Player("c").Attachment; s != AttachAlone {
		t.Fatalf("bystander state = %v, want ALONE", s)
	}
}

func TestRequestRejectsSelfAndDead(t *testing.T) {
	l, now := pairLobby(t)
	if l.RequestAttachment("a", "a", now) {
		t.Fatal("self request succeeded")
	}
	l.DamagePlayer("b", 100, now)
	if l.RequestAttachment("a", "b", now) {
		t.Fatal("request to a dead player succeeded")
	}
}

func TestAcceptRequiresMatchingPendingRequest(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)

	// c never asked b; b cannot accept them.
	if l.AcceptAttachment("b", "c") {
		t.Fatal("accept of a non-requester succeeded")
	}
	// b has a pending request, not a; a cannot accept.
	if l.AcceptAttachment("a", "b") {
		t.Fatal("requester accepted their own request")
	}
	if !l.AcceptAttachment("b", "a") {
		t.Fatal("legitimate accept rejected")
	}
}

func TestDeclineResetsBothSides(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)

	l.DeclineAttachment("b")
	a, b := l.Player("a"), l.Player("b")
	if a.Attachment != AttachAlone || b.Attachment != AttachAlone {
		t.Fatalf("states = %v/%v, want ALONE/ALONE", a.Attachment, b.Attachment)
	}
	if a.PendingPartner != "" || b.PendingPartner != "" {
		t.Fatal("pending partner not cleared")
	}
	// Decline with nothing in flight is a no-op.
	l.DeclineAttachment("b")
}

func TestDetachIsSymmetricAndIdempotent(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)
	l.AcceptAttachment("b", "a")

	l.DetachPlayers("a")
	a, b := l.Player("a"), l.Player("b")
	if a.Attachment != AttachAlone || b.Attachment != AttachAlone {
		t.Fatalf("states = %v/%v, want ALONE/ALONE", a.Attachment, b.Attachment)
	}
	if a.AttachedTo != "" || b.AttachedTo != "" {
		t.Fatal("links not cleared")
	}
	l.DetachPlayers("a")
	l.DetachPlayers("b")
}

func TestDetachCancelsPendingRequest(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)

	l.DetachPlayers("a")
	if s := l.Player("b").Attachment; s != AttachAlone {
		t.Fatalf("target state = %v, want ALONE", s)
	}
}

func TestRemovePlayerDetachesPartner(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)
	l.AcceptAttachment("b", "a")

	l.RemovePlayer("a")
	b := l.Player("b")
	if b.Attachment != AttachAlone || b.AttachedTo != "" {
		t.Fatalf("partner not reset after removal: %v %q", b.Attachment, b.AttachedTo)
	}
}

func TestExpireAttachmentRequests(t *testing.T) {
	l, now := pairLobby(t)
	l.RequestAttachment("a", "b", now)

	if got := l.ExpireAttachmentRequests(15*time.Second, now.Add(10*time.Second)); len(got) != 0 {
		t.Fatalf("expired early: %v", got)
	}
	got := l.ExpireAttachmentRequests(15*time.Second, now.Add(15*time.Second))
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("expired = %v, want [a]", got)
	}
	if s := l.Player("b").Attachment; s != AttachAlone {
		t.Fatalf("target state = %v, want ALONE", s)
	}
}
