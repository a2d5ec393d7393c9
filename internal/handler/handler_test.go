package handler

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/server/internal/config"
	"github.com/duskfall/server/internal/core/event"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/system"
	"github.com/duskfall/server/internal/world"
)

func testDeps() *Deps {
	cfg := config.Defaults()
	cfg.Game.MinPlayers = 2
	cfg.Arena.ObstacleCount = 0
	return &Deps{
		Config:   cfg,
		Log:      zap.NewNop(),
		Registry: lobby.NewRegistry(lobby.Settings{
			MaxLobbies:    4,
			Capacity:      4,
			MinPlayers:    cfg.Game.MinPlayers,
			InitialRadius: cfg.Arena.Radius,
			FinalRadius:   cfg.Arena.FinalRadius,
			MaxHealth:     cfg.Game.MaxHealth,
		}, zap.NewNop()),
		Sessions: net.NewSessionTable(),
		Bus:      event.NewBus(),
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func join(t *testing.T, deps *Deps, sess *net.Session, username, code string) {
	t.Helper()
	HandleJoinLobby(sess, mustJSON(t, net.JoinLobbyPayload{Username: username, LobbyCode: code}), deps)
	if sess.PlayerID == "" {
		t.Fatalf("join failed for %s", username)
	}
}

func TestJoinMatchmakesIntoOneLobby(t *testing.T) {
	deps := testDeps()
	a, b := &net.Session{ID: 1}, &net.Session{ID: 2}
	join(t, deps, a, "ash", "")
	join(t, deps, b, "birch", "")

	if a.LobbyCode != b.LobbyCode {
		t.Fatalf("matchmade into different lobbies: %q vs %q", a.LobbyCode, b.LobbyCode)
	}
	if deps.Registry.LobbyCount() != 1 {
		t.Fatalf("lobby count = %d, want 1", deps.Registry.LobbyCount())
	}
}

func TestJoinUnknownCodeFails(t *testing.T) {
	deps := testDeps()
	sess := &net.Session{ID: 1}
	HandleJoinLobby(sess, mustJSON(t, net.JoinLobbyPayload{Username: "ash", LobbyCode: "ZZZZZ"}), deps)
	if sess.PlayerID != "" {
		t.Fatal("join to unknown code succeeded")
	}
}

func TestDoubleJoinRejected(t *testing.T) {
	deps := testDeps()
	sess := &net.Session{ID: 1}
	join(t, deps, sess, "ash", "")
	before := sess.PlayerID
	HandleJoinLobby(sess, mustJSON(t, net.JoinLobbyPayload{Username: "ash2"}), deps)
	if sess.PlayerID != before {
		t.Fatal("second join replaced player identity")
	}
}

func TestStartMatchSeedsWorld(t *testing.T) {
	deps := testDeps()
	a, b := &net.Session{ID: 1}, &net.Session{ID: 2}
	join(t, deps, a, "ash", "")
	join(t, deps, b, "birch", "")

	HandleStartMatch(a, nil, deps)
	l := deps.Registry.LobbyForPlayer(a.PlayerID)
	if !l.Active {
		t.Fatal("match did not start")
	}
	if l.OrbCount() != deps.Config.Orbs.InitialCount {
		t.Fatalf("orbs = %d, want %d", l.OrbCount(), deps.Config.Orbs.InitialCount)
	}
}

func TestStartMatchNeedsMinPlayers(t *testing.T) {
	deps := testDeps()
	a := &net.Session{ID: 1}
	join(t, deps, a, "ash", "")
	HandleStartMatch(a, nil, deps)
	if deps.Registry.LobbyForPlayer(a.PlayerID).Active {
		t.Fatal("solo lobby started a match")
	}
}

func startedPair(t *testing.T) (*Deps, *net.Session, *net.Session, *world.Lobby) {
	t.Helper()
	deps := testDeps()
	a, b := &net.Session{ID: 1}, &net.Session{ID: 2}
	join(t, deps, a, "ash", "")
	join(t, deps, b, "birch", "")
	HandleStartMatch(a, nil, deps)
	return deps, a, b, deps.Registry.LobbyForPlayer(a.PlayerID)
}

func TestCollectOrbScoresOnce(t *testing.T) {
	deps, a, b, l := startedPair(t)

	var orbID string
	l.AllOrbs(func(o *world.Orb) {
		if orbID == "" {
			orbID = o.ID
		}
	})

	payload := mustJSON(t, net.CollectOrbPayload{OrbID: orbID})
	HandleCollectOrb(a, payload, deps)
	HandleCollectOrb(b, payload, deps)

	if got := l.Player(a.PlayerID).Score; got != deps.Config.Orbs.Value {
		t.Fatalf("collector score = %d, want %d", got, deps.Config.Orbs.Value)
	}
	if got := l.Player(b.PlayerID).Score; got != 0 {
		t.Fatalf("second collector score = %d, want 0", got)
	}
}

func TestAttachFlow(t *testing.T) {
	deps, a, b, l := startedPair(t)

	HandleAttachRequest(a, mustJSON(t, net.AttachRequestPayload{TargetID: b.PlayerID}), deps)
	HandleAttachResponse(b, mustJSON(t, net.AttachResponsePayload{RequesterID: a.PlayerID, Accept: true}), deps)

	pa, pb := l.Player(a.PlayerID), l.Player(b.PlayerID)
	if pa.Attachment != world.AttachAttached || pb.Attachment != world.AttachAttached {
		t.Fatalf("states = %v/%v, want ATTACHED", pa.Attachment, pb.Attachment)
	}

	HandleDetach(a, nil, deps)
	if pa.Attachment != world.AttachAlone || pb.Attachment != world.AttachAlone {
		t.Fatal("detach did not reset both sides")
	}
}

func TestBroadcastTimerReachesOnlyNearbyPlayers(t *testing.T) {
	deps, a, b, l := startedPair(t)
	l.Player(a.PlayerID).Pos = world.Vec3{}
	l.Player(b.PlayerID).Pos = world.Vec3{X: deps.Config.Timer.Radius + 50}
	beforeA, beforeB := a.PendingOutput(), b.PendingOutput()

	payload := mustJSON(t, net.BroadcastTimerPayload{Label: "regroup", DurationS: 30})
	HandleBroadcastTimer(a, payload, deps)
	if a.PendingOutput() != beforeA+1 {
		t.Fatal("caller did not get their own announcement")
	}
	if b.PendingOutput() != beforeB {
		t.Fatal("out-of-range player received the announcement")
	}

	l.Player(b.PlayerID).Pos = world.Vec3{X: 5}
	HandleBroadcastTimer(a, payload, deps)
	if b.PendingOutput() != beforeB+1 {
		t.Fatal("nearby player missed the announcement")
	}
}

func TestDeathAndSpawnNoticesReachLobby(t *testing.T) {
	deps, a, b, l := startedPair(t)
	RegisterNotifications(deps)
	beforeA, beforeB := a.PendingOutput(), b.PendingOutput()

	event.Emit(deps.Bus, system.PlayerDiedEvent{
		LobbyCode: l.Code,
		PlayerID:  a.PlayerID,
		KillerID:  "monster-1",
	})
	event.Emit(deps.Bus, system.MonsterSpawnedEvent{
		LobbyCode: l.Code,
		MonsterID: "monster-2",
		Archetype: "stalker",
	})
	deps.Bus.SwapBuffers()
	deps.Bus.DispatchAll()

	if a.PendingOutput() != beforeA+2 || b.PendingOutput() != beforeB+2 {
		t.Fatalf("notices buffered = %d/%d, want both members to get both",
			a.PendingOutput()-beforeA, b.PendingOutput()-beforeB)
	}

	// Events for an unknown lobby go nowhere.
	event.Emit(deps.Bus, system.PlayerDiedEvent{LobbyCode: "ZZZZZ", PlayerID: "ghost"})
	deps.Bus.SwapBuffers()
	deps.Bus.DispatchAll()
	if a.PendingOutput() != beforeA+2 {
		t.Fatal("notice for an unknown lobby was delivered")
	}
}

func TestBlinkSetsCooldown(t *testing.T) {
	deps, a, _, l := startedPair(t)
	HandleBlinkAction(a, mustJSON(t, net.BlinkActionPayload{Target: net.Vec{X: 5, Z: 5}}), deps)

	p := l.Player(a.PlayerID)
	if p.Pos.X != 5 || p.Pos.Z != 5 {
		t.Fatalf("blink did not move player: %+v", p.Pos)
	}
	if !time.Now().Before(p.BlinkCooldownEnd) {
		t.Fatal("cooldown not set")
	}

	HandleBlinkAction(a, mustJSON(t, net.BlinkActionPayload{Target: net.Vec{X: 9, Z: 9}}), deps)
	if p.Pos.X != 5 {
		t.Fatal("blink on cooldown moved player")
	}
}

func TestRateLimitDropsBursts(t *testing.T) {
	deps := testDeps()
	d := NewDispatcher(deps)
	sess := &net.Session{ID: 1}

	if !d.allow(sess, net.MsgPlayerInput, 10*time.Millisecond) {
		t.Fatal("first message blocked")
	}
	if d.allow(sess, net.MsgPlayerInput, 10*time.Millisecond) {
		t.Fatal("instant repeat allowed")
	}
	// Independent types keep their own clocks.
	if !d.allow(sess, net.MsgBlinkAction, 10*time.Millisecond) {
		t.Fatal("different type blocked by input clock")
	}
}

func TestReconnectReclaimsSlot(t *testing.T) {
	deps, a, _, l := startedPair(t)
	prev := a.PlayerID

	// Drop mid-match: entity stays behind without a session.
	removeFromLobby(a, deps)
	if l.Player(prev) == nil {
		t.Fatal("mid-match drop deleted the player")
	}

	fresh := &net.Session{ID: 9}
	HandleJoinLobby(fresh, mustJSON(t, net.JoinLobbyPayload{Username: "ash", PreviousID: prev}), deps)
	if fresh.PlayerID != prev {
		t.Fatalf("reconnect id = %q, want %q", fresh.PlayerID, prev)
	}
	if l.Player(prev).Session != fresh {
		t.Fatal("session not reattached")
	}
}
