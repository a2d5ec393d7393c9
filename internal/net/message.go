package net

import "encoding/json"

// Envelope is the wire format for every message in both directions.
// Payload stays raw until a handler knows the concrete type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound pairs a decoded envelope with the session it arrived on. The game
// loop consumes these from the server's shared inbox.
type Inbound struct {
	Session *Session
	Env     Envelope
}

// Client → server message types.
const (
	MsgJoinLobby      = "join_lobby"
	MsgStartMatch     = "start_match"
	MsgPlayerInput    = "player_input"
	MsgBlinkAction    = "blink_action"
	MsgCollectOrb     = "collect_orb"
	MsgAttachRequest  = "attach_request"
	MsgAttachResponse = "attach_response"
	MsgDetach         = "detach"
	MsgBroadcastTimer = "broadcast_timer"
	MsgLeaveLobby     = "leave_lobby"
)

// Server → client message types.
const (
	MsgJoinResponse    = "join_response"
	MsgStateUpdate     = "state_update"
	MsgMatchStart      = "match_start"
	MsgMatchEnd        = "match_end"
	MsgOrbCollected    = "orb_collected"
	MsgBlinkResponse   = "blink_response"
	MsgAttachRequested = "attach_requested"
	MsgAttachAccepted  = "attach_accepted"
	MsgAttachDeclined  = "attach_declined"
	MsgPlayerDetached  = "player_detached"
	MsgPlayerDied      = "player_died"
	MsgMonsterSpawned  = "monster_spawned"
	MsgCooldownNotice  = "cooldown_notice"
	MsgError           = "error"
)

// Vec and Rot are wire-side transform types; the world package has its own.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Rot struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// --- Client payloads ---

type JoinLobbyPayload struct {
	Username   string `json:"username"`
	LobbyCode  string `json:"lobbyCode,omitempty"`  // empty = matchmake
	PreviousID string `json:"previousId,omitempty"` // reconnect token
}

type PlayerInputPayload struct {
	Pos  Vec `json:"pos"`
	Rot  Rot `json:"rot"`
	Gaze Vec `json:"gaze"`
}

type BlinkActionPayload struct {
	Target Vec `json:"target"`
}

type CollectOrbPayload struct {
	OrbID string `json:"orbId"`
}

type AttachRequestPayload struct {
	TargetID string `json:"targetId"`
}

type AttachResponsePayload struct {
	RequesterID string `json:"requesterId"`
	Accept      bool   `json:"accept"`
}

type BroadcastTimerPayload struct {
	Label     string `json:"label"`
	DurationS int    `json:"durationS"`
}

// --- Server payloads ---

type JoinResponsePayload struct {
	PlayerID    string `json:"playerId"`
	LobbyCode   string `json:"lobbyCode"`
	InMatch     bool   `json:"inMatch"`
	Reconnected bool   `json:"reconnected,omitempty"`
}

type PlayerSnapshot struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Pos        Vec     `json:"pos"`
	Rot        Rot     `json:"rot"`
	Health     float64 `json:"health"`
	MaxHealth  float64 `json:"maxHealth"`
	Score      int     `json:"score"`
	State      string  `json:"state"`
	Attachment string  `json:"attachment"`
	AttachedTo string  `json:"attachedTo,omitempty"`
}

type MonsterSnapshot struct {
	ID        string `json:"id"`
	Archetype string `json:"archetype"`
	Pos       Vec    `json:"pos"`
	Gaze      Vec    `json:"gaze"`
	State     string `json:"state"`
}

type OrbSnapshot struct {
	ID    string `json:"id"`
	Pos   Vec    `json:"pos"`
	Value int    `json:"value"`
}

type StateUpdatePayload struct {
	Tick       uint64            `json:"tick"`
	MatchMS    int64             `json:"matchMs"`
	SafeRadius float64           `json:"safeRadius"`
	Players    []PlayerSnapshot  `json:"players"`
	Monsters   []MonsterSnapshot `json:"monsters"`
	Orbs       []OrbSnapshot     `json:"orbs"`
}

type MatchStartPayload struct {
	LobbyCode  string     `json:"lobbyCode"`
	SafeRadius float64    `json:"safeRadius"`
	Obstacles  []Obstacle `json:"obstacles"`
}

type Obstacle struct {
	MinX float64 `json:"minX"`
	MinZ float64 `json:"minZ"`
	MaxX float64 `json:"maxX"`
	MaxZ float64 `json:"maxZ"`
}

type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Winner   bool   `json:"winner"`
}

type MatchEndPayload struct {
	Reason string       `json:"reason"`
	Scores []ScoreEntry `json:"scores"`
}

type OrbCollectedPayload struct {
	OrbID    string `json:"orbId"`
	PlayerID string `json:"playerId"`
	Value    int    `json:"value"`
	NewScore int    `json:"newScore"`
}

type BlinkResponsePayload struct {
	Accepted   bool  `json:"accepted"`
	Pos        Vec   `json:"pos"`
	CooldownMS int64 `json:"cooldownMs"`
}

type AttachRequestedPayload struct {
	RequesterID string `json:"requesterId"`
	Username    string `json:"username"`
}

type AttachResultPayload struct {
	PartnerID string `json:"partnerId"`
}

type PlayerDetachedPayload struct {
	PlayerID  string `json:"playerId"`
	PartnerID string `json:"partnerId"`
}

type PlayerDiedPayload struct {
	PlayerID string `json:"playerId"`
	KillerID string `json:"killerId,omitempty"` // empty when the arena did it
}

type MonsterSpawnedPayload struct {
	MonsterID string `json:"monsterId"`
	Archetype string `json:"archetype"`
}

type CooldownNoticePayload struct {
	Action      string `json:"action"`
	RemainingMS int64  `json:"remainingMs"`
}

type BroadcastTimerNotice struct {
	Label     string `json:"label"`
	DurationS int    `json:"durationS"`
	From      string `json:"from"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Encode marshals a typed payload into an envelope, ready for Session.Send.
// Marshal errors only happen for non-serializable types, which would be a
// programming error, so they surface as a nil slice the session drops.
func Encode(msgType string, payload any) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	data, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil
	}
	return data
}
