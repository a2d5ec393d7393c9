package world

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/duskfall/server/internal/net"
)

// Lobby is one isolated match instance: the entity store for its players,
// monsters and orbs plus the arena they play in. All access happens on the
// game loop goroutine; nothing in here reaches into another lobby.
type Lobby struct {
	Code       string
	Active     bool
	MatchStart time.Time // zero until StartMatch
	Arena      Arena

	MaxHealth float64 // per-match constant applied to new players

	players  map[string]*Player
	monsters map[string]*Monster
	orbs     map[string]*Orb

	nextMonsterID int
	nextOrbID     int

	rng *rand.Rand
}

func NewLobby(code string, initialRadius, finalRadius, maxHealth float64, seed int64) *Lobby {
	return &Lobby{
		Code: code,
		Arena: Arena{
			InitialRadius: initialRadius,
			FinalRadius:   finalRadius,
			SafeRadius:    initialRadius,
		},
		MaxHealth: maxHealth,
		players:   make(map[string]*Player),
		monsters:  make(map[string]*Monster),
		orbs:      make(map[string]*Orb),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Rng exposes the lobby's random source for per-match generation.
func (l *Lobby) Rng() *rand.Rand { return l.rng }

// --- Players ---

// AddPlayer creates a player at a random valid position: ALIVE, full health,
// ALONE. The caller (registry) is responsible for not reusing a live id.
func (l *Lobby) AddPlayer(id, username string, sess *net.Session, now time.Time) *Player {
	p := &Player{
		ID:        id,
		Username:  username,
		Session:   sess,
		Pos:       l.Arena.RandomPosition(l.rng, 1.0),
		Gaze:      Vec3{Z: 1},
		Health:    l.MaxHealth,
		MaxHealth: l.MaxHealth,
		State:     StateAlive,
		JoinedAt:  now,
	}
	l.players[id] = p
	return p
}

// RemovePlayer deletes a player, forcing the attachment partner back to
// ALONE first so the symmetry invariant survives the removal. Idempotent.
func (l *Lobby) RemovePlayer(id string) *Player {
	p, ok := l.players[id]
	if !ok {
		return nil
	}
	l.DetachPlayers(id)
	// Monsters hunting this player lose their target immediately.
	for _, m := range l.monsters {
		if m.TargetID == id {
			m.TargetID = ""
			if m.State == MonsterHunting {
				m.State = MonsterIdle
			}
		}
	}
	delete(l.players, id)
	return p
}

// Player returns a player by id, or nil.
func (l *Lobby) Player(id string) *Player {
	return l.players[id]
}

// PlayerCount returns the number of players in the lobby.
func (l *Lobby) PlayerCount() int {
	return len(l.players)
}

// AlivePlayerCount counts players in the ALIVE state.
func (l *Lobby) AlivePlayerCount() int {
	n := 0
	for _, p := range l.players {
		if p.Alive() {
			n++
		}
	}
	return n
}

// AllPlayers iterates every player in the lobby.
func (l *Lobby) AllPlayers(fn func(*Player)) {
	for _, p := range l.players {
		fn(p)
	}
}

// AlivePlayers returns the current ALIVE player set.
func (l *Lobby) AlivePlayers() []*Player {
	out := make([]*Player, 0, len(l.players))
	for _, p := range l.players {
		if p.Alive() {
			out = append(out, p)
		}
	}
	return out
}

// UpdateTransform overwrites a player's position, rotation and gaze.
// Non-finite input is discarded; the position is clamped to the safe radius.
func (l *Lobby) UpdateTransform(id string, pos Vec3, rot Rotation, gaze Vec3) {
	p := l.players[id]
	if p == nil {
		return
	}
	if !pos.Finite() || !rot.Finite() || !gaze.Finite() {
		return
	}
	p.Pos = l.Arena.Clamp(pos)
	p.Rot = rot
	p.Gaze = gaze.PlanarNormalized()
	if p.Gaze.PlanarLen() == 0 {
		p.Gaze = Vec3{Z: 1}
	}
}

// CanBlink reports whether the blink cooldown has elapsed.
func (l *Lobby) CanBlink(id string, now time.Time) bool {
	p := l.players[id]
	if p == nil {
		return false
	}
	return !now.Before(p.BlinkCooldownEnd)
}

// ExecuteBlink stamps the next allowed blink time. The store does not
// re-validate; callers must check CanBlink first.
func (l *Lobby) ExecuteBlink(id string, cooldown time.Duration, now time.Time) {
	p := l.players[id]
	if p == nil {
		return
	}
	p.BlinkCooldownEnd = now.Add(cooldown)
}

// DamagePlayer applies damage, clamped at zero. Reaching zero forces DEAD and
// stamps the hit time. Damage to a DEAD player is ignored. Returns true when
// this call killed the player.
func (l *Lobby) DamagePlayer(id string, amount float64, now time.Time) bool {
	p := l.players[id]
	if p == nil || p.State != StateAlive || amount <= 0 {
		return false
	}
	p.Health -= amount
	p.LastAttackTime = now
	if p.Health <= 0 {
		p.Health = 0
		p.State = StateDead
		p.DiedAt = now
		return true
	}
	return false
}

// RegenPlayer heals an ALIVE player, clamped at max health. No-op on DEAD.
func (l *Lobby) RegenPlayer(id string, amount float64) {
	p := l.players[id]
	if p == nil || p.State != StateAlive || amount <= 0 {
		return
	}
	p.Health += amount
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
}

// AddScore adds points unconditionally; scores have no upper bound.
func (l *Lobby) AddScore(id string, points int) {
	if p := l.players[id]; p != nil {
		p.Score += points
	}
}

// GetNearbyPlayers returns all other players within planar radius of the
// given player's position. The player itself is always excluded.
func (l *Lobby) GetNearbyPlayers(fromID string, radius float64) []*Player {
	from := l.players[fromID]
	if from == nil {
		return nil
	}
	var out []*Player
	for id, p := range l.players {
		if id == fromID {
			continue
		}
		if PlanarDist(from.Pos, p.Pos) <= radius {
			out = append(out, p)
		}
	}
	return out
}

// --- Monsters ---

// NextMonsterID allocates a lobby-unique monster id.
func (l *Lobby) NextMonsterID() string {
	l.nextMonsterID++
	return fmt.Sprintf("m%d", l.nextMonsterID)
}

// SpawnMonster registers a monster. Duplicate ids are a caller error.
func (l *Lobby) SpawnMonster(m *Monster) {
	l.monsters[m.ID] = m
}

// RemoveMonster deletes a monster. Idempotent.
func (l *Lobby) RemoveMonster(id string) {
	delete(l.monsters, id)
}

// Monster returns a monster by id, or nil.
func (l *Lobby) Monster(id string) *Monster {
	return l.monsters[id]
}

// MonsterCount returns the number of live monsters.
func (l *Lobby) MonsterCount() int {
	return len(l.monsters)
}

// AllMonsters iterates every monster in the lobby.
func (l *Lobby) AllMonsters(fn func(*Monster)) {
	for _, m := range l.monsters {
		fn(m)
	}
}

// --- Orbs ---

// NextOrbID allocates a lobby-unique orb id.
func (l *Lobby) NextOrbID() string {
	l.nextOrbID++
	return fmt.Sprintf("o%d", l.nextOrbID)
}

// AddOrb places a fresh uncollected orb.
func (l *Lobby) AddOrb(pos Vec3, value int) *Orb {
	o := &Orb{ID: l.NextOrbID(), Pos: pos, Value: value}
	l.orbs[o.ID] = o
	return o
}

// CollectOrb is an atomic check-and-set: it returns the orb's value exactly
// once. Unknown or already-collected ids return 0, which makes duplicate or
// racing collect messages harmless.
func (l *Lobby) CollectOrb(id string, now time.Time) int {
	o := l.orbs[id]
	if o == nil || o.Collected {
		return 0
	}
	o.Collected = true
	o.CollectedAt = now
	return o.Value
}

// RemoveOrb deletes an orb. Idempotent.
func (l *Lobby) RemoveOrb(id string) {
	delete(l.orbs, id)
}

// OrbCount returns the number of orbs, collected or not.
func (l *Lobby) OrbCount() int {
	return len(l.orbs)
}

// AllOrbs iterates every orb in the lobby.
func (l *Lobby) AllOrbs(fn func(*Orb)) {
	for _, o := range l.orbs {
		fn(o)
	}
}

// --- Match lifecycle ---

// ResetMatchState clears per-match entities and restores the arena so the
// same lobby code can host a rematch. Players stay but are restored to a
// pre-match baseline.
func (l *Lobby) ResetMatchState() {
	l.Active = false
	l.MatchStart = time.Time{}
	l.Arena.SafeRadius = l.Arena.InitialRadius
	l.Arena.Obstacles = nil
	l.monsters = make(map[string]*Monster)
	l.orbs = make(map[string]*Orb)
	for _, p := range l.players {
		p.Health = p.MaxHealth
		p.State = StateAlive
		p.Score = 0
		p.BlinkCooldownEnd = time.Time{}
		p.DiedAt = time.Time{}
	}
}

// MatchTime returns the elapsed match duration, or zero when not started.
func (l *Lobby) MatchTime(now time.Time) time.Duration {
	if l.MatchStart.IsZero() {
		return 0
	}
	return now.Sub(l.MatchStart)
}
