package lobby

import (
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/server/internal/net"
	"github.com/duskfall/server/internal/world"
)

// Settings carries the per-lobby constants the registry stamps onto every
// lobby it creates.
type Settings struct {
	MaxLobbies    int
	Capacity      int
	MinPlayers    int
	InitialRadius float64
	FinalRadius   float64
	MaxHealth     float64
}

// Registry owns every live lobby and the player → lobby reverse index.
// Accessed only from the game loop goroutine — no locks needed.
type Registry struct {
	settings Settings
	lobbies  map[string]*world.Lobby
	byPlayer map[string]string // player id → lobby code
	seed     func() int64
	log      *zap.Logger
}

func NewRegistry(settings Settings, log *zap.Logger) *Registry {
	return &Registry{
		settings: settings,
		lobbies:  make(map[string]*world.Lobby),
		byPlayer: make(map[string]string),
		seed:     func() int64 { return time.Now().UnixNano() },
		log:      log,
	}
}

// CreateLobby makes a new empty lobby with a unique code. Returns nil when
// the lobby cap is reached.
func (r *Registry) CreateLobby() *world.Lobby {
	if len(r.lobbies) >= r.settings.MaxLobbies {
		return nil
	}
	code := newCode()
	for r.lobbies[code] != nil {
		code = newCode()
	}
	l := world.NewLobby(code, r.settings.InitialRadius, r.settings.FinalRadius, r.settings.MaxHealth, r.seed())
	r.lobbies[code] = l
	r.log.Info("lobby created", zap.String("code", code))
	return l
}

// Lobby returns the lobby with the given code, or nil.
func (r *Registry) Lobby(code string) *world.Lobby {
	return r.lobbies[code]
}

// LobbyCount returns the number of live lobbies.
func (r *Registry) LobbyCount() int {
	return len(r.lobbies)
}

// FindAvailableLobby returns some lobby that has not started a match and has
// a free slot, or nil when none exists.
func (r *Registry) FindAvailableLobby() *world.Lobby {
	for _, l := range r.lobbies {
		if !l.Active && l.PlayerCount() < r.settings.Capacity {
			return l
		}
	}
	return nil
}

// AddPlayer places a player into the lobby, re-checking capacity, and
// records the reverse index entry. Returns false when the lobby is full or
// already in a match.
func (r *Registry) AddPlayer(l *world.Lobby, playerID, username string, sess *net.Session, now time.Time) bool {
	if l.Active || l.PlayerCount() >= r.settings.Capacity {
		return false
	}
	l.AddPlayer(playerID, username, sess, now)
	r.byPlayer[playerID] = l.Code
	return true
}

// LobbyForPlayer resolves the reverse index, or nil.
func (r *Registry) LobbyForPlayer(playerID string) *world.Lobby {
	code, ok := r.byPlayer[playerID]
	if !ok {
		return nil
	}
	return r.lobbies[code]
}

// RemovePlayer takes a player out of their lobby and drops an empty inactive
// lobby entirely.
func (r *Registry) RemovePlayer(playerID string) {
	l := r.LobbyForPlayer(playerID)
	delete(r.byPlayer, playerID)
	if l == nil {
		return
	}
	l.RemovePlayer(playerID)
	if l.PlayerCount() == 0 && !l.Active {
		delete(r.lobbies, l.Code)
		r.log.Info("lobby removed", zap.String("code", l.Code))
	}
}

// CollectEmpty drops lobbies with no players that are not mid-match. Called
// from the cleanup phase.
func (r *Registry) CollectEmpty() {
	for code, l := range r.lobbies {
		if l.PlayerCount() == 0 && !l.Active {
			delete(r.lobbies, code)
			r.log.Info("lobby collected", zap.String("code", code))
		}
	}
}

// CanStartMatch reports whether the lobby has enough players and no match
// already running.
func (r *Registry) CanStartMatch(l *world.Lobby) bool {
	return !l.Active && l.PlayerCount() >= r.settings.MinPlayers
}

// StartMatch flips the lobby into its active state.
func (r *Registry) StartMatch(l *world.Lobby, now time.Time) {
	l.Active = true
	l.MatchStart = now
	r.log.Info("match started", zap.String("code", l.Code), zap.Int("players", l.PlayerCount()))
}

// ShouldEndMatch reports whether the match is over: one or zero players left
// alive, or the arena fully contracted.
func (r *Registry) ShouldEndMatch(l *world.Lobby) bool {
	if !l.Active {
		return false
	}
	return l.AlivePlayerCount() <= 1 || l.Arena.FullyShrunk()
}

// Winners returns the players holding the top score. Ties produce multiple
// winners; an empty lobby produces none.
func (r *Registry) Winners(l *world.Lobby) []*world.Player {
	best := -1
	l.AllPlayers(func(p *world.Player) {
		if p.Score > best {
			best = p.Score
		}
	})
	if best < 0 {
		return nil
	}
	var winners []*world.Player
	l.AllPlayers(func(p *world.Player) {
		if p.Score == best {
			winners = append(winners, p)
		}
	})
	return winners
}

// EndMatch resets the lobby for a rematch and returns the final winner set.
func (r *Registry) EndMatch(l *world.Lobby) []*world.Player {
	winners := r.Winners(l)
	l.ResetMatchState()
	r.log.Info("match ended", zap.String("code", l.Code), zap.Int("winners", len(winners)))
	return winners
}

// AllLobbies iterates every lobby.
func (r *Registry) AllLobbies(fn func(*world.Lobby)) {
	for _, l := range r.lobbies {
		fn(l)
	}
}
