package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/duskfall/server/internal/data"
	"github.com/duskfall/server/internal/lobby"
	"github.com/duskfall/server/internal/world"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func testArchetypes() *data.MonsterTable {
	return data.NewMonsterTable([]data.MonsterArchetype{{
		Name:                "stalker",
		MaxHealth:           200,
		MoveSpeed:           6.5,
		WanderSpeed:         2.0,
		VisionRange:         30,
		AttackRange:         2.5,
		AttackDamagePercent: 0.60,
		AttackIntervalMS:    1200,
		RoarDurationMS:      2000,
		SearchDurationMS:    10000,
		LoseSightMS:         5000,
	}})
}

func testRegistry() *lobby.Registry {
	return lobby.NewRegistry(lobby.Settings{
		MaxLobbies:    4,
		Capacity:      8,
		MinPlayers:    2,
		InitialRadius: 100,
		FinalRadius:   10,
		MaxHealth:     100,
	}, zap.NewNop())
}

// startedLobby creates an active lobby with the named players and the match
// clock anchored at t0.
func startedLobby(reg *lobby.Registry, names ...string) *world.Lobby {
	l := reg.CreateLobby()
	for _, name := range names {
		reg.AddPlayer(l, name, name, nil, t0)
	}
	reg.StartMatch(l, t0)
	return l
}
