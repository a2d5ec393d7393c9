package persist

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MatchResult is one finished match headed for the archive.
type MatchResult struct {
	LobbyCode  string
	Reason     string
	DurationMS int64
	EndedAt    time.Time
	Players    []MatchPlayer
}

// MatchPlayer is one participant's final line in a match result.
type MatchPlayer struct {
	PlayerID string
	Username string
	Score    int
	Winner   bool
}

// MatchRepo archives finished matches. Writes run off the game loop; a lost
// archive row never blocks or fails a match.
type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Save inserts a match result and its player rows in one transaction.
func (r *MatchRepo) Save(ctx context.Context, res MatchResult) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var matchID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO match_results (lobby_code, reason, duration_ms, ended_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		res.LobbyCode, res.Reason, res.DurationMS, res.EndedAt,
	).Scan(&matchID)
	if err != nil {
		return err
	}

	for _, p := range res.Players {
		if _, err := tx.Exec(ctx,
			`INSERT INTO match_players (match_id, player_id, username, score, winner)
			 VALUES ($1, $2, $3, $4, $5)`,
			matchID, p.PlayerID, p.Username, p.Score, p.Winner,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// SaveAsync fires the archive write on its own goroutine with a bounded
// timeout, logging failures instead of surfacing them to the game loop.
func (r *MatchRepo) SaveAsync(res MatchResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Save(ctx, res); err != nil {
			r.db.log.Error("match archive failed",
				zap.String("lobby", res.LobbyCode), zap.Error(err))
		}
	}()
}

// RecentForLobby returns up to limit archived results for a lobby code,
// newest first.
func (r *MatchRepo) RecentForLobby(ctx context.Context, code string, limit int) ([]MatchResult, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT lobby_code, reason, duration_ms, ended_at
		 FROM match_results WHERE lobby_code = $1
		 ORDER BY ended_at DESC LIMIT $2`, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchResult
	for rows.Next() {
		var m MatchResult
		if err := rows.Scan(&m.LobbyCode, &m.Reason, &m.DurationMS, &m.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
