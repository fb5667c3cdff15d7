package client

import (
	"sort"

	"github.com/quizdefense/quizdefense/internal/protocol"
)

// Scoreboard is the local leaderboard. Each player is the sole writer of
// its own entry; everyone else's entries arrive as player-stats-updated
// relays and are mirrored as-is.
type Scoreboard struct {
	names   map[string]string
	entries map[string]protocol.PlayerStats
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{
		names:   make(map[string]string),
		entries: make(map[string]protocol.PlayerStats),
	}
}

// SetRoster (re)binds player ids to display names from a roster snapshot.
func (sb *Scoreboard) SetRoster(players []protocol.PlayerInfo) {
	for _, p := range players {
		sb.names[p.ID] = p.Name
		if _, ok := sb.entries[p.ID]; !ok {
			sb.entries[p.ID] = protocol.PlayerStats{}
		}
	}
}

// Update overwrites one player's entry. Last write per key wins.
func (sb *Scoreboard) Update(playerID string, stats protocol.PlayerStats) {
	sb.entries[playerID] = stats
}

type ScoreboardRow struct {
	PlayerID string
	Name     string
	Stats    protocol.PlayerStats
}

// Rows returns the leaderboard sorted by score, highest first.
func (sb *Scoreboard) Rows() []ScoreboardRow {
	rows := make([]ScoreboardRow, 0, len(sb.entries))
	for id, stats := range sb.entries {
		rows = append(rows, ScoreboardRow{
			PlayerID: id,
			Name:     sb.names[id],
			Stats:    stats,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Stats.Score != rows[j].Stats.Score {
			return rows[i].Stats.Score > rows[j].Stats.Score
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	return rows
}

// TeamScore sums every entry.
func (sb *Scoreboard) TeamScore() int {
	total := 0
	for _, stats := range sb.entries {
		total += stats.Score
	}
	return total
}
