// Package scoreboard turns stored scores and the game in progress into the
// rows the leaderboard shows.
package scoreboard

import (
	"sort"
	"time"

	"github.com/hersh/blitztris/internal/protocol"
)

// TopN is how many rows the leaderboard displays.
const TopN = 15

// LiveID marks the temporary entry for the game in progress.
const LiveID = "current-game-temp-id"

// Live describes the local player's current game.
type Live struct {
	Playing bool
	Name    string
	Score   int
	Level   int
	// SavedID is the stored record of the last finished game, if any.
	SavedID string
}

// Entry is one leaderboard row.
type Entry struct {
	protocol.ScoreRecord
	// Current is set on the in-progress entry and on the player's saved record.
	Current bool
}

// Table is the visible leaderboard plus where the player stands.
type Table struct {
	Top []Entry
	// Rank is the player's 0-based position in the full ordering, or -1.
	Rank int
	// Player is the player's row when Rank >= 0.
	Player Entry
}

// OffBoard reports whether the player is ranked but outside the top rows.
func (t Table) OffBoard() bool {
	return t.Rank >= len(t.Top)
}

// Standings merges the live game into records, orders everything by score
// and cuts the top rows. The live entry appears only while a game is being
// played, has a positive score and has not been saved yet.
func Standings(records []protocol.ScoreRecord, live Live) Table {
	all := make([]Entry, 0, len(records)+1)
	for _, r := range records {
		all = append(all, Entry{ScoreRecord: r, Current: live.SavedID != "" && r.ID == live.SavedID})
	}
	if live.Playing && live.Score > 0 && live.SavedID == "" {
		all = append(all, Entry{
			ScoreRecord: protocol.ScoreRecord{
				ID:    LiveID,
				Name:  live.Name,
				Score: live.Score,
				Level: live.Level,
				Date:  time.Now(),
			},
			Current: true,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	t := Table{Rank: -1}
	for i, e := range all {
		if e.Current {
			t.Rank = i
			t.Player = e
			break
		}
	}
	n := len(all)
	if n > TopN {
		n = TopN
	}
	t.Top = all[:n]
	return t
}

// RankedUp reports whether the player climbed between two tables.
func RankedUp(prev, next int) bool {
	return prev >= 0 && next >= 0 && next < prev
}
