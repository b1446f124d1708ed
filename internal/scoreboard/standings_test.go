package scoreboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hersh/blitztris/internal/protocol"
)

func records(scores ...int) []protocol.ScoreRecord {
	recs := make([]protocol.ScoreRecord, len(scores))
	for i, s := range scores {
		recs[i] = protocol.ScoreRecord{ID: fmt.Sprintf("id%d", i), Name: fmt.Sprintf("p%d", i), Score: s, Level: 1}
	}
	return recs
}

func TestStandingsInsertsLiveEntry(t *testing.T) {
	tbl := Standings(records(1200, 300, 40), Live{Playing: true, Name: "me", Score: 100, Level: 2})

	require.Len(t, tbl.Top, 4)
	assert.Equal(t, 2, tbl.Rank)
	assert.Equal(t, LiveID, tbl.Top[2].ID)
	assert.True(t, tbl.Top[2].Current)
	assert.Equal(t, "me", tbl.Player.Name)
	assert.False(t, tbl.OffBoard())
}

func TestStandingsLiveEntryConditions(t *testing.T) {
	tests := []struct {
		name string
		live Live
	}{
		{"not playing", Live{Playing: false, Score: 100}},
		{"zero score", Live{Playing: true, Score: 0}},
		{"already saved", Live{Playing: true, Score: 100, SavedID: "gone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Standings(records(50), tt.live)
			assert.Len(t, tbl.Top, 1)
			assert.Equal(t, -1, tbl.Rank)
		})
	}
}

func TestStandingsTiesRankBelowExisting(t *testing.T) {
	tbl := Standings(records(100, 100), Live{Playing: true, Score: 100})
	assert.Equal(t, 2, tbl.Rank)
}

func TestStandingsSavedRecord(t *testing.T) {
	recs := records(1200, 300, 40)
	tbl := Standings(recs, Live{SavedID: recs[1].ID})

	assert.Equal(t, 1, tbl.Rank)
	assert.True(t, tbl.Top[1].Current)
	assert.False(t, tbl.Top[0].Current)
}

func TestStandingsTopCut(t *testing.T) {
	scores := make([]int, 20)
	for i := range scores {
		scores[i] = 1000 - i*10
	}
	tbl := Standings(records(scores...), Live{Playing: true, Name: "me", Score: 5})

	assert.Len(t, tbl.Top, TopN)
	assert.Equal(t, 20, tbl.Rank)
	assert.True(t, tbl.OffBoard())
	assert.Equal(t, 5, tbl.Player.Score)
}

func TestStandingsUnsortedInput(t *testing.T) {
	tbl := Standings(records(40, 1200, 300), Live{})
	assert.Equal(t, []int{1200, 300, 40}, []int{tbl.Top[0].Score, tbl.Top[1].Score, tbl.Top[2].Score})
}

func TestRankedUp(t *testing.T) {
	assert.True(t, RankedUp(5, 3))
	assert.False(t, RankedUp(3, 3))
	assert.False(t, RankedUp(3, 5))
	assert.False(t, RankedUp(-1, 0))
	assert.False(t, RankedUp(2, -1))
}
