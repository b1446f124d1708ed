package scores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hersh/blitztris/internal/protocol"
)

func TestMemoryStoreInsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.Insert(ctx, protocol.ScoreRecord{Name: "a", Score: 10, Level: 1})
	require.NoError(t, err)
	b, err := s.Insert(ctx, protocol.ScoreRecord{Name: "b", Score: 20, Level: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, rec := range []protocol.ScoreRecord{
		{Name: "low", Score: 40},
		{Name: "high", Score: 1200},
		{Name: "tie-late", Score: 300},
		{Name: "tie-early", Score: 300},
	} {
		rec.Date = base.Add(time.Duration(i) * time.Minute)
		if rec.Name == "tie-early" {
			rec.Date = base.Add(-time.Minute)
		}
		_, err := s.Insert(ctx, rec)
		require.NoError(t, err)
	}

	recs, err := s.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, r := range recs {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"high", "tie-early", "tie-late", "low"}, names)
}

func TestMemoryStoreRename(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec, err := s.Insert(ctx, protocol.ScoreRecord{Name: "Sir Drops-a-Lot", Score: 100, Level: 1})
	require.NoError(t, err)

	require.NoError(t, s.Rename(ctx, rec.ID, "alice"))
	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "alice", recs[0].Name)
	assert.Equal(t, 100, recs[0].Score)

	assert.ErrorIs(t, s.Rename(ctx, "missing", "bob"), ErrNotFound)
}
