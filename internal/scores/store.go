package scores

import (
	"context"
	"errors"
	"sort"

	"github.com/hersh/blitztris/internal/protocol"
)

var (
	ErrNotFound = errors.New("score not found")
	ErrInvalid  = errors.New("invalid score")
)

// Store persists finished games.
type Store interface {
	// Insert stores rec, assigns its ID and returns the stored record.
	Insert(ctx context.Context, rec protocol.ScoreRecord) (protocol.ScoreRecord, error)
	// List returns every record, highest score first.
	List(ctx context.Context) ([]protocol.ScoreRecord, error)
	// Rename changes the name on one record. Unknown IDs yield ErrNotFound.
	Rename(ctx context.Context, id, name string) error
	Close(ctx context.Context) error
}

// sortRecords orders by score descending; ties go to the earlier game.
func sortRecords(recs []protocol.ScoreRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Date.Before(recs[j].Date)
	})
}
