// Package stats folds finished games into cumulative winrate
// statistics and records per-game results.
package stats

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/koningsdag/internal/storage"
)

// PlayerSetKey builds the canonical roster key: role ids sorted and
// joined with "|". The same roster always maps to the same key
// regardless of seating order.
func PlayerSetKey(players []string) string {
	sorted := make([]string, len(players))
	copy(sorted, players)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// Apply folds one finished game into the winrate document and returns
// the updated copy.
func Apply(doc storage.Winrate, players, winners []string) storage.Winrate {
	key := PlayerSetKey(players)

	doc.TotalGames++
	if doc.ByPlayerSet == nil {
		doc.ByPlayerSet = make(map[string]storage.PlayerSetRow)
	}
	row := doc.ByPlayerSet[key]
	row.Games++
	if row.Wins == nil {
		row.Wins = make(map[string]int)
	}
	for _, winner := range winners {
		row.Wins[winner]++
	}
	doc.ByPlayerSet[key] = row
	return doc
}

// UpdateWinrate loads the cumulative document, folds in one finished
// game, and stores the result. A missing document starts from zero.
func UpdateWinrate(ctx context.Context, store storage.WinrateStore, players, winners []string) error {
	if store == nil {
		return nil
	}
	doc, err := store.GetWinrate(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return store.PutWinrate(ctx, Apply(doc, players, winners))
}

// Recorder appends finished-game records.
type Recorder struct {
	store storage.GameRecordStore
	clock func() time.Time
}

// NewRecorder creates a game record recorder.
func NewRecorder(store storage.GameRecordStore) *Recorder {
	return &Recorder{store: store, clock: time.Now}
}

// Record appends one finished game. It is a no-op when the store is nil.
func (r *Recorder) Record(ctx context.Context, record storage.GameRecord) error {
	if r == nil || r.store == nil {
		return nil
	}
	if record.EndedAt.IsZero() {
		if r.clock == nil {
			record.EndedAt = time.Now().UTC()
		} else {
			record.EndedAt = r.clock().UTC()
		}
	}
	return r.store.AppendGameRecord(ctx, record)
}
