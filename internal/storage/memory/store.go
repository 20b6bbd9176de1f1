// Package memory provides an in-memory game storage implementation for
// tests and the autoplay simulator.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/koningsdag/internal/game/state"
	"github.com/louisbranch/koningsdag/internal/storage"
)

// Store keeps game documents in process memory. Values are copied on
// the way in and out, so callers can keep mutating their own structs.
type Store struct {
	mu       sync.RWMutex
	players  map[string]map[string]state.Player
	sessions map[string]state.Session
	winrate  *storage.Winrate
	records  []storage.GameRecord
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		players:  make(map[string]map[string]state.Player),
		sessions: make(map[string]state.Session),
	}
}

func copyPlayer(p state.Player) state.Player {
	out := p
	out.Status = make(map[string]int, len(p.Status))
	for k, v := range p.Status {
		out.Status[k] = v
	}
	out.Counters = copyCounters(p.Counters)
	if p.TradeState != nil {
		ts := *p.TradeState
		ts.PriceOverride = copyIntMap(p.TradeState.PriceOverride)
		out.TradeState = &ts
	}
	if p.ProgressDetail != nil {
		pd := *p.ProgressDetail
		out.ProgressDetail = &pd
	}
	return out
}

func copyCounters(c state.Counters) state.Counters {
	out := c
	out.PhotoTargets = copyStrings(c.PhotoTargets)
	out.TradePartners = copyStrings(c.TradePartners)
	out.PerformWatchers = copyStrings(c.PerformWatchers)
	out.FeedEaters = copyStrings(c.FeedEaters)
	out.HelpTypes = copyStrings(c.HelpTypes)
	return out
}

func copySession(s state.Session) state.Session {
	out := s
	out.Players = copyStrings(s.Players)
	out.EventsDrawn = copyStrings(s.EventsDrawn)
	if s.LastEventContext != nil {
		ec := *s.LastEventContext
		ec.Watchers = copyStrings(s.LastEventContext.Watchers)
		out.LastEventContext = &ec
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyIntMap(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// PutPlayer stores one player document.
func (s *Store) PutPlayer(ctx context.Context, gameID string, player state.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(player.RoleID) == "" {
		return fmt.Errorf("role id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.players[gameID]
	if !ok {
		game = make(map[string]state.Player)
		s.players[gameID] = game
	}
	game[player.RoleID] = copyPlayer(player)
	return nil
}

// GetPlayer loads one player document.
func (s *Store) GetPlayer(ctx context.Context, gameID, roleID string) (state.Player, error) {
	if err := ctx.Err(); err != nil {
		return state.Player{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[gameID][roleID]
	if !ok {
		return state.Player{}, storage.ErrNotFound
	}
	return copyPlayer(player), nil
}

// PutSession stores the session document.
func (s *Store) PutSession(ctx context.Context, session state.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

// GetSession loads the session document for a game.
func (s *Store) GetSession(ctx context.Context, gameID string) (state.Session, error) {
	if err := ctx.Err(); err != nil {
		return state.Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[gameID]
	if !ok {
		return state.Session{}, storage.ErrNotFound
	}
	return copySession(session), nil
}

// DeleteGame removes every document belonging to the game.
func (s *Store) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, gameID)
	delete(s.sessions, gameID)
	return nil
}

// PutWinrate stores the cumulative winrate document.
func (s *Store) PutWinrate(ctx context.Context, doc storage.Winrate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := doc
	stored.ByPlayerSet = make(map[string]storage.PlayerSetRow, len(doc.ByPlayerSet))
	for key, row := range doc.ByPlayerSet {
		row.Wins = copyIntMap(row.Wins)
		stored.ByPlayerSet[key] = row
	}
	s.winrate = &stored
	return nil
}

// GetWinrate loads the cumulative winrate document.
func (s *Store) GetWinrate(ctx context.Context) (storage.Winrate, error) {
	if err := ctx.Err(); err != nil {
		return storage.Winrate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.winrate == nil {
		return storage.Winrate{}, storage.ErrNotFound
	}
	doc := *s.winrate
	doc.ByPlayerSet = make(map[string]storage.PlayerSetRow, len(s.winrate.ByPlayerSet))
	for key, row := range s.winrate.ByPlayerSet {
		row.Wins = copyIntMap(row.Wins)
		doc.ByPlayerSet[key] = row
	}
	return doc, nil
}

// AppendGameRecord inserts one finished game record.
func (s *Store) AppendGameRecord(ctx context.Context, record storage.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if record.EndedAt.IsZero() {
		record.EndedAt = time.Now().UTC()
	}
	record.Players = copyStrings(record.Players)
	record.Winners = copyStrings(record.Winners)
	record.EventsDrawn = copyStrings(record.EventsDrawn)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// ListGameRecords returns the most recent finished games, newest first.
func (s *Store) ListGameRecords(ctx context.Context, limit int) ([]storage.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.GameRecord, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndedAt.After(out[j].EndedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
