package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/language"

	"github.com/louisbranch/koningsdag/internal/catalog"
	"github.com/louisbranch/koningsdag/internal/game"
	"github.com/louisbranch/koningsdag/internal/game/state"
	"github.com/louisbranch/koningsdag/internal/platform/i18n"
	"github.com/louisbranch/koningsdag/internal/platform/id"
	"github.com/louisbranch/koningsdag/internal/random"
	"github.com/louisbranch/koningsdag/internal/storage"
)

// maxLogLines caps one game_logs drain so a chatty game cannot blow up
// a tool response.
const maxLogLines = 500

// service is the engine facade behind the tools. One game session runs
// at a time; the mutex is the lock boundary around the single flow.
type service struct {
	mu    sync.Mutex
	cat   *catalog.Catalog
	store storage.GameStore

	flow *game.Flow
	logs []string
}

func newService(cat *catalog.Catalog, store storage.GameStore) *service {
	return &service{cat: cat, store: store}
}

// PlayerState is one seated player's public state.
type PlayerState struct {
	RoleID   string         `json:"role_id" jsonschema:"role identifier"`
	Name     string         `json:"name" jsonschema:"role display name"`
	Status   map[string]int `json:"status" jsonschema:"resource name to value"`
	Counters state.Counters `json:"counters" jsonschema:"accumulated protocol counters"`
	WinGame  bool           `json:"win_game" jsonschema:"whether the player's victory fired"`
}

// TableState is the full game state document returned by game tools.
type TableState struct {
	GameStarted     bool            `json:"game_started" jsonschema:"whether a game is running"`
	GameOver        bool            `json:"game_over" jsonschema:"whether the game has ended"`
	GameOverReason  string          `json:"game_over_reason,omitempty" jsonschema:"why the game ended"`
	Winners         []string        `json:"winners,omitempty" jsonschema:"winning role ids"`
	RoundsCompleted int             `json:"rounds_completed" jsonschema:"full table rounds played"`
	EventsDrawn     int             `json:"events_drawn" jsonschema:"event cards drawn so far"`
	UI              *game.Info      `json:"ui,omitempty" jsonschema:"the prompt the engine is waiting on"`
	EventInfo       *game.EventInfo `json:"event_info,omitempty" jsonschema:"the card drawn this turn"`
	Players         []PlayerState   `json:"players" jsonschema:"seated players in turn order"`
}

// Start seats a fresh table and begins the first turn. A running game
// is replaced; its unsaved state is discarded.
func (s *service) Start(ctx context.Context, roles []string, tag language.Tag) (TableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gameID, err := id.NewID()
	if err != nil {
		return TableState{}, fmt.Errorf("generate game id: %w", err)
	}
	g, err := game.NewGame(s.cat, gameID, roles)
	if err != nil {
		return TableState{}, err
	}
	rng, err := random.NewRand()
	if err != nil {
		return TableState{}, fmt.Errorf("seed rng: %w", err)
	}

	s.logs = nil
	s.flow = game.NewFlow(s.cat, g, s.store, rng)
	if _, err := s.flow.StartGame(ctx); err != nil {
		return TableState{}, err
	}
	s.drainLocked()
	return s.stateLocked(tag), nil
}

// Act dispatches one named action against the running game.
func (s *service) Act(ctx context.Context, action string, params game.ActionParams, tag language.Tag) (TableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow == nil {
		return TableState{}, fmt.Errorf("game not started")
	}
	if _, err := s.flow.Dispatch(ctx, action, params); err != nil {
		return TableState{}, err
	}
	s.drainLocked()
	return s.stateLocked(tag), nil
}

// State returns the current table document without advancing anything.
func (s *service) State(tag language.Tag) TableState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(tag)
}

// Logs drains the accumulated transcript.
func (s *service) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainLocked()
	out := s.logs
	if len(out) > maxLogLines {
		out = out[len(out)-maxLogLines:]
	}
	s.logs = nil
	return out
}

// Reset discards the running game and its persisted documents.
func (s *service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow != nil {
		if err := s.flow.Reset(ctx); err != nil {
			return fmt.Errorf("reset game: %w", err)
		}
		s.flow = nil
	}
	s.logs = nil
	return nil
}

// Winrate loads the cumulative winrate document.
func (s *service) Winrate(ctx context.Context) (storage.Winrate, error) {
	if s.store == nil {
		return storage.Winrate{}, nil
	}
	doc, err := s.store.GetWinrate(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Winrate{}, nil
	}
	if err != nil {
		return storage.Winrate{}, fmt.Errorf("load winrate: %w", err)
	}
	return doc, nil
}

// Records lists the most recent finished games.
func (s *service) Records(ctx context.Context, limit int) ([]storage.GameRecord, error) {
	if s.store == nil {
		return nil, nil
	}
	records, err := s.store.ListGameRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list game records: %w", err)
	}
	return records, nil
}

func (s *service) drainLocked() {
	if s.flow == nil {
		return
	}
	s.logs = append(s.logs, s.flow.ConsumeLogs()...)
}

func (s *service) stateLocked(tag language.Tag) TableState {
	doc := TableState{Players: []PlayerState{}}
	if s.flow == nil {
		return doc
	}

	g := s.flow.Game()
	sess := g.Session
	doc.GameStarted = true
	doc.GameOver = sess.GameOver
	doc.GameOverReason = sess.GameOverReason
	doc.RoundsCompleted = sess.RoundsCompleted
	doc.EventsDrawn = len(sess.EventsDrawn)

	ui := s.flow.UI()
	doc.UI = &ui
	doc.Winners = ui.Winners
	if ev := s.flow.CurrentEvent(); ev != nil {
		localized := *ev
		localized.Name = i18n.EventName(tag, ev.ID, ev.Name)
		doc.EventInfo = &localized
	}

	for _, roleID := range sess.Players {
		p := g.Player(roleID)
		if p == nil {
			continue
		}
		doc.Players = append(doc.Players, PlayerState{
			RoleID:   roleID,
			Name:     i18n.RoleName(tag, roleID, s.cat.RoleName(roleID)),
			Status:   copyStatus(p.Status),
			Counters: p.Counters,
			WinGame:  p.WinGame,
		})
	}
	return doc
}

func copyStatus(status map[string]int) map[string]int {
	out := make(map[string]int, len(status))
	for key, value := range status {
		out[key] = value
	}
	return out
}
