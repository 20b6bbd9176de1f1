package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/koningsdag/internal/game/state"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// PlayerStore persists per-player game state documents keyed by game
// and role id.
type PlayerStore interface {
	PutPlayer(ctx context.Context, gameID string, player state.Player) error
	GetPlayer(ctx context.Context, gameID, roleID string) (state.Player, error)
}

// SessionStore persists the game session document.
type SessionStore interface {
	PutSession(ctx context.Context, session state.Session) error
	GetSession(ctx context.Context, gameID string) (state.Session, error)
	// DeleteGame removes every document belonging to the game,
	// players and session alike.
	DeleteGame(ctx context.Context, gameID string) error
}

// Winrate is the cumulative cross-game statistics document.
type Winrate struct {
	TotalGames  int                     `json:"total_games"`
	ByPlayerSet map[string]PlayerSetRow `json:"by_player_set,omitempty"`
}

// PlayerSetRow aggregates results for one roster combination.
type PlayerSetRow struct {
	Games int            `json:"games"`
	Wins  map[string]int `json:"wins,omitempty"`
}

// GameRecord is one finished game.
type GameRecord struct {
	ID          string    `json:"id"`
	Players     []string  `json:"players"`
	Winners     []string  `json:"winners,omitempty"`
	Rounds      int       `json:"rounds"`
	EventsDrawn []string  `json:"events_drawn,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	EndedAt     time.Time `json:"ended_at"`
}

// WinrateStore persists the cumulative winrate document. There is a
// single document per store.
type WinrateStore interface {
	PutWinrate(ctx context.Context, doc Winrate) error
	GetWinrate(ctx context.Context) (Winrate, error)
}

// GameRecordStore appends and lists finished game records.
type GameRecordStore interface {
	AppendGameRecord(ctx context.Context, record GameRecord) error
	ListGameRecords(ctx context.Context, limit int) ([]GameRecord, error)
}

// GameStore is the full persistence surface the engine and its drivers
// consume.
type GameStore interface {
	PlayerStore
	SessionStore
	WinrateStore
	GameRecordStore
}
