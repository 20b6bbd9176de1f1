// Package sqlite provides a SQLite-backed game storage implementation.
//
// Game state is stored as JSON documents keyed by (game_id, doc_key),
// matching the engine's document-oriented persistence model. Malformed
// stored JSON degrades to a zero-value document rather than failing the
// load.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/koningsdag/internal/game/state"
	"github.com/louisbranch/koningsdag/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/koningsdag/internal/storage"
	"github.com/louisbranch/koningsdag/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Document keys inside one game.
const (
	sessionDocKey = "current_game"

	winrateGameID = "global"
	winrateDocKey = "winrate"
)

func playerDocKey(roleID string) string {
	return roleID + "_gamestate"
}

// Store persists game state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite game store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) putDocument(ctx context.Context, gameID, docKey string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", gameID, docKey, err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO documents (game_id, doc_key, doc, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (game_id, doc_key)
		 DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		gameID,
		docKey,
		string(data),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put document %s/%s: %w", gameID, docKey, err)
	}
	return nil
}

func (s *Store) getDocument(ctx context.Context, gameID, docKey string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT doc FROM documents WHERE game_id = ? AND doc_key = ?`,
		gameID,
		docKey,
	)
	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get document %s/%s: %w", gameID, docKey, err)
	}
	return []byte(doc), nil
}

// PutPlayer stores one player document.
func (s *Store) PutPlayer(ctx context.Context, gameID string, player state.Player) error {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(player.RoleID) == "" {
		return fmt.Errorf("role id is required")
	}
	return s.putDocument(ctx, gameID, playerDocKey(player.RoleID), player)
}

// GetPlayer loads one player document. A stored document that no
// longer parses comes back as a zero-value player for the role.
func (s *Store) GetPlayer(ctx context.Context, gameID, roleID string) (state.Player, error) {
	gameID = strings.TrimSpace(gameID)
	roleID = strings.TrimSpace(roleID)
	if gameID == "" || roleID == "" {
		return state.Player{}, fmt.Errorf("game id and role id are required")
	}
	data, err := s.getDocument(ctx, gameID, playerDocKey(roleID))
	if err != nil {
		return state.Player{}, err
	}
	var player state.Player
	if json.Unmarshal(data, &player) != nil || player.RoleID == "" {
		player = *state.NewPlayer(roleID)
	}
	return player, nil
}

// PutSession stores the session document.
func (s *Store) PutSession(ctx context.Context, session state.Session) error {
	gameID := strings.TrimSpace(session.ID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	return s.putDocument(ctx, gameID, sessionDocKey, session)
}

// GetSession loads the session document for a game.
func (s *Store) GetSession(ctx context.Context, gameID string) (state.Session, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return state.Session{}, fmt.Errorf("game id is required")
	}
	data, err := s.getDocument(ctx, gameID, sessionDocKey)
	if err != nil {
		return state.Session{}, err
	}
	var session state.Session
	if json.Unmarshal(data, &session) != nil || session.ID == "" {
		session = state.Session{ID: gameID}
	}
	return session, nil
}

// DeleteGame removes every document belonging to the game.
func (s *Store) DeleteGame(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE game_id = ?`, gameID)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", gameID, err)
	}
	return nil
}

// PutWinrate stores the cumulative winrate document.
func (s *Store) PutWinrate(ctx context.Context, doc storage.Winrate) error {
	return s.putDocument(ctx, winrateGameID, winrateDocKey, doc)
}

// GetWinrate loads the cumulative winrate document.
func (s *Store) GetWinrate(ctx context.Context) (storage.Winrate, error) {
	data, err := s.getDocument(ctx, winrateGameID, winrateDocKey)
	if err != nil {
		return storage.Winrate{}, err
	}
	var doc storage.Winrate
	if json.Unmarshal(data, &doc) != nil {
		doc = storage.Winrate{}
	}
	return doc, nil
}

// AppendGameRecord inserts one finished game record.
func (s *Store) AppendGameRecord(ctx context.Context, record storage.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("record id is required")
	}
	endedAt := record.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	record.EndedAt = endedAt.UTC()
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode game record %s: %w", id, err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO game_records (id, doc, ended_at) VALUES (?, ?, ?)`,
		id,
		string(data),
		toMillis(record.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("append game record %s: %w", id, err)
	}
	return nil
}

// ListGameRecords returns the most recent finished games, newest first.
func (s *Store) ListGameRecords(ctx context.Context, limit int) ([]storage.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, doc, ended_at FROM game_records ORDER BY ended_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list game records: %w", err)
	}
	defer rows.Close()

	var records []storage.GameRecord
	for rows.Next() {
		var id string
		var doc string
		var endedAt int64
		if err := rows.Scan(&id, &doc, &endedAt); err != nil {
			return nil, fmt.Errorf("scan game record: %w", err)
		}
		var record storage.GameRecord
		if json.Unmarshal([]byte(doc), &record) != nil || record.ID == "" {
			record = storage.GameRecord{ID: id, EndedAt: fromMillis(endedAt)}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list game records: %w", err)
	}
	return records, nil
}
