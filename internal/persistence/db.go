// Package persistence provides SQLite-based game storage: full session
// snapshots keyed by session ID plus an append-only round-result history.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kestrelworks/venturesim/internal/engine"
)

// ErrNotFound is returned when no saved game matches the requested ID.
var ErrNotFound = errors.New("game not found")

// DB wraps a SQLite connection for game persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		round INTEGER NOT NULL,
		phase TEXT NOT NULL,
		snapshot_json TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS round_results (
		game_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		PRIMARY KEY (game_id, round)
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_games_saved_at ON games(saved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

const (
	upsertGame = `INSERT OR REPLACE INTO games
		(id, seed, round, phase, snapshot_json, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	upsertResult = `INSERT OR REPLACE INTO round_results
		(game_id, round, result_json)
		VALUES (?, ?, ?)`
)

// SaveSnapshot upserts a full game snapshot keyed by session ID.
func (db *DB) SaveSnapshot(snap engine.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = db.conn.Exec(upsertGame,
		snap.SessionID, snap.Seed, snap.Round, snap.Phase.String(),
		string(raw), time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadSnapshot reads a saved game snapshot by session ID.
func (db *DB) LoadSnapshot(sessionID string) (engine.Snapshot, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT snapshot_json FROM games WHERE id = ?", sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return engine.Snapshot{}, err
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", sessionID, err)
	}
	return snap, nil
}

// AppendResult records one round result. Re-saving a round replaces the
// earlier row, so a restored game does not duplicate history.
func (db *DB) AppendResult(sessionID string, result engine.RoundResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = db.conn.Exec(upsertResult, sessionID, result.Round, string(raw))
	return err
}

// Results returns a game's recorded rounds in round order.
func (db *DB) Results(sessionID string) ([]engine.RoundResult, error) {
	var rows []string
	err := db.conn.Select(&rows,
		"SELECT result_json FROM round_results WHERE game_id = ? ORDER BY round", sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]engine.RoundResult, 0, len(rows))
	for _, raw := range rows {
		var r engine.RoundResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode round result: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// GameRow is one saved-game summary.
type GameRow struct {
	ID      string `db:"id"`
	Seed    int64  `db:"seed"`
	Round   int    `db:"round"`
	Phase   string `db:"phase"`
	SavedAt string `db:"saved_at"`
}

// Games lists saved games, most recently saved first.
func (db *DB) Games() ([]GameRow, error) {
	var rows []GameRow
	err := db.conn.Select(&rows,
		"SELECT id, seed, round, phase, saved_at FROM games ORDER BY saved_at DESC, id")
	return rows, err
}

// SaveMeta stores a key-value pair in game metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	return value, err
}

// SaveGame writes the session snapshot and its latest round result in one
// transaction.
func (db *DB) SaveGame(s *engine.Session) error {
	snap, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(upsertGame,
		snap.SessionID, snap.Seed, snap.Round, snap.Phase.String(),
		string(snapJSON), now); err != nil {
		return fmt.Errorf("save game %s: %w", snap.SessionID, err)
	}

	if latest, ok := s.Latest(); ok {
		resJSON, err := json.Marshal(latest)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if _, err := tx.Exec(upsertResult, snap.SessionID, latest.Round, string(resJSON)); err != nil {
			return fmt.Errorf("save result round %d: %w", latest.Round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("game saved", "session", snap.SessionID, "round", snap.Round, "phase", snap.Phase)
	return nil
}
