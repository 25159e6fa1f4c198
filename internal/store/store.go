// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/AHARH1ST777/wordweave/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the key-value state and the game history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			finished_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			won INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			target_word TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_finished_at ON games(finished_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the value stored under key. A missing key reports ok=false
// and no error.
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Save upserts the value under key.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value))
	return err
}

// InsertGame stores one finished game.
func (s *Store) InsertGame(ctx context.Context, finishedAt time.Time, result model.GameResult) (int64, error) {
	won := 0
	if result.Won {
		won = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (finished_at, mode, won, attempts, duration_ms, target_word)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		finishedAt.Format(time.RFC3339Nano),
		string(result.Mode),
		won,
		result.Attempts,
		result.Elapsed.Milliseconds(),
		result.TargetWord,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListGames returns finished games ordered oldest first, limited to the most
// recent n when n > 0.
func (s *Store) ListGames(ctx context.Context, n int) ([]model.GameRecord, error) {
	query := `SELECT id, finished_at, mode, won, attempts, duration_ms, target_word
		FROM games ORDER BY finished_at ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var games []model.GameRecord
	for rows.Next() {
		var rec model.GameRecord
		var finishedAt, mode string
		var won int
		if err := rows.Scan(&rec.ID, &finishedAt, &mode, &won, &rec.Attempts, &rec.DurationMs, &rec.TargetWord); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, finishedAt)
		if err != nil {
			return nil, err
		}
		rec.FinishedAt = parsed
		rec.Mode = model.Mode(mode)
		rec.Won = won != 0
		games = append(games, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if n > 0 && len(games) > n {
		games = games[len(games)-n:]
	}
	return games, nil
}
