package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/edgeplay/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLite stores blobs and session history in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLite{db: db}
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
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			level INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			lives_left INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_game ON sessions(game);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the blob stored under key.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Set stores blob under key, replacing any previous value.
func (s *SQLite) Set(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, blob, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Remove deletes key. Missing keys are not an error.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// AppendSession stores a finished session.
func (s *SQLite) AppendSession(ctx context.Context, rec model.SessionRecord) error {
	completed := 0
	if rec.Completed {
		completed = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, game, level, difficulty, score, completed, lives_left, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.GameType.String(),
		rec.Level,
		rec.Difficulty.String(),
		rec.Score,
		completed,
		rec.LivesLeft,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// ListSessions returns sessions matching filter ordered by end time.
func (s *SQLite) ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.GameType != nil {
		clauses = append(clauses, "game = ?")
		args = append(args, filter.GameType.String())
	}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, game, level, difficulty, score, completed, lives_left, started_at, ended_at
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var (
			rec                model.SessionRecord
			game, difficulty   string
			completed          int
			startedAt, endedAt string
		)
		if err := rows.Scan(&rec.ID, &game, &rec.Level, &difficulty, &rec.Score, &completed, &rec.LivesLeft, &startedAt, &endedAt); err != nil {
			return nil, err
		}
		if rec.GameType, err = model.ParseGameType(game); err != nil {
			return nil, err
		}
		if rec.Difficulty, err = model.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
		rec.Completed = completed != 0
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return filterSessions(records, model.HistoryFilter{Last: filter.Last}), nil
}

// ClearSessions deletes the whole session history.
func (s *SQLite) ClearSessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions`)
	return err
}
