package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"woodland/internal/game"
)

var (
	// ErrNotFound is returned when no state is stored for a game id.
	ErrNotFound = errors.New("game not found")
	// ErrStaleVersion is returned when saving a version older than the stored one.
	ErrStaleVersion = errors.New("stale game version")
)

// Game status values kept alongside the state for listing and reaping.
const (
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// GameRow summarizes a stored game.
type GameRow struct {
	ID        string
	Status    string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store handles SQLite persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection: writes are serialized and :memory: stays a single database
	db.SetMaxOpenConns(1)
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL DEFAULT 'playing',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS game_state (
			game_id    TEXT PRIMARY KEY REFERENCES games(id),
			version    INTEGER NOT NULL,
			state_json TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS games_updated_at ON games(updated_at);
	`)
	return err
}

// Save upserts the state if its version is newer than the stored one.
// Saving the stored version again succeeds without writing.
func (s *Store) Save(ctx context.Context, st *game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	status := StatusPlaying
	if st.Terminal() {
		status = StatusFinished
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stored int64
	err = tx.QueryRowContext(ctx, "SELECT version FROM game_state WHERE game_id = ?", st.ID).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	case stored == st.Version:
		return nil
	case stored > st.Version:
		return fmt.Errorf("game %s: have version %d, got %d: %w", st.ID, stored, st.Version, ErrStaleVersion)
	}

	now := s.now().Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO games (id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, st.ID, status, st.CreatedAt.Unix(), now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO game_state (game_id, version, state_json)
		VALUES (?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET version = excluded.version, state_json = excluded.state_json
		WHERE excluded.version > game_state.version
	`, st.ID, st.Version, string(data)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load retrieves the state of a game.
func (s *Store) Load(ctx context.Context, gameID string) (*game.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT state_json FROM game_state WHERE game_id = ?", gameID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st game.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &st, nil
}

// GetGame retrieves the summary row of a game.
func (s *Store) GetGame(ctx context.Context, gameID string) (*GameRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT g.id, g.status, gs.version, g.created_at, g.updated_at
		FROM games g JOIN game_state gs ON gs.game_id = g.id
		WHERE g.id = ?`, gameID)
	r, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// ListGames returns all games with the given status (or all if status is empty).
func (s *Store) ListGames(ctx context.Context, status string) ([]GameRow, error) {
	const query = `
		SELECT g.id, g.status, gs.version, g.created_at, g.updated_at
		FROM games g JOIN game_state gs ON gs.game_id = g.id`
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.QueryContext(ctx, query+" ORDER BY g.updated_at DESC")
	} else {
		rows, err = s.db.QueryContext(ctx, query+" WHERE g.status = ? ORDER BY g.updated_at DESC", status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []GameRow
	for rows.Next() {
		r, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*GameRow, error) {
	var r GameRow
	var created, updated int64
	if err := row.Scan(&r.ID, &r.Status, &r.Version, &created, &updated); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(created, 0).UTC()
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	return &r, nil
}

// Delete removes a game and its state.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM game_state WHERE game_id = ?", gameID)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", gameID)
	return err
}

// Reap deletes every game not updated within maxAge and returns their ids.
func (s *Store) Reap(ctx context.Context, maxAge time.Duration) ([]string, error) {
	cutoff := s.now().Add(-maxAge).Unix()
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM games WHERE updated_at < ?", cutoff)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("delete game %s: %w", id, err)
		}
	}
	return ids, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
