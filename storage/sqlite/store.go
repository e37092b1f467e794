/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

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

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/Seednode/amongsus/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Store persists game state and word packs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// One writer keeps concurrent hubs from tripping over SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
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

// Game returns the state store for one game.
func (s *Store) Game(key string) *GameStore {
	return &GameStore{store: s, key: key}
}

// LoadState returns the saved state for key, or nil if there is none.
func (s *Store) LoadState(ctx context.Context, key string) (*imposter.PersistedState, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var raw string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT state FROM game_states WHERE game_key = ?`,
		key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("load game state %q: %w", key, err)
	}

	var ps imposter.PersistedState
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		return nil, fmt.Errorf("decode game state %q: %w", key, err)
	}

	return &ps, nil
}

// SaveState replaces the saved state for key.
func (s *Store) SaveState(ctx context.Context, key string, state imposter.PersistedState) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode game state %q: %w", key, err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO game_states (game_key, state, round_number, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(game_key) DO UPDATE SET
		   state = excluded.state,
		   round_number = excluded.round_number,
		   updated_at = excluded.updated_at`,
		key,
		string(raw),
		state.RoundNumber,
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save game state %q: %w", key, err)
	}

	return nil
}

// ClearState forgets the saved state for key.
func (s *Store) ClearState(ctx context.Context, key string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM game_states WHERE game_key = ?`, key); err != nil {
		return fmt.Errorf("clear game state %q: %w", key, err)
	}

	return nil
}

// PruneStates deletes game states not written since before, except those
// of the games named in keep. It returns the number of rows removed.
func (s *Store) PruneStates(ctx context.Context, before time.Time, keep ...string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	query := `DELETE FROM game_states WHERE updated_at < ?`
	args := []any{toMillis(before)}

	if len(keep) > 0 {
		query += ` AND game_key NOT IN (?` + strings.Repeat(`, ?`, len(keep)-1) + `)`
		for _, key := range keep {
			args = append(args, key)
		}
	}

	res, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune game states: %w", err)
	}

	return res.RowsAffected()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errors.New("storage is not configured")
	}

	return nil
}

// GameStore is a Store bound to a single game key.
type GameStore struct {
	store *Store
	key   string
}

var _ imposter.GameStateStore = (*GameStore)(nil)

func (g *GameStore) Load(ctx context.Context) (*imposter.PersistedState, error) {
	return g.store.LoadState(ctx, g.key)
}

func (g *GameStore) Save(ctx context.Context, state imposter.PersistedState) error {
	return g.store.SaveState(ctx, g.key, state)
}

func (g *GameStore) Clear(ctx context.Context) error {
	return g.store.ClearState(ctx, g.key)
}
