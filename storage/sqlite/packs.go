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
	"strings"
	"time"

	"github.com/Seednode/amongsus/games/imposter"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ListPacks returns every stored word pack ordered by name.
func (s *Store) ListPacks(ctx context.Context) ([]imposter.Pack, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, pairs, words FROM word_packs ORDER BY name_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("list word packs: %w", err)
	}
	defer rows.Close()

	var packs []imposter.Pack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list word packs: %w", err)
	}

	return packs, nil
}

// GetPack returns one word pack by id.
func (s *Store) GetPack(ctx context.Context, id string) (imposter.Pack, error) {
	if err := s.ready(ctx); err != nil {
		return imposter.Pack{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, pairs, words FROM word_packs WHERE id = ?`,
		strings.TrimSpace(id),
	)

	p, err := scanPack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return imposter.Pack{}, ErrNotFound
	}

	return p, err
}

// PutPack stores p. A pack without an id is created with a fresh one; a pack
// with an id replaces the stored pack of that id. Names are unique ignoring
// case.
func (s *Store) PutPack(ctx context.Context, p imposter.Pack) (imposter.Pack, error) {
	if err := s.ready(ctx); err != nil {
		return imposter.Pack{}, err
	}

	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return imposter.Pack{}, errors.New("pack name is required")
	}
	if len(p.Pairs) == 0 && len(p.Words) == 0 {
		return imposter.Pack{}, errors.New("pack has no words")
	}

	pairs, err := json.Marshal(nonNil(p.Pairs))
	if err != nil {
		return imposter.Pack{}, fmt.Errorf("encode pairs: %w", err)
	}
	words, err := json.Marshal(nonNil(p.Words))
	if err != nil {
		return imposter.Pack{}, fmt.Errorf("encode words: %w", err)
	}

	now := toMillis(time.Now())
	nameKey := cases.Fold().String(p.Name)

	if p.ID == "" {
		p.ID = uuid.NewString()

		_, err = s.sqlDB.ExecContext(ctx,
			`INSERT INTO word_packs (id, name, name_key, pairs, words, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, nameKey, string(pairs), string(words), now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return imposter.Pack{}, fmt.Errorf("word pack %q: %w", p.Name, ErrAlreadyExists)
			}

			return imposter.Pack{}, fmt.Errorf("create word pack: %w", err)
		}

		return p, nil
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE word_packs
		    SET name = ?, name_key = ?, pairs = ?, words = ?, updated_at = ?
		  WHERE id = ?`,
		p.Name, nameKey, string(pairs), string(words), now, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return imposter.Pack{}, fmt.Errorf("word pack %q: %w", p.Name, ErrAlreadyExists)
		}

		return imposter.Pack{}, fmt.Errorf("update word pack: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return imposter.Pack{}, ErrNotFound
	}

	return p, nil
}

// DeletePack removes the pack with id and returns it.
func (s *Store) DeletePack(ctx context.Context, id string) (imposter.Pack, error) {
	p, err := s.GetPack(ctx, id)
	if err != nil {
		return imposter.Pack{}, err
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM word_packs WHERE id = ?`, p.ID); err != nil {
		return imposter.Pack{}, fmt.Errorf("delete word pack: %w", err)
	}

	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPack(row scanner) (imposter.Pack, error) {
	var (
		p            imposter.Pack
		pairs, words string
	)

	if err := row.Scan(&p.ID, &p.Name, &pairs, &words); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return imposter.Pack{}, err
		}

		return imposter.Pack{}, fmt.Errorf("scan word pack: %w", err)
	}

	if err := json.Unmarshal([]byte(pairs), &p.Pairs); err != nil {
		return imposter.Pack{}, fmt.Errorf("decode pairs of %q: %w", p.Name, err)
	}
	if err := json.Unmarshal([]byte(words), &p.Words); err != nil {
		return imposter.Pack{}, fmt.Errorf("decode words of %q: %w", p.Name, err)
	}

	if len(p.Pairs) == 0 {
		p.Pairs = nil
	}
	if len(p.Words) == 0 {
		p.Words = nil
	}

	return p, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
