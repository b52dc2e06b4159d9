// Package session persists the single session token of the client.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/syllabify/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/syllabify/internal/dbx"
)

const (
	TokenKey   = "syllabify_token"
	SavedAtKey = "syllabify_token_saved_at"
)

var ErrEmptyToken = errors.New("empty session token")

// Store keeps the last written token under TokenKey. It knows nothing about
// expiry or validity.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Get returns the persisted token, or "" when none is stored.
func (s *Store) Get(ctx context.Context) (string, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return string(v), nil
}

func (s *Store) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	savedAt := s.now().UTC().Format(time.RFC3339)

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, TokenKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, SavedAtKey, []byte(savedAt))
	})
	if err != nil {
		return fmt.Errorf("write session token: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := metadata.NewSQLiteRepository(s.db).Delete(ctx, TokenKey, SavedAtKey); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

// SavedAt reports when the current token was written. ok is false when no
// timestamp is stored.
func (s *Store) SavedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, SavedAtKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read token timestamp: %w", err)
	}
	if v == nil {
		return time.Time{}, false, nil
	}

	t, err = time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse token timestamp: %w", err)
	}
	return t, true, nil
}
