package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/liftfield/internal/dbx"
)

// KV is the key-value surface over the kv table. It works through a DBTX so
// multi-key writes can run inside one transaction via WithTx.
type KV struct {
	db *sql.DB
}

// NewKV returns a KV bound to the given database handle.
func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get returns the value for key. The second result is false when the key is
// absent.
func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return get(ctx, s.db, key)
}

// Set overwrites the value for key.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, s.db, key, value)
}

// Delete removes the entry for key. Deleting an absent key is not an error.
func (s *KV) Delete(ctx context.Context, key string) error {
	return del(ctx, s.db, key)
}

// Clear removes every entry. Used by the debug "clear all app data"
// operation.
func (s *KV) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv`)
	if err != nil {
		return fmt.Errorf("failed to clear kv: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction; fn receives transactional variants of
// the KV operations.
func (s *KV) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, t dbx.DBTX) error {
		return fn(ctx, Tx{db: t})
	})
}

// Tx exposes KV operations bound to an open transaction.
type Tx struct {
	db dbx.DBTX
}

func (t Tx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return get(ctx, t.db, key)
}

func (t Tx) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, t.db, key, value)
}

func (t Tx) Delete(ctx context.Context, key string) error {
	return del(ctx, t.db, key)
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, bool, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func del(ctx context.Context, db dbx.DBTX, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}
