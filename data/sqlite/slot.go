// Package sqlite stores the local key-value slot in an SQLite file using
// the pure Go modernc.org/sqlite driver. It registers itself when imported:
//
//	import _ "github.com/ncobase/feedsync/data/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	_ "modernc.org/sqlite"
)

func init() {
	data.RegisterSlotDriver(&driver{})
}

type driver struct{}

func (d *driver) Name() string {
	return "sqlite"
}

func (d *driver) OpenSlot(ctx context.Context, cfg *config.Data) (data.Slot, error) {
	if cfg == nil || cfg.Local == nil || cfg.Local.Path == "" {
		return nil, errors.New("sqlite: data.local.path is empty")
	}
	return Open(ctx, cfg.Local.Path)
}

// Slot is a data.Slot backed by a single table.
type Slot struct {
	conn *sql.DB
}

// Open opens or creates the database at path. Environment variables in
// path are expanded and missing parent directories are created.
func Open(ctx context.Context, path string) (*Slot, error) {
	path = os.ExpandEnv(path)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	// One writer at a time.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: set wal mode: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &Slot{conn: conn}, nil
}

func (s *Slot) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.conn.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Slot) Set(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Remove(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("sqlite: remove %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Close() error {
	return s.conn.Close()
}
