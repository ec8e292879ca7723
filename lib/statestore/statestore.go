// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package statestore persists the last-applied proxy environment in a
// SQLite database so that status reporting and cleanup do not depend
// on the variables still being present in the calling shell.
package statestore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/adrianmross/proxyctl/lib/sqlitepool"
)

// State is the last-applied value per proxy variable. An empty string
// means the variable was not set.
type State struct {
	HTTPProxy  string
	HTTPSProxy string
	FTPProxy   string
	AllProxy   string
	RsyncProxy string
	NoProxy    string
}

// IsZero reports whether no variable has a value.
func (s State) IsZero() bool {
	return s == State{}
}

// rows maps the state to its table rows, in storage order. Only fields
// with values are persisted.
func (s State) rows() [][2]string {
	all := [][2]string{
		{"http_proxy", s.HTTPProxy},
		{"https_proxy", s.HTTPSProxy},
		{"ftp_proxy", s.FTPProxy},
		{"all_proxy", s.AllProxy},
		{"proxy_rsync", s.RsyncProxy},
		{"no_proxy", s.NoProxy},
	}
	var kept [][2]string
	for _, row := range all {
		if row[1] != "" {
			kept = append(kept, row)
		}
	}
	return kept
}

func (s *State) set(key, value string) {
	switch key {
	case "http_proxy":
		s.HTTPProxy = value
	case "https_proxy":
		s.HTTPSProxy = value
	case "ftp_proxy":
		s.FTPProxy = value
	case "all_proxy":
		s.AllProxy = value
	case "proxy_rsync":
		s.RsyncProxy = value
	case "no_proxy":
		s.NoProxy = value
	}
	// Unknown keys (from a newer version of the tool) are ignored.
}

// Value returns the stored value for a lower-case variable name.
func (s State) Value(key string) string {
	switch key {
	case "http_proxy":
		return s.HTTPProxy
	case "https_proxy":
		return s.HTTPSProxy
	case "ftp_proxy":
		return s.FTPProxy
	case "all_proxy":
		return s.AllProxy
	case "proxy_rsync":
		return s.RsyncProxy
	case "no_proxy":
		return s.NoProxy
	}
	return ""
}

// Map returns the stored values keyed by lower-case variable name,
// omitting empty fields.
func (s State) Map() map[string]string {
	m := make(map[string]string)
	for _, row := range s.rows() {
		m[row[0]] = row[1]
	}
	return m
}

const schema = `
CREATE TABLE IF NOT EXISTS env_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is the SQLite-backed state database. It is safe for
// concurrent use.
type Store struct {
	pool *sqlitepool.Pool
}

// Open opens (creating if needed) the state database at path. The
// parent directory must exist. A nil logger discards pool messages.
func Open(path string, logger *slog.Logger) (*Store, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		PoolSize: 1,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Save replaces the stored state: all existing rows are deleted and
// one row is written per set variable, in a single transaction.
func (s *Store) Save(ctx context.Context, state State) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("state store: beginning transaction: %w", err)
	}
	defer endTransaction(&err)

	if err := sqlitex.Execute(conn, "DELETE FROM env_state", nil); err != nil {
		return fmt.Errorf("state store: clearing state: %w", err)
	}
	for _, row := range state.rows() {
		err := sqlitex.Execute(conn,
			"INSERT INTO env_state (key, value) VALUES (?, ?)",
			&sqlitex.ExecOptions{Args: []any{row[0], row[1]}})
		if err != nil {
			return fmt.Errorf("state store: writing %s: %w", row[0], err)
		}
	}
	return nil
}

// Load reads the stored state. A missing or empty table yields the
// zero State.
func (s *Store) Load(ctx context.Context) (State, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return State{}, err
	}
	defer s.pool.Put(conn)

	var state State
	err = sqlitex.Execute(conn, "SELECT key, value FROM env_state", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			state.set(stmt.ColumnText(0), stmt.ColumnText(1))
			return nil
		},
	})
	if err != nil {
		return State{}, fmt.Errorf("state store: reading state: %w", err)
	}
	return state, nil
}

// Clear removes all stored state.
func (s *Store) Clear(ctx context.Context) error {
	return s.Save(ctx, State{})
}

// Close releases the underlying database connections.
func (s *Store) Close() error {
	return s.pool.Close()
}
