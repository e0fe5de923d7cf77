// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists preferences in SQLite.
//
// Database location: ~/.switchboard/data/preferences.db (configurable)
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteConfig contains configuration for the SQLite preference store.
type SQLiteConfig struct {
	// Path is the filesystem path to the SQLite database file.
	// ":memory:" creates an in-memory database for testing.
	Path string

	// MaxOpenConns sets the maximum number of open connections. Use 1 for
	// in-memory databases so the pool cannot split them.
	MaxOpenConns int
}

// NewSQLiteStore opens the preference database, creating the schema if
// needed.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	connStr := cfg.Path
	if cfg.Path != ":memory:" {
		// WAL mode for better concurrency
		connStr = cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns == 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// migrate creates the database schema.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id TEXT PRIMARY KEY,
			preferred_model TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// PreferredModel returns the stored model id for a user.
func (s *SQLiteStore) PreferredModel(ctx context.Context, userID string) (string, error) {
	query := `SELECT preferred_model FROM user_preferences WHERE user_id = ?`

	var modelID string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&modelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &swberrors.NotFoundError{Resource: "preference", ID: userID}
		}
		return "", &swberrors.StoreError{Op: "get preference", Backend: "sqlite", Cause: err}
	}

	return modelID, nil
}

// Set stores a user's preferred model, replacing any previous preference.
func (s *SQLiteStore) Set(ctx context.Context, userID, modelID string) error {
	if userID == "" {
		return &swberrors.ValidationError{
			Field:      "user_id",
			Message:    "user id must not be empty",
			Suggestion: "Provide the user the preference belongs to",
		}
	}
	if modelID == "" {
		return &swberrors.ValidationError{
			Field:      "preferred_model",
			Message:    "model id must not be empty",
			Suggestion: "Use clear to remove a preference",
		}
	}

	query := `INSERT INTO user_preferences (user_id, preferred_model, updated_at)
	          VALUES (?, ?, ?)
	          ON CONFLICT(user_id) DO UPDATE SET
	              preferred_model = excluded.preferred_model,
	              updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, userID, modelID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &swberrors.StoreError{Op: "set preference", Backend: "sqlite", Cause: err}
	}

	return nil
}

// Clear removes a user's preference.
func (s *SQLiteStore) Clear(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return &swberrors.StoreError{Op: "clear preference", Backend: "sqlite", Cause: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &swberrors.StoreError{Op: "clear preference", Backend: "sqlite", Cause: err}
	}
	if rows == 0 {
		return &swberrors.NotFoundError{Resource: "preference", ID: userID}
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
