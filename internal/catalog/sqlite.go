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

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
	"github.com/switchboard-io/switchboard/pkg/routing"
	_ "modernc.org/sqlite"
)

// SQLiteSource loads model descriptors from a SQLite database.
//
// Database location: ~/.switchboard/data/catalog.db (configurable)
//
// Rows are returned in insertion (rowid) order so selection tie-breaks stay
// stable across reloads. WAL mode is enabled for concurrent readers.
type SQLiteSource struct {
	db *sql.DB
}

// SQLiteConfig contains configuration for the SQLite catalog source.
type SQLiteConfig struct {
	// Path is the filesystem path to the SQLite database file.
	// ":memory:" creates an in-memory database for testing.
	Path string

	// MaxOpenConns sets the maximum number of open connections. Use 1 for
	// in-memory databases so the pool cannot split them.
	MaxOpenConns int
}

// NewSQLiteSource opens the catalog database, creating the schema if needed.
func NewSQLiteSource(cfg SQLiteConfig) (*SQLiteSource, error) {
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

	source := &SQLiteSource{db: db}

	if err := source.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return source, nil
}

// migrate creates the database schema.
func (s *SQLiteSource) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS models (
			model_id TEXT PRIMARY KEY,
			display_name TEXT,
			provider TEXT NOT NULL,
			context_window INTEGER NOT NULL DEFAULT 0,
			max_output INTEGER NOT NULL DEFAULT 0,
			cost_input REAL NOT NULL DEFAULT 0,
			cost_output REAL NOT NULL DEFAULT 0,
			supports_thinking INTEGER NOT NULL DEFAULT 0,
			supports_vision INTEGER NOT NULL DEFAULT 0,
			speed_tier TEXT NOT NULL,
			intelligence_tier TEXT NOT NULL,
			recommended_for TEXT,
			is_enabled INTEGER NOT NULL DEFAULT 1,
			is_default INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_models_enabled
			ON models(is_enabled)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Load reads all model descriptors in insertion order.
func (s *SQLiteSource) Load(ctx context.Context) ([]routing.ModelDescriptor, error) {
	query := `SELECT model_id, display_name, provider, context_window, max_output,
	                 cost_input, cost_output, supports_thinking, supports_vision,
	                 speed_tier, intelligence_tier, recommended_for,
	                 is_enabled, is_default, updated_at
	          FROM models ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &swberrors.StoreError{Op: "load catalog", Backend: "sqlite", Cause: err}
	}
	defer rows.Close()

	var models []routing.ModelDescriptor
	for rows.Next() {
		var m routing.ModelDescriptor
		var displayName, recommendedFor sql.NullString
		var updatedAt string

		if err := rows.Scan(
			&m.ID,
			&displayName,
			&m.Provider,
			&m.ContextWindow,
			&m.MaxOutput,
			&m.InputPricePerMillion,
			&m.OutputPricePerMillion,
			&m.SupportsThinking,
			&m.SupportsVision,
			&m.SpeedTier,
			&m.IntelligenceTier,
			&recommendedFor,
			&m.Enabled,
			&m.Default,
			&updatedAt,
		); err != nil {
			return nil, &swberrors.StoreError{Op: "scan model", Backend: "sqlite", Cause: err}
		}

		m.DisplayName = displayName.String
		if recommendedFor.Valid && recommendedFor.String != "" {
			if err := json.Unmarshal([]byte(recommendedFor.String), &m.RecommendedFor); err != nil {
				return nil, &swberrors.StoreError{Op: "decode recommended_for", Backend: "sqlite", Cause: err}
			}
		}
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("model %q: %w", m.ID, err)
		}

		models = append(models, m)
	}

	if err := rows.Err(); err != nil {
		return nil, &swberrors.StoreError{Op: "load catalog", Backend: "sqlite", Cause: err}
	}

	return models, nil
}

// Put inserts or replaces a descriptor by id.
func (s *SQLiteSource) Put(ctx context.Context, model routing.ModelDescriptor) error {
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now().UTC()
	}
	if err := model.Validate(); err != nil {
		return err
	}

	var recommendedFor []byte
	if len(model.RecommendedFor) > 0 {
		var err error
		recommendedFor, err = json.Marshal(model.RecommendedFor)
		if err != nil {
			return &swberrors.StoreError{Op: "encode recommended_for", Backend: "sqlite", Cause: err}
		}
	}

	query := `INSERT INTO models (model_id, display_name, provider, context_window, max_output,
	                              cost_input, cost_output, supports_thinking, supports_vision,
	                              speed_tier, intelligence_tier, recommended_for,
	                              is_enabled, is_default, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(model_id) DO UPDATE SET
	              display_name = excluded.display_name,
	              provider = excluded.provider,
	              context_window = excluded.context_window,
	              max_output = excluded.max_output,
	              cost_input = excluded.cost_input,
	              cost_output = excluded.cost_output,
	              supports_thinking = excluded.supports_thinking,
	              supports_vision = excluded.supports_vision,
	              speed_tier = excluded.speed_tier,
	              intelligence_tier = excluded.intelligence_tier,
	              recommended_for = excluded.recommended_for,
	              is_enabled = excluded.is_enabled,
	              is_default = excluded.is_default,
	              updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		model.ID,
		model.DisplayName,
		model.Provider,
		model.ContextWindow,
		model.MaxOutput,
		model.InputPricePerMillion,
		model.OutputPricePerMillion,
		model.SupportsThinking,
		model.SupportsVision,
		string(model.SpeedTier),
		string(model.IntelligenceTier),
		nullableString(recommendedFor),
		model.Enabled,
		model.Default,
		model.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return &swberrors.StoreError{Op: "put model", Backend: "sqlite", Cause: err}
	}

	return nil
}

// Remove deletes a descriptor by id.
func (s *SQLiteSource) Remove(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE model_id = ?`, id)
	if err != nil {
		return &swberrors.StoreError{Op: "remove model", Backend: "sqlite", Cause: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &swberrors.StoreError{Op: "remove model", Backend: "sqlite", Cause: err}
	}
	if rows == 0 {
		return &swberrors.NotFoundError{Resource: "model", ID: id}
	}

	return nil
}

// SetEnabled flips the enabled flag on a descriptor.
func (s *SQLiteSource) SetEnabled(ctx context.Context, id string, enabled bool) error {
	query := `UPDATE models SET is_enabled = ?, updated_at = ? WHERE model_id = ?`

	result, err := s.db.ExecContext(ctx, query, enabled, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return &swberrors.StoreError{Op: "set enabled", Backend: "sqlite", Cause: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &swberrors.StoreError{Op: "set enabled", Backend: "sqlite", Cause: err}
	}
	if rows == 0 {
		return &swberrors.NotFoundError{Resource: "model", ID: id}
	}

	return nil
}

// SetDefault marks id as the default and clears the flag everywhere else.
// Both updates happen in one transaction so readers never observe two
// defaults.
func (s *SQLiteSource) SetDefault(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &swberrors.StoreError{Op: "set default", Backend: "sqlite", Cause: err}
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	result, err := tx.ExecContext(ctx,
		`UPDATE models SET is_default = 1, updated_at = ? WHERE model_id = ?`, now, id)
	if err != nil {
		return &swberrors.StoreError{Op: "set default", Backend: "sqlite", Cause: err}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return &swberrors.StoreError{Op: "set default", Backend: "sqlite", Cause: err}
	}
	if rows == 0 {
		return &swberrors.NotFoundError{Resource: "model", ID: id}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE models SET is_default = 0, updated_at = ? WHERE model_id != ? AND is_default = 1`, now, id)
	if err != nil {
		return &swberrors.StoreError{Op: "clear default", Backend: "sqlite", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &swberrors.StoreError{Op: "set default", Backend: "sqlite", Cause: err}
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// nullableString converts an optional JSON blob for storage, mapping empty
// to NULL.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
