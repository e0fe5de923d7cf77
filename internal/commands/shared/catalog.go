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

package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/switchboard-io/switchboard/internal/catalog"
	"github.com/switchboard-io/switchboard/internal/config"
	"github.com/switchboard-io/switchboard/internal/store"
)

// WritableSource combines catalog reads and writes. Model mutation
// commands load the current descriptors and write changes back through
// the same handle.
type WritableSource interface {
	catalog.Source
	catalog.Writer
}

// ResolveConfigPath returns the config file a command will load: the
// --config flag when set, otherwise the default location when a file
// exists there. Empty means environment variables and built-in defaults
// only.
func ResolveConfigPath() string {
	path := GetConfigPath()
	if path != "" {
		return path
	}
	defaultPath, err := config.ConfigPath()
	if err != nil {
		return ""
	}
	if _, statErr := os.Stat(defaultPath); statErr != nil {
		return ""
	}
	return defaultPath
}

// LoadConfig loads the effective configuration for a CLI command.
// The --config flag takes precedence; otherwise the default config file
// is used when it exists. Environment variables and built-in defaults
// apply either way, so commands work without any config file at all.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(ResolveConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// OpenSource opens the catalog source named in the configuration.
// Callers own the returned source and must Close it.
func OpenSource(cfg *config.Config) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case "sqlite":
		src, err := catalog.NewSQLiteSource(catalog.SQLiteConfig{
			Path: cfg.Catalog.Path,
		})
		if err != nil {
			return nil, NewConfigError("failed to open sqlite catalog", err)
		}
		return src, nil
	default:
		src, err := catalog.NewFileSource(catalog.FileConfig{
			Path:    cfg.Catalog.Path,
			Include: cfg.Catalog.Include,
			Exclude: cfg.Catalog.Exclude,
		})
		if err != nil {
			return nil, NewConfigError("failed to open catalog", err)
		}
		return src, nil
	}
}

// OpenWriter opens the catalog for mutation commands. Both backends are
// writable, but a file source spanning multiple files rejects writes at
// mutation time because the target file would be ambiguous.
func OpenWriter(cfg *config.Config) (WritableSource, error) {
	src, err := OpenSource(cfg)
	if err != nil {
		return nil, err
	}
	w, ok := src.(WritableSource)
	if !ok {
		src.Close()
		return nil, fmt.Errorf("catalog source %q does not support writes", cfg.Catalog.Source)
	}
	return w, nil
}

// OpenStore opens the preference store named in the configuration.
// Callers own the returned store and must Close it.
func OpenStore(cfg *config.Config) (store.Store, error) {
	if cfg.Preferences.Backend == "memory" {
		return store.NewMemoryStore(), nil
	}
	// SQLite creates the database file but not its directory.
	prefsPath := cfg.PreferencesPath()
	if err := os.MkdirAll(filepath.Dir(prefsPath), 0700); err != nil {
		return nil, NewConfigError("failed to create data directory", err)
	}
	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: prefsPath,
	})
	if err != nil {
		return nil, NewConfigError("failed to open preference store", err)
	}
	return st, nil
}
