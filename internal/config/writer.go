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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// maxBackups is the number of timestamped config backups kept per file.
	maxBackups = 3

	configHeader = `# Switchboard Configuration
# Documentation: https://github.com/switchboard-io/switchboard
`
)

// WriteConfig writes the configuration to the given path.
// The existing file, if any, is backed up first. The write itself is atomic:
// content goes to a temp file in the same directory, then renames over the
// target. File mode is 0600 because the config may carry an auth token.
func WriteConfig(cfg *Config, path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append([]byte(configHeader+"\n"), data...)

	if err := backupExisting(path); err != nil {
		return err
	}

	if err := writeAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// WriteConfigMinimal writes a starter config containing only the catalog
// section. Loading it back fills every other section with defaults.
func WriteConfigMinimal(catalogSource, catalogPath, path string) error {
	minimal := struct {
		Catalog CatalogConfig `yaml:"catalog"`
	}{
		Catalog: CatalogConfig{
			Source: catalogSource,
			Path:   catalogPath,
		},
	}

	path, err := expandHome(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(minimal)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append([]byte(configHeader+"\n"), data...)

	if err := backupExisting(path); err != nil {
		return err
	}

	if err := writeAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// backupExisting copies the current file to <path>.bak.<timestamp> and
// rotates old backups, keeping the newest maxBackups.
func backupExisting(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	backupPath := fmt.Sprintf("%s.bak.%d", path, time.Now().UnixNano())
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return rotateBackups(path)
}

// rotateBackups removes all but the newest maxBackups backup files for path.
func rotateBackups(path string) error {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + ".bak."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, entry.Name())
		}
	}

	if len(backups) <= maxBackups {
		return nil
	}

	// Pruning keeps the newest entries; timestamped suffixes sort
	// oldest-first lexically.
	sort.Strings(backups)
	for _, name := range backups[:len(backups)-maxBackups] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", name, err)
		}
	}

	return nil
}

// writeAtomic writes data to path via a temp file and rename.
// The temp file is removed on any failure.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
