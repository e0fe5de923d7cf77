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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
	"github.com/switchboard-io/switchboard/pkg/routing"
	"gopkg.in/yaml.v3"
)

// modelEntry is the YAML schema for one catalog row. Field names follow the
// persisted configuration schema; is_enabled defaults to true when omitted.
type modelEntry struct {
	ID               string    `yaml:"model_id"`
	DisplayName      string    `yaml:"display_name,omitempty"`
	Provider         string    `yaml:"provider"`
	ContextWindow    int       `yaml:"context_window"`
	MaxOutput        int       `yaml:"max_output"`
	CostInput        float64   `yaml:"cost_input"`
	CostOutput       float64   `yaml:"cost_output"`
	SupportsThinking bool      `yaml:"supports_thinking,omitempty"`
	SupportsVision   bool      `yaml:"supports_vision,omitempty"`
	SpeedTier        string    `yaml:"speed_tier"`
	IntelligenceTier string    `yaml:"intelligence_tier"`
	RecommendedFor   []string  `yaml:"recommended_for,omitempty"`
	Enabled          *bool     `yaml:"is_enabled,omitempty"`
	Default          bool      `yaml:"is_default,omitempty"`
	UpdatedAt        time.Time `yaml:"updated_at,omitempty"`
}

// catalogFile is the top-level YAML document shape.
type catalogFile struct {
	Models []modelEntry `yaml:"models"`
}

func (e modelEntry) toDescriptor() routing.ModelDescriptor {
	enabled := true
	if e.Enabled != nil {
		enabled = *e.Enabled
	}
	return routing.ModelDescriptor{
		ID:                    e.ID,
		DisplayName:           e.DisplayName,
		Provider:              e.Provider,
		ContextWindow:         e.ContextWindow,
		MaxOutput:             e.MaxOutput,
		InputPricePerMillion:  e.CostInput,
		OutputPricePerMillion: e.CostOutput,
		SupportsThinking:      e.SupportsThinking,
		SupportsVision:        e.SupportsVision,
		SpeedTier:             routing.SpeedTier(e.SpeedTier),
		IntelligenceTier:      routing.IntelligenceTier(e.IntelligenceTier),
		RecommendedFor:        e.RecommendedFor,
		Enabled:               enabled,
		Default:               e.Default,
		UpdatedAt:             e.UpdatedAt,
	}
}

func entryFromDescriptor(m routing.ModelDescriptor) modelEntry {
	enabled := m.Enabled
	return modelEntry{
		ID:               m.ID,
		DisplayName:      m.DisplayName,
		Provider:         m.Provider,
		ContextWindow:    m.ContextWindow,
		MaxOutput:        m.MaxOutput,
		CostInput:        m.InputPricePerMillion,
		CostOutput:       m.OutputPricePerMillion,
		SupportsThinking: m.SupportsThinking,
		SupportsVision:   m.SupportsVision,
		SpeedTier:        string(m.SpeedTier),
		IntelligenceTier: string(m.IntelligenceTier),
		RecommendedFor:   m.RecommendedFor,
		Enabled:          &enabled,
		Default:          m.Default,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FileConfig configures a FileSource.
type FileConfig struct {
	// Path is a catalog YAML file or a directory of catalog files.
	Path string

	// Include are doublestar patterns selecting files when Path is a
	// directory. Empty means all YAML files.
	Include []string

	// Exclude are doublestar patterns removing files matched by Include.
	Exclude []string
}

// FileSource loads model descriptors from YAML files. When Path is a
// directory, matched files are merged in lexical path order so the combined
// insertion order is stable. Mutations are supported in single-file mode
// only and are serialized through an advisory file lock.
type FileSource struct {
	path    string
	matcher *PatternMatcher
}

// NewFileSource creates a file-backed catalog source.
func NewFileSource(cfg FileConfig) (*FileSource, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path is required")
	}

	path := cfg.Path
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	matcher, err := NewPatternMatcher(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}

	return &FileSource{
		path:    path,
		matcher: matcher,
	}, nil
}

// Path returns the configured catalog path after home expansion.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads all model descriptors. A missing single-file catalog loads as
// empty rather than failing, so a fresh install serves NoCompatibleModel
// instead of refusing to start.
func (s *FileSource) Load(ctx context.Context) ([]routing.ModelDescriptor, error) {
	files, err := s.resolveFiles()
	if err != nil {
		return nil, err
	}

	var models []routing.ModelDescriptor
	seen := make(map[string]string) // id -> file that defined it

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := readCatalogFile(file)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			m := entry.toDescriptor()
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("%s: model %q: %w", file, entry.ID, err)
			}
			if prev, dup := seen[m.ID]; dup {
				return nil, &swberrors.ValidationError{
					Field:      "model_id",
					Message:    fmt.Sprintf("duplicate model id %q (defined in %s and %s)", m.ID, prev, file),
					Suggestion: "Each model_id must appear once across all catalog files",
				}
			}
			seen[m.ID] = file
			models = append(models, m)
		}
	}

	return models, nil
}

// Close releases resources. The file source holds none between operations.
func (s *FileSource) Close() error {
	return nil
}

// resolveFiles returns the catalog files to read, in lexical path order.
func (s *FileSource) resolveFiles() ([]string, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog path: %w", err)
	}

	if !info.IsDir() {
		return []string{s.path}, nil
	}

	var files []string
	err = filepath.WalkDir(s.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.path, path)
		if err != nil {
			return err
		}
		if s.matcher.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// readCatalogFile parses one catalog YAML file.
func readCatalogFile(path string) ([]modelEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	return doc.Models, nil
}

// Put inserts or replaces a descriptor by id.
func (s *FileSource) Put(ctx context.Context, model routing.ModelDescriptor) error {
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now().UTC()
	}
	if err := model.Validate(); err != nil {
		return err
	}

	return s.mutate(ctx, func(entries []modelEntry) ([]modelEntry, error) {
		replaced := false
		for i := range entries {
			if entries[i].ID == model.ID {
				entries[i] = entryFromDescriptor(model)
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, entryFromDescriptor(model))
		}
		return entries, nil
	})
}

// Remove deletes a descriptor by id.
func (s *FileSource) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(entries []modelEntry) ([]modelEntry, error) {
		for i := range entries {
			if entries[i].ID == id {
				return append(entries[:i], entries[i+1:]...), nil
			}
		}
		return nil, &swberrors.NotFoundError{Resource: "model", ID: id}
	})
}

// SetEnabled flips the enabled flag on a descriptor.
func (s *FileSource) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return s.mutate(ctx, func(entries []modelEntry) ([]modelEntry, error) {
		for i := range entries {
			if entries[i].ID == id {
				e := enabled
				entries[i].Enabled = &e
				entries[i].UpdatedAt = time.Now().UTC()
				return entries, nil
			}
		}
		return nil, &swberrors.NotFoundError{Resource: "model", ID: id}
	})
}

// SetDefault marks id as the default and clears the flag everywhere else.
func (s *FileSource) SetDefault(ctx context.Context, id string) error {
	return s.mutate(ctx, func(entries []modelEntry) ([]modelEntry, error) {
		found := false
		for i := range entries {
			if entries[i].ID == id {
				entries[i].Default = true
				entries[i].UpdatedAt = time.Now().UTC()
				found = true
			} else if entries[i].Default {
				entries[i].Default = false
				entries[i].UpdatedAt = time.Now().UTC()
			}
		}
		if !found {
			return nil, &swberrors.NotFoundError{Resource: "model", ID: id}
		}
		return entries, nil
	})
}

// mutate applies fn to the catalog entries under the file lock and writes
// the result back atomically. Only single-file catalogs are writable.
func (s *FileSource) mutate(ctx context.Context, fn func([]modelEntry) ([]modelEntry, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if info, err := os.Stat(s.path); err == nil && info.IsDir() {
		return fmt.Errorf("catalog at %s is a directory; mutations require a single-file catalog", s.path)
	}

	lock := newFileLock(s.path)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	var entries []modelEntry
	if data, err := os.ReadFile(s.path); err == nil {
		var doc catalogFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse catalog file %s: %w", s.path, err)
		}
		entries = doc.Models
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}

	entries, err := fn(entries)
	if err != nil {
		return err
	}

	return writeCatalogFile(s.path, entries)
}

// writeCatalogFile writes entries to path via a temp file and rename.
func writeCatalogFile(path string, entries []modelEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	data, err := yaml.Marshal(catalogFile{Models: entries})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
