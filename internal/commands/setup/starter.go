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

package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// starterModelCount is the number of entries in starterCatalogYAML,
// shown in the wizard summary.
const starterModelCount = 4

// starterCatalogYAML seeds new installations with a small spread across
// the selection dimensions: a balanced default, a fast cheap tier, a
// frontier tier, and a free local model.
const starterCatalogYAML = `# Switchboard model catalog
# Written by "switchboard setup". Edit freely; the daemon reloads on
# SIGHUP, or automatically when catalog.watch.enabled is set.
models:
  - model_id: claude-sonnet-4-5
    display_name: Claude Sonnet 4.5
    provider: anthropic
    context_window: 200000
    max_output: 64000
    cost_input: 3.0
    cost_output: 15.0
    supports_thinking: true
    supports_vision: true
    speed_tier: medium
    intelligence_tier: very-high
    recommended_for: [general, coding]
    is_default: true

  - model_id: claude-haiku-4
    display_name: Claude Haiku 4
    provider: anthropic
    context_window: 200000
    max_output: 32000
    cost_input: 1.0
    cost_output: 5.0
    supports_vision: true
    speed_tier: fast
    intelligence_tier: high
    recommended_for: [quick-edits, summarization]

  - model_id: claude-opus-4
    display_name: Claude Opus 4
    provider: anthropic
    context_window: 200000
    max_output: 32000
    cost_input: 15.0
    cost_output: 75.0
    supports_thinking: true
    supports_vision: true
    speed_tier: slow
    intelligence_tier: frontier
    recommended_for: [deep-analysis, architecture]

  - model_id: llama-3.3-70b
    display_name: Llama 3.3 70B (local)
    provider: ollama
    context_window: 131072
    max_output: 8192
    cost_input: 0.0
    cost_output: 0.0
    speed_tier: medium
    intelligence_tier: high
    recommended_for: [offline, privacy]
`

// writeStarterCatalog writes the starter model set to path atomically.
// Mode is 0600 to match the rest of the configuration surface.
func writeStarterCatalog(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(starterCatalogYAML); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
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
		return fmt.Errorf("failed to replace catalog file: %w", err)
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
