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

package completion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
)

func pointConfigAtCatalog(t *testing.T, catalogYAML string) {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(catalogPath, []byte(catalogYAML), 0600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := "catalog:\n  source: file\n  path: " + catalogPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	shared.SetConfigPathForTest(cfgPath)
	t.Cleanup(func() { shared.SetConfigPathForTest("") })
}

func TestCompleteModelIDs(t *testing.T) {
	pointConfigAtCatalog(t, `models:
  - model_id: alpha
    display_name: Alpha Model
    provider: test
    context_window: 100000
    max_output: 4096
    speed_tier: fast
    intelligence_tier: high
  - model_id: beta
    provider: test
    context_window: 100000
    max_output: 4096
    speed_tier: slow
    intelligence_tier: frontier
    is_enabled: false
`)

	results, directive := CompleteModelIDs(nil, nil, "")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
	if len(results) != 2 {
		t.Fatalf("completed %d ids, want 2 (disabled models included)", len(results))
	}
	if !strings.HasPrefix(results[0], "alpha\t") {
		t.Errorf("first result = %q, want alpha with display name description", results[0])
	}
	if results[1] != "beta" {
		t.Errorf("second result = %q, want bare beta", results[1])
	}
}

func TestCompleteModelIDs_NoCatalog(t *testing.T) {
	pointConfigAtCatalog(t, "")

	// An empty catalog completes to nothing without error output
	results, directive := CompleteModelIDs(nil, nil, "")
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
	if len(results) != 0 {
		t.Errorf("completed %d ids, want 0", len(results))
	}
}
