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

package selectcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/store"
)

const selectCatalog = `models:
  - model_id: claude-sonnet-4-5
    provider: anthropic
    context_window: 200000
    max_output: 8192
    cost_input: 3.0
    cost_output: 15.0
    speed_tier: medium
    intelligence_tier: very-high
    supports_vision: true
    is_default: true
  - model_id: claude-haiku-4
    provider: anthropic
    context_window: 200000
    max_output: 8192
    cost_input: 0.8
    cost_output: 4.0
    speed_tier: fast
    intelligence_tier: high
    supports_thinking: true
`

// setupConfig writes a catalog plus a config pointing at it and routes
// the --config flag there for the duration of the test. The preference
// backend is caller-chosen so tests can exercise the sqlite path.
func setupConfig(t *testing.T, prefsBackend string) string {
	t.Helper()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(catalogPath, []byte(selectCatalog), 0600); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	prefs := "preferences:\n  backend: memory\n"
	if prefsBackend == "sqlite" {
		prefs = "preferences:\n  backend: sqlite\n  path: " + filepath.Join(dir, "prefs.db") + "\n"
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	content := "catalog:\n  source: file\n  path: " + catalogPath + "\n" + prefs
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	shared.SetConfigPathForTest(cfgPath)
	t.Cleanup(func() { shared.SetConfigPathForTest("") })

	return dir
}

func runSelectCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSelectCommand_Default(t *testing.T) {
	setupConfig(t, "memory")

	out, err := runSelectCommand(t)
	if err != nil {
		t.Fatalf("select error: %v", err)
	}

	if !strings.Contains(out, "Selected claude-sonnet-4-5") {
		t.Errorf("expected the catalog default to win, got:\n%s", out)
	}
	if !strings.Contains(out, "default") {
		t.Errorf("expected the default reason, got:\n%s", out)
	}
	if !strings.Contains(out, "$3.00/1M") {
		t.Errorf("expected formatted pricing, got:\n%s", out)
	}
}

func TestSelectCommand_ConstraintSkipsDefault(t *testing.T) {
	setupConfig(t, "memory")

	out, err := runSelectCommand(t, "--needs-thinking")
	if err != nil {
		t.Fatalf("select error: %v", err)
	}

	if !strings.Contains(out, "Selected claude-haiku-4") {
		t.Errorf("expected the thinking-capable model, got:\n%s", out)
	}
	if !strings.Contains(out, "ranked") {
		t.Errorf("expected the ranked reason when the default fails a constraint, got:\n%s", out)
	}
}

func TestSelectCommand_Preference(t *testing.T) {
	dir := setupConfig(t, "sqlite")

	prefs, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(dir, "prefs.db")})
	if err != nil {
		t.Fatalf("opening preference store: %v", err)
	}
	if err := prefs.Set(context.Background(), "alice", "claude-haiku-4"); err != nil {
		t.Fatalf("seeding preference: %v", err)
	}
	if err := prefs.Close(); err != nil {
		t.Fatalf("closing preference store: %v", err)
	}

	out, err := runSelectCommand(t, "--user", "alice")
	if err != nil {
		t.Fatalf("select error: %v", err)
	}

	if !strings.Contains(out, "Selected claude-haiku-4") {
		t.Errorf("expected the stored preference to win, got:\n%s", out)
	}
	if !strings.Contains(out, "preference") {
		t.Errorf("expected the preference reason, got:\n%s", out)
	}
}

func TestSelectCommand_PreferenceFailingConstraintFallsBack(t *testing.T) {
	dir := setupConfig(t, "sqlite")

	prefs, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(dir, "prefs.db")})
	if err != nil {
		t.Fatalf("opening preference store: %v", err)
	}
	if err := prefs.Set(context.Background(), "alice", "claude-haiku-4"); err != nil {
		t.Fatalf("seeding preference: %v", err)
	}
	if err := prefs.Close(); err != nil {
		t.Fatalf("closing preference store: %v", err)
	}

	// The preferred model has no vision support, so the default wins.
	out, err := runSelectCommand(t, "--user", "alice", "--needs-vision")
	if err != nil {
		t.Fatalf("select error: %v", err)
	}

	if !strings.Contains(out, "Selected claude-sonnet-4-5") {
		t.Errorf("expected fallback past the unsatisfiable preference, got:\n%s", out)
	}
}

func TestSelectCommand_NoCompatibleModel(t *testing.T) {
	setupConfig(t, "memory")

	_, err := runSelectCommand(t, "--min-context", "99999999")
	if err == nil {
		t.Fatal("expected an error when no model satisfies the constraints")
	}

	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected an exit error, got %T: %v", err, err)
	}
	if exitErr.Code != shared.ExitNoCompatibleModel {
		t.Errorf("expected exit code %d, got %d", shared.ExitNoCompatibleModel, exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "no compatible model") {
		t.Errorf("expected the selection failure message, got: %v", exitErr)
	}
}

func TestSelectCommand_NoCompatibleModelJSON(t *testing.T) {
	setupConfig(t, "memory")
	shared.SetJSONForTest(true)
	t.Cleanup(func() { shared.SetJSONForTest(false) })

	origStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	_, err := runSelectCommand(t, "--needs-vision", "--needs-thinking")
	os.Stdout = origStdout
	w.Close()

	var buf bytes.Buffer
	buf.ReadFrom(r)

	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected an exit error, got %T: %v", err, err)
	}
	if exitErr.Code != shared.ExitNoCompatibleModel {
		t.Errorf("expected exit code %d, got %d", shared.ExitNoCompatibleModel, exitErr.Code)
	}
	// The envelope carries the explanation, so the exit error stays silent.
	if exitErr.Error() != "" {
		t.Errorf("expected a bare exit error in JSON mode, got: %v", exitErr)
	}

	var resp struct {
		Success bool `json:"success"`
		Errors  []struct {
			Code       string `json:"code"`
			Message    string `json:"message"`
			Suggestion string `json:"suggestion"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("parsing JSON envelope: %v\noutput:\n%s", err, buf.String())
	}
	if resp.Success {
		t.Error("expected success=false in the error envelope")
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Code != "NO_COMPATIBLE_MODEL" {
		t.Errorf("expected a NO_COMPATIBLE_MODEL error, got: %+v", resp.Errors)
	}
	if resp.Errors[0].Suggestion == "" {
		t.Error("expected a suggestion naming the unmet constraints")
	}
}

func TestSelectCommand_JSON(t *testing.T) {
	setupConfig(t, "memory")
	shared.SetJSONForTest(true)
	t.Cleanup(func() { shared.SetJSONForTest(false) })

	origStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	_, err := runSelectCommand(t)
	os.Stdout = origStdout
	w.Close()

	if err != nil {
		t.Fatalf("select error: %v", err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)

	var resp struct {
		Version         string `json:"@version"`
		Command         string `json:"command"`
		Success         bool   `json:"success"`
		ModelID         string `json:"model_id"`
		Reason          string `json:"reason"`
		SnapshotVersion uint64 `json:"snapshot_version"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("parsing JSON output: %v\noutput:\n%s", err, buf.String())
	}

	if !resp.Success || resp.Command != "select" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if resp.ModelID != "claude-sonnet-4-5" {
		t.Errorf("expected the default model, got %q", resp.ModelID)
	}
	if resp.Reason != "default" {
		t.Errorf("expected the default reason, got %q", resp.Reason)
	}
	if resp.SnapshotVersion == 0 {
		t.Error("expected a non-zero snapshot version")
	}
}

func TestSelectCommand_InvalidRequirement(t *testing.T) {
	setupConfig(t, "memory")

	_, err := runSelectCommand(t, "--min-context", "-5")
	if err == nil {
		t.Fatal("expected a validation error for a negative context floor")
	}

	// Requirement validation is an input mistake, not a selection
	// failure, so it keeps the generic failure exit.
	var exitErr *shared.ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("expected a plain error, got exit code %d", exitErr.Code)
	}
}
