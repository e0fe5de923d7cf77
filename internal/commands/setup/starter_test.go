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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/switchboard-io/switchboard/internal/catalog"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	if cmd.Use != "setup" {
		t.Errorf("Use = %q, want %q", cmd.Use, "setup")
	}
	if cmd.Flags().Lookup("accessible") == nil {
		t.Error("missing --accessible flag")
	}
}

// The starter catalog must survive the same load path the daemon uses,
// or the very first "switchboard validate" after setup would fail.
func TestStarterCatalogLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := writeStarterCatalog(path); err != nil {
		t.Fatalf("writeStarterCatalog: %v", err)
	}

	src, err := catalog.NewFileSource(catalog.FileConfig{Path: path})
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	models, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap, err := routing.NewSnapshot(models)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	if snap.Len() != starterModelCount {
		t.Errorf("Len() = %d, want %d", snap.Len(), starterModelCount)
	}
	if got := snap.DefaultID(); got != "claude-sonnet-4-5" {
		t.Errorf("DefaultID() = %q, want %q", got, "claude-sonnet-4-5")
	}
	if snap.Repair() != nil {
		t.Errorf("starter catalog should not need default repair, got %+v", snap.Repair())
	}
	if got := len(snap.Enabled()); got != starterModelCount {
		t.Errorf("Enabled() count = %d, want %d", got, starterModelCount)
	}
}

func TestWriteStarterCatalog_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := writeStarterCatalog(path); err != nil {
		t.Fatalf("writeStarterCatalog: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %04o, want 0600", perm)
	}
}

func TestWriteStarterCatalog_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "models.yaml")
	if err := writeStarterCatalog(path); err != nil {
		t.Fatalf("writeStarterCatalog: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("catalog not created: %v", err)
	}
}

func TestShouldUseAccessibleMode(t *testing.T) {
	if !shouldUseAccessibleMode(true) {
		t.Error("explicit flag should force accessible mode")
	}

	t.Setenv("SWITCHBOARD_ACCESSIBLE", "1")
	if !shouldUseAccessibleMode(false) {
		t.Error("SWITCHBOARD_ACCESSIBLE=1 should force accessible mode")
	}
}
