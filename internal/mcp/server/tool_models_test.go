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

package server

import (
	"testing"

	"github.com/switchboard-io/switchboard/pkg/routing"
)

func listingSnapshot(t *testing.T) *routing.Snapshot {
	t.Helper()

	retired := routing.ModelDescriptor{
		ID:               "retired",
		Provider:         "test",
		ContextWindow:    100000,
		MaxOutput:        4096,
		SpeedTier:        routing.SpeedSlow,
		IntelligenceTier: routing.IntelligenceHigh,
		Enabled:          false,
	}

	snap, err := routing.NewSnapshot(append(fixtureModels(), retired))
	if err != nil {
		t.Fatalf("building fixture snapshot: %v", err)
	}
	return snap
}

func TestListModels_All(t *testing.T) {
	snap := listingSnapshot(t)

	listing := listModels(snap, false)

	if len(listing.Models) != 4 {
		t.Fatalf("listed %d models, want 4 including the disabled one", len(listing.Models))
	}
	if listing.DefaultID != "everyday" {
		t.Errorf("default_id = %q, want everyday", listing.DefaultID)
	}
	if listing.SnapshotVersion != snap.Version() {
		t.Errorf("snapshot_version = %d, want %d", listing.SnapshotVersion, snap.Version())
	}

	// Rows keep catalog order, so the frontier model sits second.
	row := listing.Models[1]
	if row.ModelID != "frontier-vision" {
		t.Fatalf("second row = %q, want frontier-vision", row.ModelID)
	}
	if !row.SupportsVision || !row.SupportsThinking {
		t.Error("capability flags not carried into the row")
	}
	if row.SpeedTier != "slow" || row.IntelligenceTier != "frontier" {
		t.Errorf("tiers = %q/%q, want slow/frontier", row.SpeedTier, row.IntelligenceTier)
	}
	if row.CostInput != 15.0 || row.CostOutput != 75.0 {
		t.Errorf("pricing = %v/%v, want 15/75", row.CostInput, row.CostOutput)
	}
	if row.Default {
		t.Error("frontier-vision should not be flagged as default")
	}
}

func TestListModels_EnabledOnly(t *testing.T) {
	listing := listModels(listingSnapshot(t), true)

	if len(listing.Models) != 3 {
		t.Fatalf("listed %d models, want 3", len(listing.Models))
	}
	for _, row := range listing.Models {
		if row.ModelID == "retired" {
			t.Error("disabled model leaked into enabled-only listing")
		}
	}
}

func TestModelInfo_Found(t *testing.T) {
	row, ok := modelInfo(listingSnapshot(t), "everyday")
	if !ok {
		t.Fatal("modelInfo did not find everyday")
	}

	if row.DisplayName != "Everyday Model" {
		t.Errorf("display_name = %q, want Everyday Model", row.DisplayName)
	}
	if !row.Default || !row.Enabled {
		t.Error("default and enabled flags not carried into the row")
	}
	if row.ContextWindow != 200000 || row.MaxOutput != 8192 {
		t.Errorf("limits = %d/%d, want 200000/8192", row.ContextWindow, row.MaxOutput)
	}
}

func TestModelInfo_Missing(t *testing.T) {
	if _, ok := modelInfo(listingSnapshot(t), "no-such-model"); ok {
		t.Error("modelInfo should miss on an unknown id")
	}
}
