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
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/switchboard-io/switchboard/internal/store"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixtureModels() []routing.ModelDescriptor {
	everyday := routing.ModelDescriptor{
		ID:                    "everyday",
		DisplayName:           "Everyday Model",
		Provider:              "test",
		ContextWindow:         200000,
		MaxOutput:             8192,
		InputPricePerMillion:  1.0,
		OutputPricePerMillion: 5.0,
		SpeedTier:             routing.SpeedFast,
		IntelligenceTier:      routing.IntelligenceHigh,
		Enabled:               true,
		Default:               true,
	}

	frontier := routing.ModelDescriptor{
		ID:                    "frontier-vision",
		DisplayName:           "Frontier Vision",
		Provider:              "test",
		ContextWindow:         200000,
		MaxOutput:             32000,
		InputPricePerMillion:  15.0,
		OutputPricePerMillion: 75.0,
		SupportsThinking:      true,
		SupportsVision:        true,
		SpeedTier:             routing.SpeedSlow,
		IntelligenceTier:      routing.IntelligenceFrontier,
		Enabled:               true,
	}

	free := routing.ModelDescriptor{
		ID:               "free-local",
		Provider:         "test",
		ContextWindow:    131072,
		MaxOutput:        8192,
		SpeedTier:        routing.SpeedMedium,
		IntelligenceTier: routing.IntelligenceHigh,
		Enabled:          true,
	}

	return []routing.ModelDescriptor{everyday, frontier, free}
}

func selectionService(t *testing.T, prefs map[string]string) *routing.Service {
	t.Helper()

	registry := routing.NewRegistry(discardLogger())
	if err := registry.Load(fixtureModels()); err != nil {
		t.Fatalf("loading fixture catalog: %v", err)
	}

	st := store.NewMemoryStore()
	for userID, modelID := range prefs {
		if err := st.Set(context.Background(), userID, modelID); err != nil {
			t.Fatalf("seeding preference: %v", err)
		}
	}

	return routing.NewService(registry, st, discardLogger())
}

func TestRunSelection_Default(t *testing.T) {
	svc := selectionService(t, nil)

	result, err := runSelection(context.Background(), svc, selectParams{})
	if err != nil {
		t.Fatalf("runSelection failed: %v", err)
	}

	if result.ModelID != "everyday" {
		t.Errorf("selected %q, want the catalog default everyday", result.ModelID)
	}
	if result.Reason != "default" {
		t.Errorf("reason = %q, want default", result.Reason)
	}
	if result.CostInput != 1.0 {
		t.Errorf("cost_input = %v, want 1.0", result.CostInput)
	}
}

func TestRunSelection_PreferenceHonored(t *testing.T) {
	svc := selectionService(t, map[string]string{"u1": "frontier-vision"})

	result, err := runSelection(context.Background(), svc, selectParams{UserID: "u1"})
	if err != nil {
		t.Fatalf("runSelection failed: %v", err)
	}

	if result.ModelID != "frontier-vision" {
		t.Errorf("selected %q, want preferred frontier-vision", result.ModelID)
	}
	if result.Reason != "preference" {
		t.Errorf("reason = %q, want preference", result.Reason)
	}
}

func TestRunSelection_VisionRequirement(t *testing.T) {
	// The default model lacks vision, so the requirement forces the
	// ranked step.
	svc := selectionService(t, nil)

	result, err := runSelection(context.Background(), svc, selectParams{NeedsVision: true})
	if err != nil {
		t.Fatalf("runSelection failed: %v", err)
	}

	if result.ModelID != "frontier-vision" {
		t.Errorf("selected %q, want frontier-vision", result.ModelID)
	}
	if result.Reason != "ranked" {
		t.Errorf("reason = %q, want ranked", result.Reason)
	}
}

func TestRunSelection_ZeroCeilingMeansFreeOnly(t *testing.T) {
	svc := selectionService(t, nil)

	ceiling := 0.0
	result, err := runSelection(context.Background(), svc, selectParams{MaxCostInput: &ceiling})
	if err != nil {
		t.Fatalf("runSelection failed: %v", err)
	}

	if result.ModelID != "free-local" {
		t.Errorf("selected %q, want the only free model free-local", result.ModelID)
	}
}

func TestRunSelection_NoCompatibleModel(t *testing.T) {
	svc := selectionService(t, nil)

	_, err := runSelection(context.Background(), svc, selectParams{MinContext: 10000000})
	if err == nil {
		t.Fatal("expected error for impossible requirement")
	}

	var noCompat *routing.NoCompatibleModelError
	if !errors.As(err, &noCompat) {
		t.Errorf("error = %v, want NoCompatibleModelError", err)
	}
}
