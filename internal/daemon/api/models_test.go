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

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/switchboard-io/switchboard/internal/daemon/api"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

func newModelsMux(t *testing.T, reg *routing.Registry, reload api.ReloadFunc) *http.ServeMux {
	t.Helper()
	handler := api.NewModelsHandler(reg, reload, discardLogger())

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func doModels(t *testing.T, mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestModelsAPI_List(t *testing.T) {
	disabled := testModel("claude-haiku-3-5")
	disabled.Enabled = false

	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"), testModel("claude-opus-4"), disabled)
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/models")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Models          []json.RawMessage `json:"models"`
		SnapshotVersion uint64            `json:"snapshot_version"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Models) != 3 {
		t.Errorf("Expected 3 models, got %d", len(resp.Models))
	}
	if resp.SnapshotVersion != 1 {
		t.Errorf("Expected snapshot version 1, got %d", resp.SnapshotVersion)
	}
}

func TestModelsAPI_ListEnabledOnly(t *testing.T) {
	disabled := testModel("claude-haiku-3-5")
	disabled.Enabled = false

	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"), disabled)
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/models?enabled=true")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Models []struct {
			ID string `json:"id"`
		} `json:"models"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Models) != 1 || resp.Models[0].ID != "claude-sonnet-4-5" {
		t.Errorf("Expected only the enabled model, got %v", resp.Models)
	}
}

func TestModelsAPI_ListEmpty(t *testing.T) {
	reg := newTestRegistry(t)
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/models")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	// An empty catalog serializes as an empty array, not null
	if !strings.Contains(w.Body.String(), `"models":[]`) {
		t.Errorf("Expected empty models array, got %s", w.Body.String())
	}
}

func TestModelsAPI_Get(t *testing.T) {
	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"))
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/models/claude-sonnet-4-5")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID            string  `json:"id"`
		Provider      string  `json:"provider"`
		ContextWindow int     `json:"context_window"`
		CostInput     float64 `json:"cost_input"`
		Enabled       bool    `json:"enabled"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ID != "claude-sonnet-4-5" {
		t.Errorf("Expected id claude-sonnet-4-5, got %q", resp.ID)
	}
	if resp.Provider != "anthropic" || resp.ContextWindow != 200000 || resp.CostInput != 3.0 {
		t.Errorf("Descriptor fields not serialized: %+v", resp)
	}
	if !resp.Enabled {
		t.Error("Expected enabled model")
	}
}

func TestModelsAPI_GetNotFound(t *testing.T) {
	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"))
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/models/nope")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `model \"nope\" not found`) {
		t.Errorf("Expected not-found message, got %s", w.Body.String())
	}
}

func TestModelsAPI_Default(t *testing.T) {
	def := testModel("claude-sonnet-4-5")
	def.Default = true
	reg := newTestRegistry(t, def, testModel("claude-opus-4"))
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/default")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID      string `json:"id"`
		Default bool   `json:"default"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ID != "claude-sonnet-4-5" || !resp.Default {
		t.Errorf("Expected the default model, got %+v", resp)
	}
}

func TestModelsAPI_DefaultMissing(t *testing.T) {
	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"))
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "GET", "/v1/default")

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "no default model available") {
		t.Errorf("Expected no-default message, got %s", w.Body.String())
	}
}

func TestModelsAPI_Reload(t *testing.T) {
	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"))

	reload := func(ctx context.Context) error {
		return reg.Load([]routing.ModelDescriptor{
			testModel("claude-sonnet-4-5"),
			testModel("claude-opus-4"),
			testModel("claude-haiku-4"),
		})
	}
	mux := newModelsMux(t, reg, reload)

	w := doModels(t, mux, "POST", "/v1/reload")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Models          int    `json:"models"`
		SnapshotVersion uint64 `json:"snapshot_version"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Models != 3 {
		t.Errorf("Expected 3 models after reload, got %d", resp.Models)
	}
	if resp.SnapshotVersion != 2 {
		t.Errorf("Expected snapshot version 2, got %d", resp.SnapshotVersion)
	}
}

func TestModelsAPI_ReloadFailure(t *testing.T) {
	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"))

	reload := func(ctx context.Context) error {
		return errors.New("catalog file is unreadable")
	}
	mux := newModelsMux(t, reg, reload)

	w := doModels(t, mux, "POST", "/v1/reload")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "previous snapshot still serving") {
		t.Errorf("Expected reload failure message, got %s", w.Body.String())
	}
	if reg.Version() != 1 {
		t.Errorf("Expected snapshot version unchanged, got %d", reg.Version())
	}
}

func TestModelsAPI_ReloadUnavailable(t *testing.T) {
	reg := newTestRegistry(t, testModel("claude-sonnet-4-5"))
	mux := newModelsMux(t, reg, nil)

	w := doModels(t, mux, "POST", "/v1/reload")

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "reload is not available") {
		t.Errorf("Expected unavailable message, got %s", w.Body.String())
	}
}
