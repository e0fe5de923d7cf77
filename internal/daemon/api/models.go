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

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/switchboard-io/switchboard/internal/daemon/httputil"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

// ReloadFunc reloads the catalog into the registry. The daemon binds
// the reload trigger label before handing it to the handler.
type ReloadFunc func(ctx context.Context) error

// ModelsHandler handles catalog read and reload requests.
type ModelsHandler struct {
	registry *routing.Registry
	reload   ReloadFunc
	logger   *slog.Logger
}

// NewModelsHandler creates a models handler. reload may be nil, which
// disables POST /v1/reload with a 503.
func NewModelsHandler(registry *routing.Registry, reload ReloadFunc, logger *slog.Logger) *ModelsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelsHandler{
		registry: registry,
		reload:   reload,
		logger:   logger,
	}
}

// RegisterRoutes registers catalog routes on the mux.
func (h *ModelsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/models", h.handleList)
	mux.HandleFunc("GET /v1/models/{id}", h.handleGet)
	mux.HandleFunc("GET /v1/default", h.handleDefault)
	mux.HandleFunc("POST /v1/reload", h.handleReload)
}

// modelResponse is the wire form of a model descriptor. Field names
// follow the catalog schema.
type modelResponse struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name,omitempty"`
	Provider         string    `json:"provider,omitempty"`
	ContextWindow    int       `json:"context_window"`
	MaxOutput        int       `json:"max_output"`
	CostInput        float64   `json:"cost_input"`
	CostOutput       float64   `json:"cost_output"`
	SupportsThinking bool      `json:"supports_thinking"`
	SupportsVision   bool      `json:"supports_vision"`
	SpeedTier        string    `json:"speed_tier"`
	IntelligenceTier string    `json:"intelligence_tier"`
	RecommendedFor   []string  `json:"recommended_for,omitempty"`
	Enabled          bool      `json:"enabled"`
	Default          bool      `json:"default"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

func toModelResponse(m routing.ModelDescriptor) modelResponse {
	return modelResponse{
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
		Enabled:          m.Enabled,
		Default:          m.Default,
		UpdatedAt:        m.UpdatedAt,
	}
}

// modelListResponse is the body for GET /v1/models.
type modelListResponse struct {
	Models          []modelResponse `json:"models"`
	SnapshotVersion uint64          `json:"snapshot_version"`
}

// handleList handles GET /v1/models. The enabled=true query parameter
// filters to models eligible for routing.
func (h *ModelsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()

	var models []routing.ModelDescriptor
	if r.URL.Query().Get("enabled") == "true" {
		models = snap.Enabled()
	} else {
		models = snap.Models()
	}

	resp := modelListResponse{
		Models:          make([]modelResponse, 0, len(models)),
		SnapshotVersion: snap.Version(),
	}
	for _, m := range models {
		resp.Models = append(resp.Models, toModelResponse(m))
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// handleGet handles GET /v1/models/{id}.
func (h *ModelsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	model, err := h.registry.Get(id)
	if err != nil {
		httputil.WriteError(w, http.StatusNotFound, fmt.Sprintf("model %q not found", id))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toModelResponse(model))
}

// handleDefault handles GET /v1/default.
func (h *ModelsHandler) handleDefault(w http.ResponseWriter, r *http.Request) {
	model, err := h.registry.Default()
	if err != nil {
		if errors.Is(err, routing.ErrNoDefaultAvailable) {
			httputil.WriteError(w, http.StatusNotFound, "no default model available")
			return
		}
		h.logger.Error("default lookup failed", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "default lookup failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toModelResponse(model))
}

// reloadResponse is the body for a successful POST /v1/reload.
type reloadResponse struct {
	Models          int    `json:"models"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// handleReload handles POST /v1/reload. A failed reload leaves the
// previous snapshot serving, and the response says so.
func (h *ModelsHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.reload == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, "reload is not available")
		return
	}

	if err := h.reload(r.Context()); err != nil {
		h.logger.Error("catalog reload failed", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError,
			fmt.Sprintf("reload failed, previous snapshot still serving: %v", err))
		return
	}

	snap := h.registry.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, reloadResponse{
		Models:          snap.Len(),
		SnapshotVersion: snap.Version(),
	})
}
