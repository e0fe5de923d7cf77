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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/switchboard-io/switchboard/internal/daemon/httputil"
	"github.com/switchboard-io/switchboard/internal/tracing"
	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

// SelectHandler handles model selection requests.
type SelectHandler struct {
	service *routing.Service
	metrics *tracing.MetricsCollector
	logger  *slog.Logger
}

// NewSelectHandler creates a select handler. metrics may be nil.
func NewSelectHandler(service *routing.Service, metrics *tracing.MetricsCollector, logger *slog.Logger) *SelectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectHandler{
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes registers selection routes on the mux.
func (h *SelectHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/select", h.handleSelect)
}

// requirementRequest is the wire form of a capability requirement.
// Field names follow the catalog schema.
type requirementRequest struct {
	NeedsVision   bool     `json:"needs_vision,omitempty"`
	NeedsThinking bool     `json:"needs_thinking,omitempty"`
	MinContext    int      `json:"min_context,omitempty"`
	MaxCostInput  *float64 `json:"max_cost_input,omitempty"`
}

func (r requirementRequest) toRequirement() routing.Requirement {
	return routing.Requirement{
		NeedsVision:             r.NeedsVision,
		NeedsThinking:           r.NeedsThinking,
		MinContext:              r.MinContext,
		MaxInputPricePerMillion: r.MaxCostInput,
	}
}

// selectRequest is the request body for POST /v1/select. An empty
// user_id selects without preference lookup; an omitted requirement
// means "any enabled model".
type selectRequest struct {
	UserID      string             `json:"user_id,omitempty"`
	Requirement requirementRequest `json:"requirement,omitempty"`
}

// selectResponse is the successful selection body.
type selectResponse struct {
	ModelID         string `json:"model_id"`
	Reason          string `json:"reason"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// noCompatibleResponse explains a failed selection: which requirement
// dimensions excluded every candidate.
type noCompatibleResponse struct {
	Error      string   `json:"error"`
	Unmet      []string `json:"unmet"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// handleSelect handles POST /v1/select.
func (h *SelectHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	ctx, span := tracing.StartSelectionSpan(r.Context(), req.UserID)
	start := time.Now()

	sel, err := h.service.SelectModel(ctx, req.UserID, req.Requirement.toRequirement())
	if err != nil {
		tracing.EndSpan(span, err)
		h.writeSelectError(w, err)
		return
	}

	tracing.RecordSelectionResult(span, sel.Model.ID, string(sel.Reason), sel.SnapshotVersion)
	tracing.EndSpan(span, nil)
	if h.metrics != nil {
		h.metrics.RecordSelection(ctx, string(sel.Reason), time.Since(start))
	}

	httputil.WriteJSON(w, http.StatusOK, selectResponse{
		ModelID:         sel.Model.ID,
		Reason:          string(sel.Reason),
		SnapshotVersion: sel.SnapshotVersion,
	})
}

// writeSelectError maps selection failures onto HTTP statuses: an
// unsatisfiable requirement is 422 with the unmet dimensions, an
// invalid requirement is 400.
func (h *SelectHandler) writeSelectError(w http.ResponseWriter, err error) {
	var noCompat *routing.NoCompatibleModelError
	if errors.As(err, &noCompat) {
		unmet := noCompat.Unmet.Dimensions()
		if unmet == nil {
			unmet = []string{}
		}
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, noCompatibleResponse{
			Error:      noCompat.Error(),
			Unmet:      unmet,
			Suggestion: noCompat.Suggestion(),
		})
		return
	}

	var valErr *pkgerrors.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteError(w, http.StatusBadRequest, valErr.Error())
		return
	}

	h.logger.Error("selection failed", slog.Any("error", err))
	httputil.WriteError(w, http.StatusInternalServerError, "selection failed")
}
