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

	"github.com/switchboard-io/switchboard/internal/daemon/httputil"
	"github.com/switchboard-io/switchboard/internal/store"
	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

// PreferencesHandler handles per-user preference requests.
type PreferencesHandler struct {
	store    store.Store
	registry *routing.Registry
	logger   *slog.Logger
}

// NewPreferencesHandler creates a preferences handler.
func NewPreferencesHandler(st store.Store, registry *routing.Registry, logger *slog.Logger) *PreferencesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferencesHandler{
		store:    st,
		registry: registry,
		logger:   logger,
	}
}

// RegisterRoutes registers preference routes on the mux.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/preferences/{user}", h.handleGet)
	mux.HandleFunc("PUT /v1/preferences/{user}", h.handleSet)
	mux.HandleFunc("DELETE /v1/preferences/{user}", h.handleClear)
}

// preferenceResponse is the wire form of a stored preference.
type preferenceResponse struct {
	UserID  string `json:"user_id"`
	ModelID string `json:"model_id"`
}

// setPreferenceRequest is the request body for PUT.
type setPreferenceRequest struct {
	ModelID string `json:"model_id"`
}

// handleGet handles GET /v1/preferences/{user}.
func (h *PreferencesHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	modelID, err := h.store.PreferredModel(r.Context(), user)
	if err != nil {
		var notFound *pkgerrors.NotFoundError
		if errors.As(err, &notFound) {
			httputil.WriteError(w, http.StatusNotFound, fmt.Sprintf("no preference stored for user %q", user))
			return
		}
		h.logger.Error("preference lookup failed", slog.String("user_id", user), slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "preference lookup failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, preferenceResponse{UserID: user, ModelID: modelID})
}

// handleSet handles PUT /v1/preferences/{user}. The model must exist in
// the current snapshot; it need not be enabled, since selection skips
// unusable preferences on its own.
func (h *PreferencesHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	var req setPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ModelID == "" {
		httputil.WriteError(w, http.StatusBadRequest, "model_id is required")
		return
	}

	if _, err := h.registry.Get(req.ModelID); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown model %q", req.ModelID))
		return
	}

	if err := h.store.Set(r.Context(), user, req.ModelID); err != nil {
		h.logger.Error("preference write failed", slog.String("user_id", user), slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to store preference")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, preferenceResponse{UserID: user, ModelID: req.ModelID})
}

// handleClear handles DELETE /v1/preferences/{user}.
func (h *PreferencesHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")

	if err := h.store.Clear(r.Context(), user); err != nil {
		var notFound *pkgerrors.NotFoundError
		if errors.As(err, &notFound) {
			httputil.WriteError(w, http.StatusNotFound, fmt.Sprintf("no preference stored for user %q", user))
			return
		}
		h.logger.Error("preference clear failed", slog.String("user_id", user), slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to clear preference")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
