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
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/switchboard-io/switchboard/pkg/routing"
)

// modelRow is one list_models entry.
type modelRow struct {
	ModelID          string   `json:"model_id"`
	DisplayName      string   `json:"display_name,omitempty"`
	Provider         string   `json:"provider,omitempty"`
	ContextWindow    int      `json:"context_window"`
	MaxOutput        int      `json:"max_output"`
	CostInput        float64  `json:"cost_input"`
	CostOutput       float64  `json:"cost_output"`
	SupportsThinking bool     `json:"supports_thinking"`
	SupportsVision   bool     `json:"supports_vision"`
	SpeedTier        string   `json:"speed_tier"`
	IntelligenceTier string   `json:"intelligence_tier"`
	RecommendedFor   []string `json:"recommended_for,omitempty"`
	Enabled          bool     `json:"enabled"`
	Default          bool     `json:"default"`
}

// modelListing is the list_models payload.
type modelListing struct {
	SnapshotVersion uint64     `json:"snapshot_version"`
	DefaultID       string     `json:"default_id,omitempty"`
	Models          []modelRow `json:"models"`
}

// handleListModels implements the list_models tool.
func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	enabledOnly := request.GetBool("enabled_only", false)
	listing := listModels(s.registry.Snapshot(), enabledOnly)

	resultJSON, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode model list: %v", err)), nil
	}

	return textResponse(string(resultJSON)), nil
}

// handleModelInfo implements the model_info tool.
func (s *Server) handleModelInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	modelID, err := request.RequireString("model_id")
	if err != nil {
		return errorResponse("Missing or invalid 'model_id' argument"), nil
	}

	row, ok := modelInfo(s.registry.Snapshot(), modelID)
	if !ok {
		return errorResponse(fmt.Sprintf("Model %q not found. Use list_models to see the catalog.", modelID)), nil
	}

	resultJSON, err := json.MarshalIndent(row, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode model info: %v", err)), nil
	}

	return textResponse(string(resultJSON)), nil
}

// listModels builds the listing payload from a snapshot. Extracted for
// testing.
func listModels(snap *routing.Snapshot, enabledOnly bool) modelListing {
	models := snap.Models()
	if enabledOnly {
		models = snap.Enabled()
	}

	rows := make([]modelRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, descriptorRow(m))
	}

	return modelListing{
		SnapshotVersion: snap.Version(),
		DefaultID:       snap.DefaultID(),
		Models:          rows,
	}
}

// modelInfo looks up one model in the snapshot. Extracted for testing.
func modelInfo(snap *routing.Snapshot, id string) (modelRow, bool) {
	m, ok := snap.Get(id)
	if !ok {
		return modelRow{}, false
	}
	return descriptorRow(m), true
}

func descriptorRow(m routing.ModelDescriptor) modelRow {
	return modelRow{
		ModelID:          m.ID,
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
	}
}
