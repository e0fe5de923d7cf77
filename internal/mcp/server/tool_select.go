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
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/switchboard-io/switchboard/pkg/routing"
)

// selectParams carries the parsed select_model arguments.
type selectParams struct {
	UserID        string
	NeedsVision   bool
	NeedsThinking bool
	MinContext    int
	MaxCostInput  *float64
}

// selectionResult is the JSON payload returned to the agent.
type selectionResult struct {
	ModelID         string  `json:"model_id"`
	DisplayName     string  `json:"display_name,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	Reason          string  `json:"reason"`
	SnapshotVersion uint64  `json:"snapshot_version"`
	CostInput       float64 `json:"cost_input"`
	CostOutput      float64 `json:"cost_output"`
}

// handleSelectModel implements the select_model tool.
func (s *Server) handleSelectModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	p := selectParams{
		UserID:        request.GetString("user_id", ""),
		NeedsVision:   request.GetBool("needs_vision", false),
		NeedsThinking: request.GetBool("needs_thinking", false),
		MinContext:    request.GetInt("min_context", 0),
	}

	// A present-but-zero ceiling means "free models only", so presence
	// has to be checked on the raw arguments rather than a default.
	if args := request.GetArguments(); args != nil {
		if v, ok := args["max_cost_input"]; ok {
			if f, ok := v.(float64); ok {
				p.MaxCostInput = &f
			}
		}
	}

	result, err := runSelection(ctx, s.service, p)
	if err != nil {
		var noMatch *routing.NoCompatibleModelError
		if errors.As(err, &noMatch) {
			return errorResponse(noMatch.UserMessage() + " " + noMatch.Suggestion()), nil
		}
		return errorResponse(fmt.Sprintf("Selection failed: %v", err)), nil
	}

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode selection result: %v", err)), nil
	}

	return textResponse(string(resultJSON)), nil
}

// runSelection maps tool parameters onto a requirement and runs the
// selection service. Extracted for testing.
func runSelection(ctx context.Context, svc *routing.Service, p selectParams) (selectionResult, error) {
	req := routing.Requirement{
		NeedsVision:             p.NeedsVision,
		NeedsThinking:           p.NeedsThinking,
		MinContext:              p.MinContext,
		MaxInputPricePerMillion: p.MaxCostInput,
	}

	sel, err := svc.SelectModel(ctx, p.UserID, req)
	if err != nil {
		return selectionResult{}, err
	}

	return selectionResult{
		ModelID:         sel.Model.ID,
		DisplayName:     sel.Model.DisplayName,
		Provider:        sel.Model.Provider,
		Reason:          string(sel.Reason),
		SnapshotVersion: sel.SnapshotVersion,
		CostInput:       sel.Model.InputPricePerMillion,
		CostOutput:      sel.Model.OutputPricePerMillion,
	}, nil
}
