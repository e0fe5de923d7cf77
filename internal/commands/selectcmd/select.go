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

// Package selectcmd implements the select command, which resolves a
// single model against the catalog using the same rules the daemon
// applies for RPC clients.
package selectcmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/catalog"
	"github.com/switchboard-io/switchboard/internal/cli/format"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

// NewCommand creates the select command
func NewCommand() *cobra.Command {
	var (
		user          string
		needsVision   bool
		needsThinking bool
		minContext    int
		maxInputPrice float64
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the best model for a request",
		Long: `Select resolves one model from the catalog, the same way the daemon
does for its RPC clients.

Resolution Order:
  1. The user's stored preference, when it satisfies every constraint
  2. The catalog default, when it satisfies every constraint
  3. The best-ranked enabled model that satisfies every constraint

A model is skipped when it is disabled or fails any constraint below.
When nothing qualifies the command exits with code 3 and explains which
constraints excluded the candidates.

Examples:
  # Pick whatever the catalog considers best right now
  switchboard select

  # Honor a user's stored preference
  switchboard select --user alice

  # Require vision support and a 100K-token context window
  switchboard select --needs-vision --min-context 100000

  # Cap input cost for a batch job, machine-readable
  switchboard select --max-input-price 1.0 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := routing.Requirement{
				NeedsVision:   needsVision,
				NeedsThinking: needsThinking,
				MinContext:    minContext,
			}
			// A zero ceiling is a real constraint (free models only), so
			// only apply the flag when the caller set it.
			if cmd.Flags().Changed("max-input-price") {
				req.MaxInputPricePerMillion = &maxInputPrice
			}
			return runSelect(cmd, user, req)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User ID for preference lookup")
	cmd.Flags().BoolVar(&needsVision, "needs-vision", false, "Require image input support")
	cmd.Flags().BoolVar(&needsThinking, "needs-thinking", false, "Require extended reasoning support")
	cmd.Flags().IntVar(&minContext, "min-context", 0, "Minimum context window in tokens")
	cmd.Flags().Float64Var(&maxInputPrice, "max-input-price", 0, "Maximum input price in USD per million tokens")

	return cmd
}

type selectResponse struct {
	shared.JSONResponse
	ModelID         string `json:"model_id"`
	DisplayName     string `json:"display_name,omitempty"`
	Provider        string `json:"provider,omitempty"`
	Reason          string `json:"reason"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

func runSelect(cmd *cobra.Command, user string, req routing.Requirement) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	logger := shared.NewCLILogger(cmd.ErrOrStderr())

	src, err := shared.OpenSource(cfg)
	if err != nil {
		return shared.NewConfigError("failed to open catalog source", err)
	}
	defer src.Close()

	registry := routing.NewRegistry(logger)
	if err := catalog.Reload(cmd.Context(), src, registry); err != nil {
		return shared.NewConfigError("failed to load catalog", err)
	}

	prefs, err := shared.OpenStore(cfg)
	if err != nil {
		return shared.NewConfigError("failed to open preference store", err)
	}
	defer prefs.Close()

	svc := routing.NewService(registry, prefs, logger)

	sel, err := svc.SelectModel(cmd.Context(), user, req)
	if err != nil {
		return selectionError(err)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(selectResponse{
			JSONResponse: shared.JSONResponse{
				Version: "1.0",
				Command: "select",
				Success: true,
			},
			ModelID:         sel.Model.ID,
			DisplayName:     sel.Model.DisplayName,
			Provider:        sel.Model.Provider,
			Reason:          string(sel.Reason),
			SnapshotVersion: sel.SnapshotVersion,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Selected %s", sel.Model.Name())))
	fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("Reason:"), sel.Reason)
	if sel.Model.Provider != "" {
		fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("Provider:"), sel.Model.Provider)
	}
	fmt.Fprintf(out, "  %s %s input, %s output\n", shared.RenderLabel("Pricing:"),
		format.FormatPrice(sel.Model.InputPricePerMillion),
		format.FormatPrice(sel.Model.OutputPricePerMillion))
	fmt.Fprintf(out, "  %s %d\n", shared.RenderLabel("Snapshot:"), sel.SnapshotVersion)
	return nil
}

// selectionError maps a failed selection onto the command's exit
// contract: exhausted catalogs exit 3 with the per-dimension breakdown,
// anything else exits 1.
func selectionError(err error) error {
	var noMatch *routing.NoCompatibleModelError
	if !errors.As(err, &noMatch) {
		return err
	}

	if shared.GetJSON() {
		if jsonErr := shared.EmitJSONError("select", []shared.JSONError{{
			Code:       shared.ErrorCodeNoCompatibleModel,
			Message:    noMatch.UserMessage(),
			Suggestion: noMatch.Suggestion(),
		}}); jsonErr != nil {
			return jsonErr
		}
		// The envelope already carries the details.
		return &shared.ExitError{Code: shared.ExitNoCompatibleModel}
	}

	return shared.NewNoCompatibleModelError(noMatch)
}
