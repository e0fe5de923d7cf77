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

package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/switchboard-io/switchboard/internal/cli/format"
	"github.com/switchboard-io/switchboard/internal/commands/completion"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <model>",
		Short: "Show detailed information about a model",
		Long: `Display one catalog entry in full: capabilities, context window,
pricing, recommended tasks, and routing flags.

Examples:
  # Show info for a specific model
  switchboard models info claude-sonnet-4-5

  # Get JSON output
  switchboard models info claude-sonnet-4-5 --json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			modelID := args[0]

			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}
			src, err := shared.OpenSource(cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			descriptors, err := src.Load(cmd.Context())
			if err != nil {
				return shared.NewConfigError("failed to load catalog", err)
			}

			var model *routing.ModelDescriptor
			for i := range descriptors {
				if descriptors[i].ID == modelID {
					model = &descriptors[i]
					break
				}
			}
			if model == nil {
				return shared.NewNotFoundError(
					fmt.Sprintf("model %q not found. Run 'switchboard models list' to see registered models", modelID),
					nil,
				)
			}

			if shared.GetJSON() {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(newModelRow(*model))
			}

			// Human-readable output
			title := model.ID
			if model.DisplayName != "" && model.DisplayName != model.ID {
				title = fmt.Sprintf("%s (%s)", model.DisplayName, model.ID)
			}
			fmt.Fprintln(out, shared.Header.Render("Model: "+title))
			fmt.Fprintln(out)

			fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Provider:"), valueOrDash(model.Provider))
			fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Speed:"), valueOrDash(string(model.SpeedTier)))
			fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Intelligence:"), valueOrDash(string(model.IntelligenceTier)))

			if model.ContextWindow > 0 {
				fmt.Fprintf(out, "%s %d tokens (%s)\n", shared.RenderLabel("Context Window:"), model.ContextWindow, format.FormatTokens(model.ContextWindow))
			} else {
				fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Context Window:"), shared.Muted.Render("N/A"))
			}
			if model.MaxOutput > 0 {
				fmt.Fprintf(out, "%s %d tokens\n", shared.RenderLabel("Max Output:"), model.MaxOutput)
			} else {
				fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Max Output:"), shared.Muted.Render("N/A"))
			}

			fmt.Fprintf(out, "%s %s input, %s output\n", shared.RenderLabel("Pricing:"),
				format.FormatPrice(model.InputPricePerMillion),
				format.FormatPrice(model.OutputPricePerMillion))

			fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Vision:"), yesNo(model.SupportsVision))
			fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Thinking:"), yesNo(model.SupportsThinking))

			if len(model.RecommendedFor) > 0 {
				fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Recommended For:"), strings.Join(model.RecommendedFor, ", "))
			} else {
				fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Recommended For:"), shared.Muted.Render("None"))
			}

			status := shared.RenderEnabled(model.Enabled)
			if model.Default {
				status += " " + shared.RenderDefault()
			}
			fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Status:"), status)

			if !model.UpdatedAt.IsZero() {
				fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Updated:"), model.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
			}

			return nil
		},
	}

	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
