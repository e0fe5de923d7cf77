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
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

func newAddCmd() *cobra.Command {
	var (
		displayName    string
		provider       string
		contextWindow  int
		maxOutput      int
		inputPrice     float64
		outputPrice    float64
		speed          string
		intelligence   string
		vision         bool
		thinking       bool
		recommendedFor []string
		makeDefault    bool
		disabled       bool
	)

	cmd := &cobra.Command{
		Use:   "add <model>",
		Short: "Register a new model",
		Long: `Register a new model in the catalog.

The id must be unique. Speed is one of slow, medium, fast; intelligence
is one of high, very-high, frontier. New models are enabled unless
--disabled is given; pass --default to also make the model the fallback
choice for users without a preference.

Examples:
  # Register a model with full metadata
  switchboard models add claude-sonnet-4-5 \
    --provider anthropic \
    --context-window 200000 --max-output 8192 \
    --input-price 3.00 --output-price 15.00 \
    --speed medium --intelligence very-high \
    --vision --thinking \
    --recommended-for coding,analysis

  # Register the catalog's fallback model
  switchboard models add claude-haiku-4 --provider anthropic \
    --context-window 200000 --speed fast --intelligence high --default`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			modelID := args[0]

			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}
			w, err := shared.OpenWriter(cfg)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx := cmd.Context()

			// Reject duplicates; 'models add' never overwrites
			existing, err := w.Load(ctx)
			if err != nil {
				return shared.NewConfigError("failed to load catalog", err)
			}
			for _, m := range existing {
				if m.ID == modelID {
					return fmt.Errorf("model %q already registered. Remove it first or pick another id", modelID)
				}
			}

			model := routing.ModelDescriptor{
				ID:                    modelID,
				DisplayName:           displayName,
				Provider:              provider,
				ContextWindow:         contextWindow,
				MaxOutput:             maxOutput,
				InputPricePerMillion:  inputPrice,
				OutputPricePerMillion: outputPrice,
				SupportsVision:        vision,
				SupportsThinking:      thinking,
				SpeedTier:             routing.SpeedTier(speed),
				IntelligenceTier:      routing.IntelligenceTier(intelligence),
				RecommendedFor:        recommendedFor,
				Enabled:               !disabled,
				UpdatedAt:             time.Now().UTC(),
			}

			if err := model.Validate(); err != nil {
				return err
			}

			if err := w.Put(ctx, model); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}

			// SetDefault after Put so the flag moves atomically off any
			// previous holder
			if makeDefault {
				if err := w.SetDefault(ctx, modelID); err != nil {
					return fmt.Errorf("failed to set default: %w", err)
				}
			}

			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Model %s registered", modelID)))
			if makeDefault {
				fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Model %s is now the default", modelID)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable model name")
	cmd.Flags().StringVar(&provider, "provider", "", "Upstream vendor (e.g., anthropic)")
	cmd.Flags().IntVar(&contextWindow, "context-window", 0, "Context window size (tokens)")
	cmd.Flags().IntVar(&maxOutput, "max-output", 0, "Maximum output size (tokens)")
	cmd.Flags().Float64Var(&inputPrice, "input-price", 0, "Input price per million tokens (USD)")
	cmd.Flags().Float64Var(&outputPrice, "output-price", 0, "Output price per million tokens (USD)")
	cmd.Flags().StringVar(&speed, "speed", "medium", "Speed tier: slow, medium, fast")
	cmd.Flags().StringVar(&intelligence, "intelligence", "high", "Intelligence tier: high, very-high, frontier")
	cmd.Flags().BoolVar(&vision, "vision", false, "Model accepts image input")
	cmd.Flags().BoolVar(&thinking, "thinking", false, "Model supports extended thinking")
	cmd.Flags().StringSliceVar(&recommendedFor, "recommended-for", nil, "Advisory task tags (comma-separated)")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "Make this model the default")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Register the model disabled")

	return cmd
}
