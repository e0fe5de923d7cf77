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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/switchboard-io/switchboard/internal/cli/format"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/jq"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

// modelRow represents a catalog entry for display purposes
type modelRow struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"display_name,omitempty"`
	Provider         string   `json:"provider"`
	SpeedTier        string   `json:"speed"`
	IntelligenceTier string   `json:"intelligence"`
	ContextWindow    int      `json:"context_window"`
	MaxOutput        int      `json:"max_output"`
	CostInput        float64  `json:"cost_input"`
	CostOutput       float64  `json:"cost_output"`
	Vision           bool     `json:"vision"`
	Thinking         bool     `json:"thinking"`
	RecommendedFor   []string `json:"recommended_for,omitempty"`
	Enabled          bool     `json:"enabled"`
	Default          bool     `json:"default"`
}

func newModelRow(m routing.ModelDescriptor) modelRow {
	return modelRow{
		ID:               m.ID,
		DisplayName:      m.DisplayName,
		Provider:         m.Provider,
		SpeedTier:        string(m.SpeedTier),
		IntelligenceTier: string(m.IntelligenceTier),
		ContextWindow:    m.ContextWindow,
		MaxOutput:        m.MaxOutput,
		CostInput:        m.InputPricePerMillion,
		CostOutput:       m.OutputPricePerMillion,
		Vision:           m.SupportsVision,
		Thinking:         m.SupportsThinking,
		RecommendedFor:   m.RecommendedFor,
		Enabled:          m.Enabled,
		Default:          m.Default,
	}
}

func newListCmd() *cobra.Command {
	var (
		enabledOnly bool
		jqFilter    string
		whereExpr   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered models",
		Long: `List the models in the catalog.

Models print in catalog order, which is also the order selection
tie-breaks follow. Use --enabled to hide disabled entries, --where to
filter rows with a boolean expression over descriptor fields, and --jq
to post-process the JSON output with a jq query.

Filter fields: id, provider, speed, intelligence, context_window,
max_output, cost_input, cost_output, vision, thinking, enabled, default.

Examples:
  # Cheap models with vision support
  switchboard models list --where 'vision && cost_input < 1'

  # Just the ids
  switchboard models list --jq '.[].id'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

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

			rows := make([]modelRow, 0, len(descriptors))
			for _, m := range descriptors {
				if enabledOnly && !m.Enabled {
					continue
				}
				rows = append(rows, newModelRow(m))
			}

			if whereExpr != "" {
				rows, err = filterRows(rows, whereExpr)
				if err != nil {
					return err
				}
			}

			// A jq filter operates on the JSON form, including an empty list
			if jqFilter != "" {
				return emitFiltered(cmd.Context(), out, rows, jqFilter)
			}

			useJSON := shared.GetJSON()

			if len(rows) == 0 {
				if useJSON {
					fmt.Fprintln(out, `{"models":[]}`)
					return nil
				}
				if enabledOnly || whereExpr != "" {
					fmt.Fprintln(out, "No models match the filter.")
				} else {
					fmt.Fprintln(out, "No models registered.")
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Run 'switchboard models add <id>' to register a model, or 'switchboard setup' for a starter catalog.")
				}
				return nil
			}

			if useJSON {
				result := map[string][]modelRow{"models": rows}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			// Table output
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPROVIDER\tSPEED\tINTELLIGENCE\tCONTEXT\tINPUT\tFLAGS")
			for _, m := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					m.ID,
					valueOrDash(m.Provider),
					valueOrDash(m.SpeedTier),
					valueOrDash(m.IntelligenceTier),
					contextCell(m.ContextWindow),
					format.FormatPrice(m.CostInput),
					flagsCell(m),
				)
			}
			w.Flush()

			return nil
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "Show only enabled models")
	cmd.Flags().StringVar(&jqFilter, "jq", "", "Filter JSON output with a jq expression")
	cmd.Flags().StringVar(&whereExpr, "where", "", "Filter rows with a boolean expression")

	return cmd
}

// emitFiltered runs a jq query over the rows and prints the result as JSON.
func emitFiltered(ctx context.Context, out io.Writer, rows []modelRow, query string) error {
	// Round-trip through JSON so the query sees plain maps and slices
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	executor := jq.NewExecutor(jq.DefaultTimeout)
	result, err := executor.Execute(ctx, query, data)
	if err != nil {
		return fmt.Errorf("jq filter failed: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func contextCell(tokens int) string {
	if tokens <= 0 {
		return "-"
	}
	return format.FormatTokens(tokens)
}

// flagsCell summarizes capability and routing flags in one column.
func flagsCell(m modelRow) string {
	var flags []string
	if m.Vision {
		flags = append(flags, "vision")
	}
	if m.Thinking {
		flags = append(flags, "thinking")
	}
	if m.Default {
		flags = append(flags, "default")
	}
	if !m.Enabled {
		flags = append(flags, "disabled")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
