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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/switchboard-io/switchboard/internal/cli/prompt"
	"github.com/switchboard-io/switchboard/internal/commands/completion"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
)

func newRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove a model from the catalog",
		Long: `Remove a model from the catalog.

Removal asks for confirmation unless --force is given. In
non-interactive environments (CI, piped stdin) --force is required.

Removing the default model leaves the catalog without a fallback;
users without a preference will get selection failures until a new
default is chosen.

Examples:
  # Remove a model interactively
  switchboard models remove claude-haiku-4

  # Remove without confirmation
  switchboard models remove claude-haiku-4 --force`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteModelIDs,
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

			// Find the entry up front so the confirmation can warn about
			// removing the default
			descriptors, err := w.Load(ctx)
			if err != nil {
				return shared.NewConfigError("failed to load catalog", err)
			}
			isDefault := false
			found := false
			for _, m := range descriptors {
				if m.ID == modelID {
					found = true
					isDefault = m.Default
					break
				}
			}
			if !found {
				return shared.NewNotFoundError(
					fmt.Sprintf("model %q not found. Run 'switchboard models list' to see registered models", modelID),
					nil,
				)
			}

			if !force {
				if shared.IsNonInteractive() {
					return fmt.Errorf("refusing to remove %q without confirmation; re-run with --force", modelID)
				}

				message := fmt.Sprintf("Remove model %q from the catalog?", modelID)
				if isDefault {
					message = fmt.Sprintf("Model %q is the default. Remove it anyway?", modelID)
				}

				prompter := prompt.NewSurveyPrompter(true)
				confirmed, err := prompter.Confirm(ctx, message, false)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			if err := w.Remove(ctx, modelID); err != nil {
				var nf *pkgerrors.NotFoundError
				if errors.As(err, &nf) {
					return shared.NewNotFoundError(fmt.Sprintf("model %q not found", modelID), err)
				}
				return fmt.Errorf("failed to write catalog: %w", err)
			}

			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Model %s removed", modelID)))
			if isDefault {
				fmt.Fprintln(out, shared.RenderWarn("The catalog has no default model now. Run 'switchboard models set-default <id>' to choose one."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove without confirmation")

	return cmd
}
