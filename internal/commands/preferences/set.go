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

package preferences

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/completion"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <user-id> <model-id>",
		Short: "Pin a model for a user",
		Long: `Set stores a model preference for a user. The model must exist in the
catalog. Pinning a disabled model is allowed; selection skips the pin
until the model is enabled again.`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			// The first argument is a free-form user id
			if len(args) == 1 {
				return completion.CompleteModelIDs(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, modelID := args[0], args[1]

			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}

			src, err := shared.OpenSource(cfg)
			if err != nil {
				return shared.NewConfigError("failed to open catalog source", err)
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

			prefs, err := shared.OpenStore(cfg)
			if err != nil {
				return shared.NewConfigError("failed to open preference store", err)
			}
			defer prefs.Close()

			if err := prefs.Set(cmd.Context(), userID, modelID); err != nil {
				return fmt.Errorf("failed to store preference: %w", err)
			}

			if shared.GetJSON() {
				return shared.EmitJSON(preferenceResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "preferences", Success: true},
					UserID:       userID,
					ModelID:      modelID,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Preference for %s set to %s", userID, modelID)))
			if !model.Enabled {
				fmt.Fprintln(out, shared.RenderWarn(fmt.Sprintf("Model %q is disabled; selection skips this preference until you run 'switchboard models enable %s'.", modelID, modelID)))
			}
			if cfg.Preferences.Backend == "memory" {
				fmt.Fprintln(out, shared.RenderWarn("The memory preference backend does not persist; this preference is gone when the command exits. Set 'preferences.backend: sqlite' to keep it."))
			}
			return nil
		},
	}
}
