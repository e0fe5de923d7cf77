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
	"github.com/switchboard-io/switchboard/internal/commands/completion"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	pkgerrors "github.com/switchboard-io/switchboard/pkg/errors"
)

func newSetDefaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-default <model>",
		Short: "Make a model the default selection fallback",
		Long: `Mark one model as the default. The default flag moves off any
previous holder in the same write; at most one model carries it.

The default model is chosen for users without a preference when no
capability requirements are given.

Examples:
  switchboard models set-default claude-sonnet-4-5`,
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

			if err := w.SetDefault(cmd.Context(), modelID); err != nil {
				var nf *pkgerrors.NotFoundError
				if errors.As(err, &nf) {
					return shared.NewNotFoundError(
						fmt.Sprintf("model %q not found. Run 'switchboard models list' to see registered models", modelID),
						err,
					)
				}
				return fmt.Errorf("failed to write catalog: %w", err)
			}

			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Model %s is now the default", modelID)))

			// A disabled default never gets selected; say so here rather
			// than letting the first failed selection surprise the operator
			descriptors, err := w.Load(cmd.Context())
			if err == nil {
				for _, m := range descriptors {
					if m.ID == modelID && !m.Enabled {
						fmt.Fprintln(out, shared.RenderWarn(fmt.Sprintf("Model %s is disabled; run 'switchboard models enable %s' for the default to take effect.", modelID, modelID)))
					}
				}
			}
			return nil
		},
	}

	return cmd
}
