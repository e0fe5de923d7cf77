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

func newEnableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enable <model>",
		Short: "Enable a model for routing",
		Long: `Enable a model so selection considers it again.

Examples:
  switchboard models enable claude-opus-4`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setEnabled(cmd, args[0], true)
		},
	}
	return cmd
}

func newDisableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable <model>",
		Short: "Disable a model without removing it",
		Long: `Disable a model so selection skips it. The catalog entry stays in
place and can be re-enabled later.

Disabling the default model leaves users without a preference unable
to select until another default is chosen or the model is re-enabled.

Examples:
  switchboard models disable claude-opus-4`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setEnabled(cmd, args[0], false)
		},
	}
	return cmd
}

func setEnabled(cmd *cobra.Command, modelID string, enabled bool) error {
	out := cmd.OutOrStdout()

	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	w, err := shared.OpenWriter(cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.SetEnabled(cmd.Context(), modelID, enabled); err != nil {
		var nf *pkgerrors.NotFoundError
		if errors.As(err, &nf) {
			return shared.NewNotFoundError(
				fmt.Sprintf("model %q not found. Run 'switchboard models list' to see registered models", modelID),
				err,
			)
		}
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	if enabled {
		fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Model %s enabled", modelID)))
	} else {
		fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Model %s disabled", modelID)))
	}
	return nil
}
