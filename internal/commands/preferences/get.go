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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show a user's preferred model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := args[0]

			cfg, err := shared.LoadConfig()
			if err != nil {
				return err
			}

			prefs, err := shared.OpenStore(cfg)
			if err != nil {
				return shared.NewConfigError("failed to open preference store", err)
			}
			defer prefs.Close()

			modelID, err := prefs.PreferredModel(cmd.Context(), userID)
			if err != nil {
				var notFound *swberrors.NotFoundError
				if errors.As(err, &notFound) {
					return shared.NewNotFoundError(
						fmt.Sprintf("no preference stored for user %q. Run 'switchboard preferences set %s <model-id>' to create one", userID, userID),
						nil,
					)
				}
				return err
			}

			if shared.GetJSON() {
				return shared.EmitJSON(preferenceResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "preferences", Success: true},
					UserID:       userID,
					ModelID:      modelID,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", shared.RenderLabel(userID+":"), modelID)
			return nil
		},
	}
}
