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

// Package preferences implements the preferences command group for
// managing per-user model preferences.
package preferences

import (
	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
)

// NewCommand creates the preferences command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Manage per-user model preferences",
		Long: `Preferences pin a model for a user. Selection honors the pin whenever
the pinned model satisfies the request's constraints, and falls back to
the catalog default (then ranking) when it does not.

Examples:
  # Pin a model for a user
  switchboard preferences set alice claude-haiku-4

  # Show a user's pin
  switchboard preferences get alice

  # Remove the pin
  switchboard preferences clear alice`,
	}

	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

type preferenceResponse struct {
	shared.JSONResponse
	UserID  string `json:"user_id"`
	ModelID string `json:"model_id,omitempty"`
}
