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
	"github.com/spf13/cobra"
)

// NewCommand creates the models command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the model catalog",
		Long: `Manage the model catalog the router selects from.

Each catalog entry describes one callable model: capabilities (vision,
thinking), context window, pricing, and routing flags (enabled, default).
Mutations write back to the configured catalog source; a running daemon
picks them up on its next reload.

Examples:
  # List all registered models
  switchboard models list

  # Show one model in full
  switchboard models info claude-sonnet-4-5

  # Register a model
  switchboard models add claude-haiku-4 --provider anthropic \
    --context-window 200000 --input-price 0.80 --output-price 4.00 \
    --speed fast --intelligence high

  # Filter the list with an expression
  switchboard models list --where 'vision && cost_input < 5'

  # Disable a model without removing it
  switchboard models disable claude-opus-4

  # Choose the fallback model
  switchboard models set-default claude-sonnet-4-5`,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRemoveCmd())
	cmd.AddCommand(newEnableCmd())
	cmd.AddCommand(newDisableCmd())
	cmd.AddCommand(newSetDefaultCmd())

	// Default to list if no subcommand specified
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return newListCmd().RunE(cmd, args)
	}

	return cmd
}
