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

// Package setup implements the interactive first-run wizard. It writes
// the daemon configuration and, for new installations, a starter model
// catalog.
package setup

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
)

// NewCommand creates the setup command
func NewCommand() *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactive wizard to configure Switchboard",
		Long: `Launch the setup wizard to configure:
  - The model catalog location (with a starter catalog for new installs)
  - The preference store backend (sqlite or memory)
  - The daemon auth token and where to keep it

Existing configuration files are backed up before being overwritten.

Use --accessible for plain prompts if the TUI doesn't work in your
terminal. You can also set SWITCHBOARD_ACCESSIBLE=1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accessibleMode := shouldUseAccessibleMode(accessible)

			if !accessibleMode {
				if err := validateTerminalSize(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n\n", err)
					fmt.Fprintf(cmd.ErrOrStderr(), "Tip: use --accessible for plain prompts:\n")
					fmt.Fprintf(cmd.ErrOrStderr(), "  switchboard setup --accessible\n")
					return err
				}
			}

			if shared.IsNonInteractive() && !accessibleMode {
				return fmt.Errorf("setup needs an interactive terminal; re-run with --accessible")
			}

			return runWizard(cmd.Context(), cmd.OutOrStdout(), accessibleMode)
		},
	}

	cmd.Flags().BoolVar(&accessible, "accessible", false, "Use plain prompts instead of the TUI")

	return cmd
}

// shouldUseAccessibleMode reports whether the wizard should use plain
// prompts instead of the TUI. True when the flag is set, when
// SWITCHBOARD_ACCESSIBLE=1, or when stdin is not a terminal.
func shouldUseAccessibleMode(flagValue bool) bool {
	if flagValue {
		return true
	}

	if os.Getenv("SWITCHBOARD_ACCESSIBLE") == "1" {
		return true
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}

	return false
}

// validateTerminalSize checks if the terminal is large enough for the TUI.
// Minimum size: 40 columns x 15 rows
func validateTerminalSize() error {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		// Can't determine size, assume it's okay
		return nil
	}

	const minWidth = 40
	const minHeight = 15

	if width < minWidth || height < minHeight {
		return fmt.Errorf("terminal too small (need at least %dx%d, got %dx%d)", minWidth, minHeight, width, height)
	}

	return nil
}
