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

// Package secrets implements the secrets command group for managing
// stored credentials like the daemon auth token.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/switchboard-io/switchboard/internal/cli/prompt"
	"github.com/switchboard-io/switchboard/internal/commands/completion"
	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/secrets"
	pkgsecrets "github.com/switchboard-io/switchboard/pkg/secrets"
)

// NewCommand creates the secrets command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage stored secrets (auth tokens, credentials)",
		Long: `Manage secrets referenced from the configuration as "$secret:<key>".

Secrets resolve through a tiered backend chain:
  1. Environment variables (SWITCHBOARD_SECRET_<KEY>, read-only)
  2. System keychain (macOS Keychain, Linux Secret Service)
  3. Encrypted file (fallback for headless servers)

Examples:
  switchboard secrets set auth_token
  switchboard secrets get auth_token
  switchboard secrets list
  switchboard secrets delete auth_token`,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newSetCmd() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret securely",
		Long: `Store a secret in the highest-priority writable backend, or in the
backend named by --backend.

The value can be provided via:
  - Interactive prompt (hidden input, default)
  - Standard input: echo "value" | switchboard secrets set <key>

Examples:
  switchboard secrets set auth_token
  switchboard secrets set auth_token --backend file
  openssl rand -hex 32 | switchboard secrets set auth_token`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSecretKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if err := validateSecretKey(key); err != nil {
				return err
			}

			value, err := readSecretValue()
			if err != nil {
				return fmt.Errorf("failed to read secret value: %w", err)
			}
			if value == "" {
				return errors.New("secret value cannot be empty")
			}

			resolver, err := secrets.DefaultResolver()
			if err != nil {
				return err
			}

			if err := resolver.Set(cmd.Context(), key, value, backend); err != nil {
				if errors.Is(err, secrets.ErrBackendUnavailable) {
					return fmt.Errorf("%w\n\nTry:\n  1. Pick a different backend with --backend\n  2. Export the value instead: SWITCHBOARD_SECRET_%s=<value>",
						err, normalizeEnvKey(key))
				}
				return fmt.Errorf("failed to set secret: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Secret %q stored in %s backend", key, backendUsed(resolver, backend))))
			fmt.Fprintf(out, "Reference it from config as $secret:%s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Target backend (keychain, file)")
	_ = cmd.RegisterFlagCompletionFunc("backend", completion.CompleteBackendNames)

	return cmd
}

func newGetCmd() *cobra.Command {
	var unmask bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve a secret value",
		Long: `Retrieve a secret from the first backend that holds it.

The value is masked by default. Use --unmask to print it verbatim,
which is what scripts piping the value onward want.

Examples:
  switchboard secrets get auth_token
  switchboard secrets get auth_token --unmask`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSecretKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			resolver, err := secrets.DefaultResolver()
			if err != nil {
				return err
			}

			value, err := resolver.Get(cmd.Context(), key)
			if err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					return shared.NewNotFoundError(
						fmt.Sprintf("secret %q not found. Set it with 'switchboard secrets set %s'", key, key),
						nil,
					)
				}
				return fmt.Errorf("failed to get secret: %w", err)
			}

			out := cmd.OutOrStdout()
			if unmask {
				fmt.Fprintln(out, value)
				return nil
			}
			fmt.Fprintf(out, "%s (use --unmask to show the full value)\n", pkgsecrets.MaskValue(value))
			return nil
		},
	}

	cmd.Flags().BoolVar(&unmask, "unmask", false, "Show the full value")

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List secret keys",
		Long: `List secret keys across all backends. Values are never shown; when a
key exists in several backends the highest-priority one is listed.

Examples:
  switchboard secrets list
  switchboard secrets list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := secrets.DefaultResolver()
			if err != nil {
				return err
			}

			metadata, err := resolver.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list secrets: %w", err)
			}

			out := cmd.OutOrStdout()

			if shared.GetJSON() {
				type secretRow struct {
					Key      string `json:"key"`
					Backend  string `json:"backend"`
					ReadOnly bool   `json:"read_only"`
				}
				rows := make([]secretRow, 0, len(metadata))
				for _, meta := range metadata {
					rows = append(rows, secretRow{Key: meta.Key, Backend: meta.Backend, ReadOnly: meta.ReadOnly})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"secrets": rows})
			}

			if len(metadata) == 0 {
				fmt.Fprintln(out, "No secrets stored.")
				fmt.Fprintln(out, "Run 'switchboard secrets set <key>' to store one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tBACKEND\tREAD-ONLY")
			for _, meta := range metadata {
				readOnly := "no"
				if meta.ReadOnly {
					readOnly = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", meta.Key, meta.Backend, readOnly)
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var (
		backend string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret",
		Long: `Remove a secret from every writable backend that holds it, or from the
backend named by --backend. Environment-variable secrets are read-only
and cannot be deleted here.

Examples:
  switchboard secrets delete auth_token
  switchboard secrets delete auth_token --backend keychain
  switchboard secrets delete auth_token --force`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteSecretKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if !force {
				if shared.IsNonInteractive() {
					return fmt.Errorf("refusing to delete secret %q without confirmation; re-run with --force", key)
				}
				prompter := prompt.NewSurveyPrompter(true)
				confirmed, err := prompter.Confirm(cmd.Context(), fmt.Sprintf("Delete secret %q?", key), false)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			resolver, err := secrets.DefaultResolver()
			if err != nil {
				return err
			}

			if err := resolver.Delete(cmd.Context(), key, backend); err != nil {
				if errors.Is(err, secrets.ErrSecretNotFound) {
					return shared.NewNotFoundError(fmt.Sprintf("secret %q not found", key), nil)
				}
				if errors.Is(err, secrets.ErrReadOnlyBackend) {
					return errors.New("cannot delete from a read-only backend; unset the environment variable instead")
				}
				return fmt.Errorf("failed to delete secret: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Secret %q deleted", key)))
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Target backend (keychain, file)")
	_ = cmd.RegisterFlagCompletionFunc("backend", completion.CompleteBackendNames)
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

// backendUsed names the backend an unqualified Set wrote to.
func backendUsed(resolver *secrets.Resolver, requested string) string {
	if requested != "" {
		return requested
	}
	for _, b := range resolver.Backends() {
		if ro, ok := b.(secrets.ReadOnlyBackend); ok && ro.ReadOnly() {
			continue
		}
		return b.Name()
	}
	return "unknown"
}

// readSecretValue reads the value from a pipe when stdin is one, and
// prompts with hidden input otherwise.
func readSecretValue() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}

	if (stat.Mode() & os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}

	fmt.Print("Enter secret value (hidden): ")
	byteValue, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	return string(byteValue), nil
}

// validateSecretKey rejects keys that cannot round-trip through
// "$secret:" references and environment variables.
func validateSecretKey(key string) error {
	if key == "" {
		return errors.New("secret key cannot be empty")
	}
	if strings.ContainsAny(key, " \t") {
		return errors.New("secret key cannot contain whitespace")
	}
	if strings.Contains(key, "\\") {
		return errors.New("secret key should use forward slashes (/), not backslashes (\\)")
	}
	return nil
}

// normalizeEnvKey converts a secret key to its environment variable
// suffix: "auth_token" -> "AUTH_TOKEN".
func normalizeEnvKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("/", "_", "-", "_").Replace(key))
}
