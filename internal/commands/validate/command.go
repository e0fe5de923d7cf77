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

// Package validate implements the validate command, which checks the
// configuration and catalog without starting the daemon.
package validate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/config"
	"github.com/switchboard-io/switchboard/internal/secrets"
	"github.com/switchboard-io/switchboard/pkg/routing"
	pkgsecrets "github.com/switchboard-io/switchboard/pkg/secrets"
	"github.com/switchboard-io/switchboard/pkg/security"
)

// NewCommand creates the validate command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and catalog",
		Long: `Validate checks that the configuration parses, that the catalog loads
into a consistent snapshot, and that the daemon could start from them.
Nothing is started and nothing is written.

Checks:
  - configuration syntax, key values, and file permissions
  - auth token hygiene (plaintext credentials, unresolvable references)
  - catalog syntax, per-model fields, duplicate ids
  - default-model consistency

Errors exit with code 2. Warnings are non-blocking and exit 0.

Examples:
  # Validate the default configuration
  switchboard validate

  # Validate a candidate config before deploying it
  switchboard validate --config /etc/switchboard/config.yaml

  # Machine-readable report
  switchboard validate --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runValidate,
	}
	return cmd
}

type catalogReport struct {
	Models    int    `json:"models"`
	Enabled   int    `json:"enabled"`
	DefaultID string `json:"default_id,omitempty"`
}

type validateResponse struct {
	shared.JSONResponse
	ConfigFile string         `json:"config_file,omitempty"`
	Catalog    *catalogReport `json:"catalog,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	useJSON := shared.GetJSON()

	var validationErrors []shared.JSONError
	var warnings []string

	// Step 1: load and validate the configuration.
	cfgPath := shared.ResolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		validationErrors = append(validationErrors, shared.JSONError{
			Code:       shared.ErrorCodeInvalidConfig,
			Message:    err.Error(),
			Suggestion: "Fix the reported keys in the config file",
		})
		return report(cmd, useJSON, cfgPath, nil, validationErrors, warnings)
	}

	// Step 2: permission hygiene on the files the daemon reads.
	for _, p := range []string{cfgPath, cfg.Catalog.Path, cfg.Server.DataDir} {
		if p == "" {
			continue
		}
		warnings = append(warnings, security.CheckConfigPermissions(p)...)
	}

	// Step 3: auth token hygiene.
	authWarnings, authErrors := checkAuthToken(cmd, cfg)
	warnings = append(warnings, authWarnings...)
	validationErrors = append(validationErrors, authErrors...)

	// Step 4: load the catalog and build a snapshot the way a reload
	// would, so validate rejects exactly what the daemon would reject.
	var catReport *catalogReport
	src, err := shared.OpenSource(cfg)
	if err != nil {
		validationErrors = append(validationErrors, shared.JSONError{
			Code:       shared.ErrorCodeInvalidCatalog,
			Message:    err.Error(),
			Suggestion: "Check catalog.source and catalog.path in the config",
		})
	} else {
		defer src.Close()
		models, err := src.Load(cmd.Context())
		if err != nil {
			validationErrors = append(validationErrors, shared.JSONError{
				Code:       shared.ErrorCodeInvalidCatalog,
				Message:    err.Error(),
				Suggestion: "Fix the reported catalog entries",
			})
		} else if snap, err := routing.NewSnapshot(models); err != nil {
			validationErrors = append(validationErrors, shared.JSONError{
				Code:       shared.ErrorCodeInvalidCatalog,
				Message:    err.Error(),
				Suggestion: "Fix the reported model descriptor",
			})
		} else {
			catReport = &catalogReport{
				Models:    snap.Len(),
				Enabled:   len(snap.Enabled()),
				DefaultID: snap.DefaultID(),
			}
			warnings = append(warnings, catalogWarnings(snap)...)
		}
	}

	return report(cmd, useJSON, cfgPath, catReport, validationErrors, warnings)
}

// checkAuthToken flags plaintext credentials in the config and secret
// references that do not resolve. A daemon started from this config
// would fail auth setup on the latter, so it is an error, not a
// warning.
func checkAuthToken(cmd *cobra.Command, cfg *config.Config) ([]string, []shared.JSONError) {
	token := cfg.Server.Auth.Token
	if !cfg.Server.Auth.Enabled || token == "" {
		return nil, nil
	}

	if secrets.LooksLikeCredential(token) {
		return []string{fmt.Sprintf(
			"auth token %s is stored in plaintext; run 'switchboard secrets set auth_token' and reference it as $secret:auth_token",
			pkgsecrets.MaskValue(token),
		)}, nil
	}

	if key, ok := secrets.ParseReference(token); ok {
		resolver, err := secrets.DefaultResolver()
		if err != nil {
			return nil, []shared.JSONError{{
				Code:    shared.ErrorCodeSecretUnresolved,
				Message: fmt.Sprintf("cannot build secret resolver: %v", err),
			}}
		}
		if _, err := resolver.Get(cmd.Context(), key); err != nil {
			return nil, []shared.JSONError{{
				Code:       shared.ErrorCodeSecretUnresolved,
				Message:    fmt.Sprintf("auth token reference %q does not resolve: %v", key, err),
				Suggestion: fmt.Sprintf("Run 'switchboard secrets set %s' to store the token", key),
			}}
		}
	}
	return nil, nil
}

// catalogWarnings reports non-blocking catalog conditions an operator
// should know about before the daemon serves from this snapshot.
func catalogWarnings(snap *routing.Snapshot) []string {
	var warnings []string
	if snap.Len() == 0 {
		warnings = append(warnings, "catalog is empty; every selection will fail until models are added")
		return warnings
	}
	if len(snap.Enabled()) == 0 {
		warnings = append(warnings, "all models are disabled; every selection will fail until one is enabled")
		return warnings
	}
	if snap.DefaultID() == "" {
		warnings = append(warnings, "no enabled default model; selection falls back to tier ranking")
	}
	if rep := snap.Repair(); rep != nil {
		warnings = append(warnings, fmt.Sprintf(
			"conflicting default flags: %s kept, %s cleared; run 'switchboard models set-default %s' to make the choice explicit",
			rep.Kept, strings.Join(rep.Cleared, ", "), rep.Kept,
		))
	}
	return warnings
}

func report(cmd *cobra.Command, useJSON bool, cfgPath string, catalog *catalogReport, validationErrors []shared.JSONError, warnings []string) error {
	if len(validationErrors) > 0 {
		if useJSON {
			shared.EmitJSONError("validate", validationErrors)
			return &shared.ExitError{Code: shared.ExitInvalidConfig}
		}
		for _, ve := range validationErrors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", ve.Message)
			if ve.Suggestion != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "  Suggestion: %s\n", ve.Suggestion)
			}
		}
		return &shared.ExitError{Code: shared.ExitInvalidConfig, Message: "validation failed"}
	}

	if useJSON {
		return shared.EmitJSON(validateResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "validate", Success: true},
			ConfigFile:   cfgPath,
			Catalog:      catalog,
			Warnings:     warnings,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Validation Results:")
	if cfgPath != "" {
		fmt.Fprintf(out, "  [OK] Configuration valid (%s)\n", cfgPath)
	} else {
		fmt.Fprintln(out, "  [OK] Configuration valid (defaults, no config file)")
	}
	if catalog != nil {
		fmt.Fprintf(out, "  [OK] Catalog valid (%d models, %d enabled)\n", catalog.Models, catalog.Enabled)
		if catalog.DefaultID != "" {
			fmt.Fprintf(out, "  [OK] Default model: %s\n", catalog.DefaultID)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			fmt.Fprintf(out, "  %s\n", shared.RenderWarn(w))
		}
		fmt.Fprintln(out, "\nNote: warnings are non-blocking but should be reviewed.")
	}

	return nil
}
