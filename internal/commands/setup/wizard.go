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

package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/config"
	"github.com/switchboard-io/switchboard/internal/daemon/auth"
	"github.com/switchboard-io/switchboard/internal/secrets"
)

// Token storage choices offered by the wizard.
const (
	storeKeychain = "keychain"
	storeFile     = "file"
	storeConfig   = "config"
	storeSkip     = "skip"
)

// runWizard drives the phased setup flow: overwrite check, core
// settings, token storage, then writes the catalog and config.
func runWizard(ctx context.Context, out io.Writer, accessible bool) error {
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config path: %w", err)
	}

	if _, err := os.Stat(cfgPath); err == nil {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("A configuration already exists at %s. Overwrite it?", cfgPath)).
					Description("The current file is backed up first.").
					Value(&overwrite),
			),
		).WithAccessible(accessible)
		if err := form.Run(); err != nil {
			return formError(err)
		}
		if !overwrite {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg := config.Default()
	catalogPath := cfg.Catalog.Path
	prefsBackend := cfg.Preferences.Backend

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Switchboard Setup").
				Description("Creates the daemon configuration and a starter model catalog."),
			huh.NewInput().
				Title("Catalog path").
				Description("YAML file holding the model catalog").
				Value(&catalogPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("catalog path is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Preference store").
				Description("Where per-user model pins are kept").
				Options(
					huh.NewOption("SQLite (persists across restarts)", "sqlite"),
					huh.NewOption("Memory (testing only)", "memory"),
				).
				Value(&prefsBackend),
		),
	).WithAccessible(accessible)
	if err := form.Run(); err != nil {
		return formError(err)
	}

	storage, err := chooseTokenStorage(accessible)
	if err != nil {
		return err
	}

	cfg.Catalog.Path = catalogPath
	cfg.Preferences.Backend = prefsBackend

	var token string
	if storage != storeSkip {
		token, err = auth.GenerateToken()
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		if storage == storeConfig {
			cfg.Server.Auth.Token = token
		} else {
			resolver, err := secrets.DefaultResolver()
			if err != nil {
				return err
			}
			if err := resolver.Set(ctx, "auth_token", token, storage); err != nil {
				return fmt.Errorf("failed to store token in %s backend: %w", storage, err)
			}
			cfg.Server.Auth.Token = "$secret:auth_token"
		}
	}

	expandedCatalog, err := expandHome(catalogPath)
	if err != nil {
		return err
	}
	starterWritten := false
	if _, err := os.Stat(expandedCatalog); os.IsNotExist(err) {
		if err := writeStarterCatalog(expandedCatalog); err != nil {
			return fmt.Errorf("failed to write starter catalog: %w", err)
		}
		starterWritten = true
	}

	if err := config.WriteConfig(cfg, cfgPath); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, shared.RenderOK("Configuration written to "+cfgPath))
	if starterWritten {
		fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Starter catalog written to %s (%d models)", expandedCatalog, starterModelCount)))
	} else {
		fmt.Fprintln(out, "Keeping the existing catalog at "+expandedCatalog)
	}

	switch storage {
	case storeConfig:
		fmt.Fprintln(out, shared.RenderWarn("The auth token is stored in plaintext. Move it later with 'switchboard secrets set auth_token'."))
	case storeSkip:
		fmt.Fprintln(out, "No auth token configured; the daemon accepts Unix socket clients only.")
	}

	if token != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Daemon token (clients send it as a Bearer token over TCP):")
		fmt.Fprintln(out, "  "+token)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  switchboard validate        # check the new configuration")
	fmt.Fprintln(out, "  switchboard models list     # inspect the starter catalog")
	fmt.Fprintln(out, "  switchboardd                # start the routing daemon")

	return nil
}

// chooseTokenStorage asks where the generated daemon token should live.
// Only secret backends that are actually writable on this machine are
// offered; a headless box without a keyring sees the file backend at
// most.
func chooseTokenStorage(accessible bool) (string, error) {
	var options []huh.Option[string]
	for _, name := range writableBackends() {
		switch name {
		case "keychain":
			options = append(options, huh.NewOption("System keychain (recommended)", storeKeychain))
		case "file":
			options = append(options, huh.NewOption("Encrypted file store", storeFile))
		}
	}
	options = append(options,
		huh.NewOption("Plaintext in the config file", storeConfig),
		huh.NewOption("Skip (local Unix socket access only)", storeSkip),
	)

	choice := options[0].Value

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Daemon auth token").
				Description("A token is generated for you; choose where to keep it").
				Options(options...).
				Value(&choice),
		),
	).WithAccessible(accessible)
	if err := form.Run(); err != nil {
		return "", formError(err)
	}

	return choice, nil
}

// writableBackends names the secret backends that accept writes here.
func writableBackends() []string {
	resolver, err := secrets.DefaultResolver()
	if err != nil {
		return nil
	}

	var names []string
	for _, b := range resolver.Backends() {
		if ro, ok := b.(secrets.ReadOnlyBackend); ok && ro.ReadOnly() {
			continue
		}
		names = append(names, b.Name())
	}
	return names
}

// formError maps huh errors to wizard errors.
func formError(err error) error {
	if err == huh.ErrUserAborted {
		os.Exit(130) // Standard exit code for SIGINT
	}
	return fmt.Errorf("form cancelled: %w", err)
}
