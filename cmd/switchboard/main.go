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

package main

import (
	"github.com/switchboard-io/switchboard/internal/cli"
	"github.com/switchboard-io/switchboard/internal/commands/completion"
	"github.com/switchboard-io/switchboard/internal/commands/mcp"
	"github.com/switchboard-io/switchboard/internal/commands/models"
	"github.com/switchboard-io/switchboard/internal/commands/preferences"
	"github.com/switchboard-io/switchboard/internal/commands/secrets"
	"github.com/switchboard-io/switchboard/internal/commands/selectcmd"
	"github.com/switchboard-io/switchboard/internal/commands/serve"
	"github.com/switchboard-io/switchboard/internal/commands/setup"
	"github.com/switchboard-io/switchboard/internal/commands/validate"
	versioncmd "github.com/switchboard-io/switchboard/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version information from build-time ldflags
	cli.SetVersion(version, commit, buildDate)

	// Create root command and add subcommands
	rootCmd := cli.NewRootCommand()

	// Selection and catalog commands
	rootCmd.AddCommand(selectcmd.NewCommand())
	rootCmd.AddCommand(models.NewCommand())
	rootCmd.AddCommand(preferences.NewCommand())

	// Daemon and integration surfaces
	rootCmd.AddCommand(serve.NewCommand())
	rootCmd.AddCommand(mcp.NewCommand())

	// Configuration and security
	rootCmd.AddCommand(setup.NewCommand())
	rootCmd.AddCommand(validate.NewCommand())
	rootCmd.AddCommand(secrets.NewCommand())

	// Utility commands
	rootCmd.AddCommand(completion.NewCommand())
	rootCmd.AddCommand(versioncmd.NewCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
