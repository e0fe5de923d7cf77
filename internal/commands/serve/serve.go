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

// Package serve implements the serve command, which runs the routing
// daemon in the foreground.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/daemon"
)

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	var (
		socketPath  string
		tcpAddr     string
		allowRemote bool
		catalogPath string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the routing daemon in the foreground",
		Long: `Serve runs the switchboardd daemon in the foreground: it loads the
catalog, opens the API listener, and answers selection requests until
interrupted. It is the same entry point the switchboardd binary uses.

Signals:
  SIGINT, SIGTERM   graceful shutdown
  SIGHUP            reload the catalog in place

Examples:
  # Serve on the default unix socket
  switchboard serve

  # Serve on loopback TCP and reload the catalog when the file changes
  switchboard serve --tcp 127.0.0.1:9090 --watch

  # Bind beyond loopback; requires auth to be configured
  switchboard serve --tcp 0.0.0.0:9090 --allow-remote`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, commit, buildDate := shared.GetVersion()
			return daemon.Run(daemon.RunOptions{
				Version:     version,
				Commit:      commit,
				BuildDate:   buildDate,
				ConfigPath:  shared.GetConfigPath(),
				SocketPath:  socketPath,
				TCPAddr:     tcpAddr,
				AllowRemote: allowRemote,
				CatalogPath: catalogPath,
				Watch:       watch,
			})
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "Unix socket path to listen on")
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP address to listen on (e.g. 127.0.0.1:9090)")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false, "Allow binding to non-loopback TCP addresses")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog path override")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the catalog when the file changes")

	return cmd
}
