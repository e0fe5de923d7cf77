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

// Package mcp implements the mcp command, which serves model selection
// over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
	"github.com/switchboard-io/switchboard/internal/mcp/server"
)

// NewCommand creates the mcp command.
func NewCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Switchboard MCP server",
		Long: `Start the Switchboard MCP (Model Context Protocol) server.

The MCP server exposes model selection as tools that AI coding assistants
(Claude Code, Cursor, Gemini CLI) can call to pick a model for a task,
browse the catalog, and inspect a single model.

The server runs in stdio mode, which is suitable for integration with
AI assistants via their MCP configuration.

Configuration example for Claude Code (~/.config/claude/config.json):
  {
    "mcpServers": {
      "switchboard": {
        "command": "switchboard",
        "args": ["mcp"]
      }
    }
  }

The server exposes these tools:
  - select_model: Pick the best model for a task's hard requirements
  - list_models: List the catalog with capabilities, tiers, and pricing
  - model_info: Show the full descriptor for one model

The server reads the same configuration and catalog as the daemon but
serves from its own in-process snapshot; it does not need a running
daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(logLevel)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logging verbosity (debug, info, warn, error)")

	return cmd
}

func runMCP(logLevel string) error {
	versionStr, _, _ := shared.GetVersion()

	srv, err := server.NewServer(server.Config{
		Name:       "switchboard",
		Version:    versionStr,
		LogLevel:   logLevel,
		ConfigPath: shared.ResolveConfigPath(),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// The signal path and the normal return path both release the
	// server; Close must run exactly once.
	var closeOnce sync.Once
	closeServer := func() {
		closeOnce.Do(func() {
			if err := srv.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			}
		})
	}
	defer closeServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, shutting down gracefully...")
		closeServer()
		cancel()
	}()

	// Blocks until the client closes stdin or a signal arrives
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
