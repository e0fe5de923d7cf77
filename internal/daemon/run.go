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

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/switchboard-io/switchboard/internal/config"
	"github.com/switchboard-io/switchboard/internal/log"
)

// RunOptions configures daemon execution.
type RunOptions struct {
	Version   string
	Commit    string
	BuildDate string

	// Config overrides
	ConfigPath  string
	SocketPath  string
	TCPAddr     string
	AllowRemote bool
	CatalogPath string
	Watch       bool
}

// Run starts the daemon and blocks until shutdown. This is the main
// entry point for daemon execution, used by both switchboardd and
// `switchboard serve`. SIGINT and SIGTERM trigger graceful shutdown;
// SIGHUP reloads the catalog in place.
func Run(opts RunOptions) error {
	// Initialize structured logging from environment
	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	// Load daemon configuration. Without an explicit path the default
	// config file applies when it exists, so a bare `switchboardd`
	// behaves like `switchboardd --config ~/.config/switchboard/config.yaml`.
	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		if p, err := config.ConfigPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				cfgPath = p
			}
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply overrides from options
	if opts.SocketPath != "" {
		cfg.Server.Listen.SocketPath = opts.SocketPath
	}
	if opts.TCPAddr != "" {
		cfg.Server.Listen.TCPAddr = opts.TCPAddr
	}
	if opts.AllowRemote {
		cfg.Server.Listen.AllowRemote = true
		logger.Warn("--allow-remote is enabled. The daemon will accept connections from any network address. Ensure authentication is configured before exposing it.")
	}
	if opts.CatalogPath != "" {
		cfg.Catalog.Path = opts.CatalogPath
	}
	if opts.Watch {
		cfg.Catalog.Watch.Enabled = true
	}

	// Create daemon instance
	d, err := New(cfg, Options{
		Version:   opts.Version,
		Commit:    opts.Commit,
		BuildDate: opts.BuildDate,
	})
	if err != nil {
		logger.Error("Failed to create daemon", slog.Any("error", err))
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	// Setup signal handling for graceful shutdown and catalog reload
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start daemon
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Start(ctx)
	}()

	// Wait for shutdown signal, reload signal, or error
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading catalog")
				if err := d.reload(ctx, "sighup"); err != nil {
					logger.Error("catalog reload failed", slog.Any("error", err))
				}
				continue
			}
			fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
			cancel()
			if err := d.Shutdown(context.Background()); err != nil {
				logger.Error("Error during shutdown", slog.Any("error", err))
				return fmt.Errorf("shutdown error: %w", err)
			}
			return nil
		case err := <-errCh:
			if err != nil {
				logger.Error("Daemon error", slog.Any("error", err))
				return fmt.Errorf("daemon error: %w", err)
			}
			return nil
		}
	}
}
