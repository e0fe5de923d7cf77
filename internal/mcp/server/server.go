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

// Package server implements an MCP server that exposes model selection
// as tools for agent frontends.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/switchboard-io/switchboard/internal/catalog"
	"github.com/switchboard-io/switchboard/internal/config"
	internallog "github.com/switchboard-io/switchboard/internal/log"
	"github.com/switchboard-io/switchboard/internal/store"
	"github.com/switchboard-io/switchboard/pkg/routing"
)

// callsPerMinute caps total tool calls. Every tool here is read-only,
// so one shared bucket is enough.
const callsPerMinute = 120

// Server wraps the MCP server and provides Switchboard routing tools.
type Server struct {
	mcpServer   *server.MCPServer
	name        string
	version     string
	rateLimiter *RateLimiter
	logger      *slog.Logger

	service  *routing.Service
	registry *routing.Registry
	source   catalog.Source
	store    store.Store
}

// Config configures the MCP server.
type Config struct {
	// Name is the server name (default: "switchboard")
	Name string

	// Version is the Switchboard version
	Version string

	// LogLevel controls logging verbosity (debug, info, warn, error)
	LogLevel string

	// ConfigPath is an explicit configuration file. Empty loads the
	// default configuration plus environment overrides.
	ConfigPath string
}

// createLogger creates a logger with the specified log level.
// Writes text to stderr; stdout belongs to the MCP stdio protocol.
func createLogger(levelStr string) (*slog.Logger, error) {
	switch levelStr {
	case "debug", "info", "warn", "error":
	case "":
		levelStr = "info"
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	return internallog.New(&internallog.Config{
		Level:  levelStr,
		Format: internallog.FormatText,
		Output: os.Stderr,
	}), nil
}

// NewServer creates an MCP server wired to the configured catalog and
// preference store. It loads the catalog once at startup; agents see
// that snapshot until the process restarts.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = "switchboard"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	logger, err := createLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	registry := routing.NewRegistry(internallog.WithComponent(logger, "registry"))

	var src catalog.Source
	switch appCfg.Catalog.Source {
	case "sqlite":
		s, err := catalog.NewSQLiteSource(catalog.SQLiteConfig{
			Path: appCfg.Catalog.Path,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite catalog: %w", err)
		}
		src = s
	default:
		s, err := catalog.NewFileSource(catalog.FileConfig{
			Path:    appCfg.Catalog.Path,
			Include: appCfg.Catalog.Include,
			Exclude: appCfg.Catalog.Exclude,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create file catalog source: %w", err)
		}
		src = s
	}

	if err := catalog.Reload(context.Background(), src, registry); err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var st store.Store
	switch appCfg.Preferences.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		// SQLite creates the database file but not its directory.
		prefsPath := appCfg.PreferencesPath()
		if err := os.MkdirAll(filepath.Dir(prefsPath), 0700); err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		s, err := store.NewSQLiteStore(store.SQLiteConfig{
			Path: prefsPath,
		})
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to open preference store: %w", err)
		}
		st = s
	}

	service := routing.NewService(registry, st, internallog.WithComponent(logger, "routing"))

	s := &Server{
		mcpServer:   server.NewMCPServer(cfg.Name, cfg.Version),
		name:        cfg.Name,
		version:     cfg.Version,
		rateLimiter: NewRateLimiter(callsPerMinute),
		logger:      logger,
		service:     service,
		registry:    registry,
		source:      src,
		store:       st,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers the routing tools with the MCP server.
func (s *Server) registerTools() {
	// Tool: select_model
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "select_model",
		Description: "Select the best model for a task given hard requirements. Honors the user's stored preference when it satisfies the requirement, then the catalog default, then capability ranking.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User whose stored preference should be considered (optional)",
				},
				"needs_vision": map[string]interface{}{
					"type":        "boolean",
					"description": "Require image input support",
				},
				"needs_thinking": map[string]interface{}{
					"type":        "boolean",
					"description": "Require extended reasoning support",
				},
				"min_context": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum context window in tokens",
				},
				"max_cost_input": map[string]interface{}{
					"type":        "number",
					"description": "Maximum input price in USD per million tokens. Omit for no ceiling; 0 selects free models only.",
				},
			},
		},
	}, s.handleSelectModel)

	// Tool: list_models
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_models",
		Description: "List the models in the current catalog snapshot with capabilities, tiers, and pricing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"enabled_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only return models eligible for selection (default: false)",
				},
			},
		},
	}, s.handleListModels)

	// Tool: model_info
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "model_info",
		Description: "Return the full descriptor for one model by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"model_id": map[string]interface{}{
					"type":        "string",
					"description": "Model identifier (from list_models)",
				},
			},
			Required: []string{"model_id"},
		},
	}, s.handleModelInfo)
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server",
		slog.String("name", s.name),
		slog.String("version", s.version),
		slog.Uint64("snapshot_version", s.registry.Version()),
	)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}

// Close releases the catalog source and preference store.
func (s *Server) Close() error {
	s.logger.Info("shutting down MCP server")

	var firstErr error
	if s.source != nil {
		if err := s.source.Close(); err != nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// errorResponse creates an error tool result.
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// textResponse creates a success tool result with text content.
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
