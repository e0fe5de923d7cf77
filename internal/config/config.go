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

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config represents the complete Switchboard configuration.
type Config struct {
	Log           LogConfig           `yaml:"log"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Preferences   PreferencesConfig   `yaml:"preferences"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability,omitempty"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error).
	// Environment: LOG_LEVEL
	// Default: info
	Level string `yaml:"level"`

	// Format sets the output format (json, text).
	// Environment: LOG_FORMAT
	// Default: json
	Format string `yaml:"format"`

	// AddSource adds source file and line information to logs.
	// Environment: LOG_SOURCE
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// CatalogConfig configures where model descriptors are loaded from.
type CatalogConfig struct {
	// Source is the catalog backend: "file" or "sqlite".
	// Environment: SWITCHBOARD_CATALOG_SOURCE
	// Default: file
	Source string `yaml:"source"`

	// Path is the catalog location. For the file source this is a YAML file
	// or a directory; for the sqlite source it is the database path.
	// Environment: SWITCHBOARD_CATALOG_PATH
	// Default: ~/.switchboard/models.yaml
	Path string `yaml:"path"`

	// Include are glob patterns (doublestar syntax) selecting catalog files
	// when Path is a directory. Empty means "**/*.yaml" and "**/*.yml".
	Include []string `yaml:"include,omitempty"`

	// Exclude are glob patterns removing files matched by Include.
	Exclude []string `yaml:"exclude,omitempty"`

	// Watch configures automatic reload when catalog files change.
	Watch WatchConfig `yaml:"watch,omitempty"`
}

// WatchConfig configures filesystem watching for the file catalog source.
type WatchConfig struct {
	// Enabled activates the watcher. Only valid with the file source.
	// Environment: SWITCHBOARD_WATCH
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period after a filesystem event before reloading.
	// Bursts of events within the window trigger a single reload.
	// Environment: SWITCHBOARD_WATCH_DEBOUNCE
	// Default: 500ms
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// PreferencesConfig configures the user preference store.
type PreferencesConfig struct {
	// Backend is the store type: "sqlite" or "memory".
	// Environment: SWITCHBOARD_PREFERENCES_BACKEND
	// Default: sqlite
	Backend string `yaml:"backend"`

	// Path is the SQLite database path (backend=sqlite).
	// Environment: SWITCHBOARD_PREFERENCES_PATH
	// Default: <data_dir>/preferences.db
	Path string `yaml:"path,omitempty"`
}

// ServerConfig configures the routing daemon.
type ServerConfig struct {
	// Listen configures the daemon's listener.
	Listen ListenConfig `yaml:"listen,omitempty"`

	// Auth configures daemon authentication.
	Auth AuthConfig `yaml:"auth,omitempty"`

	// RateLimit configures per-client request throttling.
	RateLimit RateLimitConfig `yaml:"rate_limit,omitempty"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Environment: SWITCHBOARD_SHUTDOWN_TIMEOUT
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`

	// PIDFile is the path to the PID file. Empty means no PID file.
	// Environment: SWITCHBOARD_PID_FILE
	PIDFile string `yaml:"pid_file,omitempty"`

	// DataDir is the directory for daemon data (preference database, secrets).
	// Environment: SWITCHBOARD_DATA_DIR
	// Default: ~/.switchboard/data (or XDG_DATA_HOME/switchboard)
	DataDir string `yaml:"data_dir,omitempty"`
}

// ListenConfig configures how the daemon listens for connections.
type ListenConfig struct {
	// SocketPath is the Unix socket path (default).
	// Environment: SWITCHBOARD_SOCKET
	// Default: ~/.switchboard/switchboardd.sock (or XDG_RUNTIME_DIR/switchboard/switchboardd.sock)
	SocketPath string `yaml:"socket_path,omitempty"`

	// TCPAddr is an optional TCP address to listen on (e.g., "127.0.0.1:9090").
	// Environment: SWITCHBOARD_TCP_ADDR
	TCPAddr string `yaml:"tcp_addr,omitempty"`

	// AllowRemote must be true to bind to non-loopback TCP addresses.
	AllowRemote bool `yaml:"allow_remote"`
}

// AuthConfig configures daemon authentication.
type AuthConfig struct {
	// Enabled controls whether a Bearer token is required on TCP connections.
	Enabled bool `yaml:"enabled"`

	// Token is the expected Bearer token. May be a literal value or a
	// "$secret:key" reference resolved through the secrets backends.
	// Environment: SWITCHBOARD_AUTH_TOKEN
	Token string `yaml:"token,omitempty"`

	// AllowUnixSocket allows unauthenticated access via Unix socket.
	AllowUnixSocket bool `yaml:"allow_unix_socket"`
}

// RateLimitConfig configures per-client token-bucket throttling.
type RateLimitConfig struct {
	// Enabled activates rate limiting on the daemon API.
	Enabled bool `yaml:"enabled"`

	// RPS is the sustained request rate per client.
	// Default: 50
	RPS float64 `yaml:"rps,omitempty"`

	// Burst is the maximum burst size per client.
	// Default: 100
	Burst int `yaml:"burst,omitempty"`
}

// ObservabilityConfig configures tracing and metrics export.
type ObservabilityConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool `yaml:"enabled"`

	// ServiceName identifies this service in traces.
	ServiceName string `yaml:"service_name,omitempty"`

	// ServiceVersion is the application version.
	ServiceVersion string `yaml:"service_version,omitempty"`

	// Exporters configures trace export destinations.
	Exporters []ExporterConfig `yaml:"exporters,omitempty"`
}

// ExporterConfig defines a trace export destination.
type ExporterConfig struct {
	// Type is the exporter type: "otlp", "otlp-http", or "console".
	Type string `yaml:"type"`

	// Endpoint is the OTLP receiver address (e.g., "localhost:4317").
	Endpoint string `yaml:"endpoint,omitempty"`

	// Headers are additional headers for authentication.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Insecure disables TLS (for development only).
	Insecure bool `yaml:"insecure,omitempty"`

	// TimeoutSeconds is the export timeout in seconds.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "info",
			Format:    "json",
			AddSource: false,
		},
		Catalog: CatalogConfig{
			Source: "file",
			Path:   defaultCatalogPath(),
			Watch: WatchConfig{
				Enabled:  false,
				Debounce: 500 * time.Millisecond,
			},
		},
		Preferences: PreferencesConfig{
			Backend: "sqlite",
			Path:    "", // Resolved to DataDir/preferences.db
		},
		Server: ServerConfig{
			Listen: ListenConfig{
				SocketPath:  defaultSocketPath(),
				AllowRemote: false,
			},
			Auth: AuthConfig{
				Enabled:         true, // Secure by default
				AllowUnixSocket: true, // Convenient local development
			},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
			ShutdownTimeout: 10 * time.Second,
			PIDFile:         "", // No PID file by default
			DataDir:         defaultDataDir(),
		},
		Observability: ObservabilityConfig{
			Enabled:        false, // Opt-in
			ServiceName:    "switchboard",
			ServiceVersion: "unknown",
			Exporters:      nil, // No exporters by default
		},
	}
}

// Load loads configuration from environment variables and optionally from a YAML file.
// Environment variables take precedence over file-based configuration.
// If configPath is empty, only environment variables are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from file if path provided
	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &swberrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	// Apply defaults to any zero values (handles minimal configs)
	cfg.applyDefaults()

	// Override with environment variables
	cfg.loadFromEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, &swberrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// PreferencesPath returns the resolved preference database path.
// An empty configured path resolves to DataDir/preferences.db.
func (c *Config) PreferencesPath() string {
	if c.Preferences.Path != "" {
		return c.Preferences.Path
	}
	return filepath.Join(c.Server.DataDir, "preferences.db")
}

// applyDefaults fills in zero values with sensible defaults.
// This allows minimal configs (e.g., just a catalog path) to work without
// specifying all fields explicitly.
func (c *Config) applyDefaults() {
	defaults := Default()

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}

	// Catalog defaults
	if c.Catalog.Source == "" {
		c.Catalog.Source = defaults.Catalog.Source
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = defaults.Catalog.Path
	}
	if c.Catalog.Watch.Debounce == 0 {
		c.Catalog.Watch.Debounce = defaults.Catalog.Watch.Debounce
	}

	// Preferences defaults
	if c.Preferences.Backend == "" {
		c.Preferences.Backend = defaults.Preferences.Backend
	}

	// Server defaults
	if c.Server.Listen.SocketPath == "" {
		c.Server.Listen.SocketPath = defaults.Server.Listen.SocketPath
	}
	if c.Server.RateLimit.RPS == 0 {
		c.Server.RateLimit.RPS = defaults.Server.RateLimit.RPS
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = defaults.Server.RateLimit.Burst
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = defaults.Server.DataDir
	}

	// Observability defaults
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = defaults.Observability.ServiceName
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = defaults.Observability.ServiceVersion
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	// Expand home directory if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	// Log configuration
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.ToLower(val) == "true"
	}

	// Catalog configuration
	if val := os.Getenv("SWITCHBOARD_CATALOG_SOURCE"); val != "" {
		c.Catalog.Source = strings.ToLower(val)
	}
	if val := os.Getenv("SWITCHBOARD_CATALOG_PATH"); val != "" {
		c.Catalog.Path = val
	}
	if val := os.Getenv("SWITCHBOARD_WATCH"); val != "" {
		c.Catalog.Watch.Enabled = val == "1" || strings.ToLower(val) == "true"
	}
	if val := os.Getenv("SWITCHBOARD_WATCH_DEBOUNCE"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Catalog.Watch.Debounce = duration
		}
	}

	// Preferences configuration
	if val := os.Getenv("SWITCHBOARD_PREFERENCES_BACKEND"); val != "" {
		c.Preferences.Backend = strings.ToLower(val)
	}
	if val := os.Getenv("SWITCHBOARD_PREFERENCES_PATH"); val != "" {
		c.Preferences.Path = val
	}

	// Server configuration
	if val := os.Getenv("SWITCHBOARD_SOCKET"); val != "" {
		c.Server.Listen.SocketPath = val
	}
	if val := os.Getenv("SWITCHBOARD_TCP_ADDR"); val != "" {
		c.Server.Listen.TCPAddr = val
	}
	if val := os.Getenv("SWITCHBOARD_AUTH_TOKEN"); val != "" {
		c.Server.Auth.Token = val
	}
	if val := os.Getenv("SWITCHBOARD_RATE_LIMIT_RPS"); val != "" {
		if rps, err := strconv.ParseFloat(val, 64); err == nil {
			c.Server.RateLimit.RPS = rps
		}
	}
	if val := os.Getenv("SWITCHBOARD_RATE_LIMIT_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil {
			c.Server.RateLimit.Burst = burst
		}
	}
	if val := os.Getenv("SWITCHBOARD_SHUTDOWN_TIMEOUT"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Server.ShutdownTimeout = duration
		}
	}
	if val := os.Getenv("SWITCHBOARD_PID_FILE"); val != "" {
		c.Server.PIDFile = val
	}
	if val := os.Getenv("SWITCHBOARD_DATA_DIR"); val != "" {
		c.Server.DataDir = val
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	// Validate log configuration
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	// Validate catalog configuration
	validSources := map[string]bool{"file": true, "sqlite": true}
	if !validSources[c.Catalog.Source] {
		errs = append(errs, fmt.Sprintf("catalog.source must be one of [file, sqlite], got %q", c.Catalog.Source))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, "catalog.path is required")
	}
	if c.Catalog.Watch.Enabled && c.Catalog.Source != "file" {
		errs = append(errs, fmt.Sprintf("catalog.watch requires catalog.source \"file\", got %q", c.Catalog.Source))
	}
	if c.Catalog.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("catalog.watch.debounce must be non-negative, got %v", c.Catalog.Watch.Debounce))
	}

	// Validate preferences configuration
	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Preferences.Backend] {
		errs = append(errs, fmt.Sprintf("preferences.backend must be one of [sqlite, memory], got %q", c.Preferences.Backend))
	}

	// Validate server configuration
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout))
	}
	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			errs = append(errs, fmt.Sprintf("server.rate_limit.rps must be positive, got %v", c.Server.RateLimit.RPS))
		}
		if c.Server.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Sprintf("server.rate_limit.burst must be at least 1, got %d", c.Server.RateLimit.Burst))
		}
	}
	if c.Server.Listen.TCPAddr != "" && !c.Server.Listen.AllowRemote {
		if host, _, err := net.SplitHostPort(c.Server.Listen.TCPAddr); err == nil {
			if !isLoopback(host) {
				errs = append(errs, fmt.Sprintf("server.listen.tcp_addr %q binds a non-loopback address; set server.listen.allow_remote to true to permit this", c.Server.Listen.TCPAddr))
			}
		} else {
			errs = append(errs, fmt.Sprintf("server.listen.tcp_addr %q is not a valid host:port address", c.Server.Listen.TCPAddr))
		}
	}
	if c.Server.Auth.Enabled && c.Server.Auth.Token == "" && c.Server.Listen.TCPAddr != "" {
		errs = append(errs, "server.auth.token is required when auth is enabled with a TCP listener")
	}

	// Validate observability configuration
	validExporters := map[string]bool{"otlp": true, "otlp-http": true, "console": true}
	for i, exp := range c.Observability.Exporters {
		if !validExporters[exp.Type] {
			errs = append(errs, fmt.Sprintf("observability.exporters[%d].type must be one of [otlp, otlp-http, console], got %q", i, exp.Type))
		}
		if (exp.Type == "otlp" || exp.Type == "otlp-http") && exp.Endpoint == "" {
			errs = append(errs, fmt.Sprintf("observability.exporters[%d] (%s): endpoint is required", i, exp.Type))
		}
		if exp.TimeoutSeconds < 0 {
			errs = append(errs, fmt.Sprintf("observability.exporters[%d]: timeout_seconds must be non-negative, got %d", i, exp.TimeoutSeconds))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}

// isLoopback reports whether host names the loopback interface.
func isLoopback(host string) bool {
	if host == "localhost" || host == "" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// defaultSocketPath returns the default Unix socket path.
func defaultSocketPath() string {
	// Use XDG_RUNTIME_DIR if available (Linux)
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "switchboard", "switchboardd.sock")
	}

	// Fall back to ~/.switchboard/switchboardd.sock
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/switchboardd.sock"
	}

	return filepath.Join(homeDir, ".switchboard", "switchboardd.sock")
}

// defaultDataDir returns the default data directory.
func defaultDataDir() string {
	// Use XDG_DATA_HOME if available
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "switchboard")
	}

	// Fall back to ~/.switchboard/data
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/switchboard-data"
	}

	return filepath.Join(homeDir, ".switchboard", "data")
}

// defaultCatalogPath returns the default model catalog path.
func defaultCatalogPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/switchboard-models.yaml"
	}

	return filepath.Join(homeDir, ".switchboard", "models.yaml")
}
