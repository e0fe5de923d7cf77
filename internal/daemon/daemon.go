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
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/switchboard-io/switchboard/internal/catalog"
	"github.com/switchboard-io/switchboard/internal/config"
	"github.com/switchboard-io/switchboard/internal/daemon/api"
	"github.com/switchboard-io/switchboard/internal/daemon/auth"
	"github.com/switchboard-io/switchboard/internal/daemon/listener"
	internallog "github.com/switchboard-io/switchboard/internal/log"
	"github.com/switchboard-io/switchboard/internal/secrets"
	"github.com/switchboard-io/switchboard/internal/store"
	"github.com/switchboard-io/switchboard/internal/tracing"
	"github.com/switchboard-io/switchboard/pkg/routing"
	"github.com/switchboard-io/switchboard/pkg/security"
)

const (
	// limiterCleanupInterval is how often idle rate limiter entries are
	// swept; limiterIdleAge is how long a client may be idle before its
	// entry is dropped.
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleAge         = 30 * time.Minute

	// watcherReloadsPerMinute caps watcher-triggered catalog reloads.
	watcherReloadsPerMinute = 10
)

// Options contains daemon options set at build time.
type Options struct {
	Version   string
	Commit    string
	BuildDate string
}

// Daemon is the main switchboardd daemon.
type Daemon struct {
	cfg     *config.Config
	opts    Options
	logger  *slog.Logger
	server  *http.Server
	ln      net.Listener
	pidFile string

	registry *routing.Registry
	service  *routing.Service
	source   catalog.Source
	store    store.Store
	watcher  *catalog.Watcher
	authMw   *auth.Middleware
	provider *tracing.Provider
	metrics  *tracing.MetricsCollector

	mu      sync.Mutex
	started bool
}

// New creates a new daemon instance.
func New(cfg *config.Config, opts Options) (*Daemon, error) {
	base := internallog.New(internallog.FromEnv())
	logger := internallog.WithComponent(base, "daemon")

	registry := routing.NewRegistry(internallog.WithComponent(base, "registry"))

	// Create catalog source based on configuration
	var (
		src     catalog.Source
		fileSrc *catalog.FileSource
	)
	switch cfg.Catalog.Source {
	case "sqlite":
		s, err := catalog.NewSQLiteSource(catalog.SQLiteConfig{
			Path: cfg.Catalog.Path,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite catalog: %w", err)
		}
		src = s
	default:
		s, err := catalog.NewFileSource(catalog.FileConfig{
			Path:    cfg.Catalog.Path,
			Include: cfg.Catalog.Include,
			Exclude: cfg.Catalog.Exclude,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create file catalog source: %w", err)
		}
		src = s
		fileSrc = s
	}

	// Create preference store based on configuration
	var st store.Store
	switch cfg.Preferences.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		// SQLite creates the database file but not its directory.
		prefsPath := cfg.PreferencesPath()
		if err := os.MkdirAll(filepath.Dir(prefsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		s, err := store.NewSQLiteStore(store.SQLiteConfig{
			Path: prefsPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open preference store: %w", err)
		}
		st = s
	}

	service := routing.NewService(registry, st, internallog.WithComponent(base, "routing"))

	// Resolve the auth token. It may be a "$secret:key" reference into
	// the secrets backends; plain values pass through unchanged.
	token := cfg.Server.Auth.Token
	if secrets.IsReference(token) {
		resolver, err := secrets.DefaultResolver()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize secrets backends: %w", err)
		}
		token, err = secrets.ResolveReference(context.Background(), resolver, token)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve auth token: %w", err)
		}
		logger.Debug("auth token resolved from secret reference",
			slog.String("token", internallog.SanitizeToken(token)))
	}
	if cfg.Server.Auth.Enabled && token == "" {
		logger.Warn("auth is enabled but no token is configured; all TCP requests will be rejected",
			slog.String("hint", "set server.auth.token or SWITCHBOARD_AUTH_TOKEN"))
	}

	authMw := auth.NewMiddleware(auth.Config{
		Enabled:         cfg.Server.Auth.Enabled,
		Token:           token,
		AllowUnixSocket: cfg.Server.Auth.AllowUnixSocket,
		RateLimit: auth.RateLimitConfig{
			Enabled: cfg.Server.RateLimit.Enabled,
			RPS:     cfg.Server.RateLimit.RPS,
			Burst:   cfg.Server.RateLimit.Burst,
		},
		Logger: internallog.WithComponent(base, "auth"),
	})

	// Initialize the OpenTelemetry provider. The Prometheus meter side
	// always runs so /metrics works; span export only happens when
	// observability is enabled and exporters are configured.
	tcfg := tracing.Config{
		Enabled:        cfg.Observability.Enabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
	}
	if tcfg.ServiceVersion == "" || tcfg.ServiceVersion == "unknown" {
		tcfg.ServiceVersion = opts.Version
	}
	if cfg.Observability.Enabled {
		tcfg.Exporters = make([]tracing.ExporterConfig, len(cfg.Observability.Exporters))
		for i, exp := range cfg.Observability.Exporters {
			tcfg.Exporters[i] = tracing.ExporterConfig{
				Type:     exp.Type,
				Endpoint: exp.Endpoint,
				Headers:  exp.Headers,
				Insecure: exp.Insecure,
				Timeout:  time.Duration(exp.TimeoutSeconds) * time.Second,
			}
		}
	}
	provider, err := tracing.NewProvider(context.Background(), tcfg)
	if err != nil {
		logger.Warn("failed to initialize OpenTelemetry provider",
			internallog.Error(err))
		logger.Warn("metrics and tracing will not be available")
		provider = nil
	}
	var metrics *tracing.MetricsCollector
	if provider != nil {
		metrics = provider.MetricsCollector()
	}

	d := &Daemon{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		registry: registry,
		service:  service,
		source:   src,
		store:    st,
		authMw:   authMw,
		provider: provider,
		metrics:  metrics,
	}

	// Create catalog watcher if enabled (file source only)
	if cfg.Catalog.Watch.Enabled && fileSrc != nil {
		w, err := catalog.NewWatcher(catalog.WatcherConfig{
			Path:                fileSrc.Path(),
			Include:             cfg.Catalog.Include,
			Exclude:             cfg.Catalog.Exclude,
			Debounce:            cfg.Catalog.Watch.Debounce,
			MaxReloadsPerMinute: watcherReloadsPerMinute,
			OnReload: func(ctx context.Context) error {
				return d.reload(ctx, "watcher")
			},
			Logger: internallog.WithComponent(base, "watcher"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog watcher: %w", err)
		}
		d.watcher = w
	}

	return d, nil
}

// Start starts the daemon and blocks until the context is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return fmt.Errorf("daemon already started")
	}
	d.started = true
	d.mu.Unlock()

	// Check permissions on critical directories and files at startup
	d.checkPermissionsAtStartup()

	// Write PID file if configured
	if d.cfg.Server.PIDFile != "" {
		if err := d.writePIDFile(); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		d.pidFile = d.cfg.Server.PIDFile
	}

	// Initial catalog load. Failure is not fatal: the daemon serves the
	// empty snapshot and a later reload can recover without a restart.
	if err := d.reload(ctx, "startup"); err != nil {
		d.logger.Warn("initial catalog load failed, serving empty catalog",
			internallog.Error(err))
	}

	// Create listener
	ln, err := listener.New(d.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	d.ln = ln

	// Create HTTP router
	router := api.NewRouter(api.RouterConfig{
		Version:   d.opts.Version,
		Commit:    d.opts.Commit,
		BuildDate: d.opts.BuildDate,
	})

	// Register selection API
	selectHandler := api.NewSelectHandler(d.service, d.metrics, d.logger)
	selectHandler.RegisterRoutes(router.Mux())

	// Register models API; reloads requested over the API go through the
	// same path as every other trigger
	modelsHandler := api.NewModelsHandler(d.registry, func(ctx context.Context) error {
		return d.reload(ctx, "api")
	}, d.logger)
	modelsHandler.RegisterRoutes(router.Mux())

	// Register preferences API
	prefsHandler := api.NewPreferencesHandler(d.store, d.registry, d.logger)
	prefsHandler.RegisterRoutes(router.Mux())

	// Wire up catalog state to router for the health endpoint
	router.SetCatalogStatusProvider(&catalogStatusAdapter{registry: d.registry})

	// Wire up metrics if the provider initialized
	if d.provider != nil {
		router.SetMetricsHandler(d.provider.MetricsHandler())
		router.SetMetricsCollector(d.metrics)
	}

	// Create HTTP server with auth middleware
	d.server = &http.Server{
		Handler:      d.authMw.Wrap(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Log startup
	d.logger.Info("switchboardd starting",
		slog.String("version", d.opts.Version),
		slog.String("listen_addr", ln.Addr().String()))

	// Start catalog watcher if configured
	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			d.logger.Warn("failed to start catalog watcher",
				internallog.Error(err))
		} else {
			d.logger.Info("catalog watcher started",
				slog.String("path", d.cfg.Catalog.Path))
		}
	}

	// Sweep idle rate limiter entries in the background
	if d.cfg.Server.RateLimit.Enabled {
		go d.limiterCleanupLoop(ctx)
	}

	// Start HTTP server
	errCh := make(chan error, 1)
	go func() {
		if err := d.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the daemon.
func (d *Daemon) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil
	}

	d.logger.Info("graceful shutdown initiated")

	// Stop accepting new connections (disable keep-alive)
	if d.server != nil {
		d.server.SetKeepAlivesEnabled(false)
	}

	// Stop the catalog watcher
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Error("catalog watcher shutdown error",
				internallog.Error(err))
		}
	}

	// Shutdown HTTP server
	if d.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, d.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := d.server.Shutdown(shutdownCtx); err != nil {
			d.logger.Error("HTTP server shutdown error",
				internallog.Error(err))
		}
	}

	// Clean up PID file
	if d.pidFile != "" {
		if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
			d.logger.Error("failed to remove PID file",
				internallog.Error(err),
				slog.String("path", d.pidFile))
		}
	}

	// Clean up Unix socket file if it exists
	if d.cfg.Server.Listen.SocketPath != "" {
		if err := os.Remove(d.cfg.Server.Listen.SocketPath); err != nil && !os.IsNotExist(err) {
			d.logger.Error("failed to remove socket file",
				internallog.Error(err),
				slog.String("path", d.cfg.Server.Listen.SocketPath))
		}
	}

	// Shutdown OpenTelemetry provider
	if d.provider != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := d.provider.Shutdown(shutdownCtx); err != nil {
			d.logger.Error("OpenTelemetry provider shutdown error",
				internallog.Error(err))
		}
	}

	// Close catalog source
	if d.source != nil {
		if err := d.source.Close(); err != nil {
			d.logger.Error("failed to close catalog source",
				internallog.Error(err))
		}
	}

	// Close preference store
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Error("failed to close preference store",
				internallog.Error(err))
		}
	}

	d.started = false
	d.logger.Info("daemon stopped")
	return nil
}

// reload reads the catalog source and publishes a new registry snapshot.
// Every reload path (startup, POST /v1/reload, SIGHUP, file watcher) runs
// through here so the trigger shows up in traces, metrics, and logs. On
// failure the previous snapshot keeps serving.
func (d *Daemon) reload(ctx context.Context, trigger string) error {
	start := time.Now()
	ctx, span := tracing.StartReloadSpan(ctx, trigger)

	err := catalog.Reload(ctx, d.source, d.registry)

	outcome := "published"
	if err != nil {
		outcome = "failed"
	} else {
		snap := d.registry.Snapshot()
		tracing.RecordReloadResult(span, snap.Len(), snap.Version())
	}
	tracing.EndSpan(span, err)

	if d.metrics != nil {
		d.metrics.RecordReload(ctx, trigger, outcome, time.Since(start))
	}

	if err != nil {
		d.logger.Error("catalog reload failed, previous snapshot still serving",
			slog.String("trigger", trigger),
			internallog.Error(err))
		return err
	}

	snap := d.registry.Snapshot()
	d.logger.Info("catalog reloaded",
		slog.String("trigger", trigger),
		slog.Int("models", snap.Len()),
		slog.Uint64("snapshot_version", snap.Version()))
	return nil
}

// limiterCleanupLoop periodically drops idle per-client rate limiter
// entries so the client map does not grow without bound.
func (d *Daemon) limiterCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.authMw.RateLimiter().Cleanup(limiterIdleAge)
		}
	}
}

// checkPermissionsAtStartup checks critical paths for insecure permissions and logs warnings.
func (d *Daemon) checkPermissionsAtStartup() {
	pathsToCheck := []string{}

	// Check data directory (contains the preference database)
	if d.cfg.Server.DataDir != "" {
		pathsToCheck = append(pathsToCheck, d.cfg.Server.DataDir)
	}

	// Check PID file directory
	if d.cfg.Server.PIDFile != "" {
		pathsToCheck = append(pathsToCheck, filepath.Dir(d.cfg.Server.PIDFile))
	}

	// Check catalog path (world-writable catalogs allow selection tampering)
	if d.cfg.Catalog.Path != "" {
		pathsToCheck = append(pathsToCheck, d.cfg.Catalog.Path)
	}

	// Check each path and log warnings
	for _, path := range pathsToCheck {
		warnings := security.CheckConfigPermissions(path)
		for _, warning := range warnings {
			d.logger.Warn("security warning",
				slog.String("warning", warning))
		}
	}
}

// writePIDFile writes the current process ID to the PID file.
func (d *Daemon) writePIDFile() error {
	// Create parent directory with restrictive permissions (0700)
	dir := filepath.Dir(d.cfg.Server.PIDFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// Write PID with 0600 permissions (owner-only access)
	pid := os.Getpid()
	return os.WriteFile(d.cfg.Server.PIDFile, []byte(fmt.Sprintf("%d\n", pid)), 0600)
}

// catalogStatusAdapter adapts routing.Registry to api.CatalogStatusProvider.
type catalogStatusAdapter struct {
	registry *routing.Registry
}

// CatalogStatus returns the current snapshot summary.
func (a *catalogStatusAdapter) CatalogStatus() api.CatalogStatus {
	snap := a.registry.Snapshot()
	return api.CatalogStatus{
		Models:          snap.Len(),
		Enabled:         len(snap.Enabled()),
		SnapshotVersion: snap.Version(),
	}
}
