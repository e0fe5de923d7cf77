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

// Package api provides the HTTP API for the daemon.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/switchboard-io/switchboard/internal/daemon/httputil"
	"github.com/switchboard-io/switchboard/internal/log"
	"github.com/switchboard-io/switchboard/internal/tracing"
)

// RouterConfig holds configuration for the API router.
type RouterConfig struct {
	Version   string
	Commit    string
	BuildDate string
}

// CatalogStatus summarizes the registry state for health reporting.
type CatalogStatus struct {
	Models          int    `json:"models"`
	Enabled         int    `json:"enabled"`
	SnapshotVersion uint64 `json:"snapshot_version"`
}

// CatalogStatusProvider provides catalog state for health checks.
type CatalogStatusProvider interface {
	CatalogStatus() CatalogStatus
}

// MetricsHandler provides a Prometheus metrics endpoint.
type MetricsHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// Router wraps an http.ServeMux with the daemon's middleware chain.
type Router struct {
	mux            *http.ServeMux
	config         RouterConfig
	statusProvider CatalogStatusProvider
	metricsHandler MetricsHandler
	metrics        *tracing.MetricsCollector
	logger         *slog.Logger
}

// NewRouter creates a new HTTP router with the base endpoints
// registered. Domain handlers register themselves via Mux.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		config: cfg,
		logger: log.New(log.FromEnv()),
	}

	r.mux.HandleFunc("GET /v1/health", r.handleHealth)
	r.mux.HandleFunc("GET /v1/version", r.handleVersion)

	// Root endpoint for basic connectivity check
	r.mux.HandleFunc("GET /", r.handleRoot)

	return r
}

// SetCatalogStatusProvider sets the provider consulted by the health
// endpoint.
func (r *Router) SetCatalogStatusProvider(provider CatalogStatusProvider) {
	r.statusProvider = provider
}

// SetMetricsHandler sets the Prometheus metrics handler.
func (r *Router) SetMetricsHandler(handler MetricsHandler) {
	r.metricsHandler = handler
	if handler != nil {
		r.mux.HandleFunc("GET /metrics", handler.ServeHTTP)
	}
}

// SetMetricsCollector sets the collector fed by the request middleware.
func (r *Router) SetMetricsCollector(mc *tracing.MetricsCollector) {
	r.metrics = mc
}

// Mux returns the underlying ServeMux for registering additional routes.
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Build middleware chain from innermost to outermost:
	// 1. mux dispatch with request logging and metrics
	// 2. correlation middleware
	// 3. tracing middleware (creates spans)
	// 4. HTTP trace context extraction (outermost)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		correlationID := tracing.FromContextOrEmpty(req.Context())
		logger := log.WithCorrelationID(r.logger, string(correlationID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if r.metrics != nil {
			r.metrics.IncActiveRequests()
			defer r.metrics.DecActiveRequests()
		}

		defer func() {
			duration := time.Since(start)
			logger.Info("request completed",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("duration_ms", duration.Milliseconds()),
			)
			if r.metrics != nil {
				r.metrics.RecordRequest(req.Context(), requestEndpoint(req), req.Method, rec.status, duration)
			}
		}()

		r.mux.ServeHTTP(rec, req)
	})

	handler = tracing.CorrelationMiddleware(handler)
	handler = tracing.TracingMiddleware(handler)
	handler = tracing.HTTPMiddleware(handler)

	handler.ServeHTTP(w, req)
}

// requestEndpoint returns a bounded-cardinality endpoint label for the
// request. The mux fills in Pattern during dispatch; requests that
// matched no route share one label.
func requestEndpoint(req *http.Request) string {
	pattern := req.Pattern
	if pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// handleRoot handles GET / for basic connectivity.
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"name":    "switchboardd",
		"version": r.config.Version,
	})
}

// healthResponse is the health endpoint body.
type healthResponse struct {
	Status  string         `json:"status"`
	Version string         `json:"version"`
	Catalog *CatalogStatus `json:"catalog,omitempty"`
}

// handleHealth handles GET /v1/health. Reachable without credentials so
// probes and wait-for-ready loops work.
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: r.config.Version,
	}
	if r.statusProvider != nil {
		status := r.statusProvider.CatalogStatus()
		resp.Catalog = &status
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// handleVersion handles GET /v1/version.
func (r *Router) handleVersion(w http.ResponseWriter, req *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"version":    r.config.Version,
		"commit":     r.config.Commit,
		"build_date": r.config.BuildDate,
	})
}
