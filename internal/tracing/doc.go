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

/*
Package tracing provides distributed tracing and observability for Switchboard.

This package implements OpenTelemetry-based tracing for model selection,
catalog reloads, and HTTP requests. It also provides Prometheus metrics
collection and correlation ID propagation for distributed debugging.

# Overview

The tracing package supports:

  - Distributed tracing via OpenTelemetry
  - Prometheus metrics export
  - Correlation ID propagation across services
  - Selection and reload span helpers

# Quick Start

Create a provider:

	cfg := tracing.Config{
	    Enabled:        true,
	    ServiceName:    "switchboard",
	    ServiceVersion: "1.0.0",
	    Exporters: []tracing.ExporterConfig{
	        {Type: "otlp", Endpoint: "localhost:4317"},
	    },
	}

	provider, err := tracing.NewProvider(ctx, cfg)

Get a tracer and create spans:

	tracer := provider.Tracer("daemon")

	ctx, span := tracer.Start(ctx, "handle-select")
	defer span.End()

Or use the span helpers for the two hot paths:

	ctx, span := tracing.StartSelectionSpan(ctx, userID)
	defer func() { tracing.EndSpan(span, err) }()

# Correlation IDs

Correlation IDs link requests across service boundaries:

	// In HTTP middleware
	correlationID := tracing.FromContext(ctx)

	// Add to outbound requests
	req.Header.Set("X-Correlation-ID", string(correlationID))

	// Middleware extracts and injects
	handler = tracing.CorrelationMiddleware(handler)

# Metrics Collection

Prometheus metrics are collected:

	// Get metrics collector
	collector := provider.MetricsCollector()

	// Record events
	collector.RecordRequest(ctx, "/v1/select", "POST", 200, duration)
	collector.RecordSelection(ctx, "preference", duration)

Metrics exposed at /metrics:

  - switchboard_http_requests_total{endpoint,method,status}
  - switchboard_http_request_duration_seconds{endpoint,method,status}
  - switchboard_selection_duration_seconds{source}
  - switchboard_reload_duration_seconds{trigger,outcome}
  - switchboard_active_requests

# Configuration

Full configuration options:

	observability:
	  enabled: true
	  service_name: switchboard
	  exporters:
	    - type: otlp
	      endpoint: localhost:4317
	      headers:
	        x-api-key: $secret:otlp_key
	    - type: console

# Key Components

  - Provider: OpenTelemetry SDK wrapper
  - MetricsCollector: Prometheus metrics recording
  - CorrelationID: Request correlation across services
  - export: Trace exporters (OTLP gRPC, OTLP HTTP, console)
*/
package tracing
